// Algorithm registry for running single stages by name
package algorithms

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
	"gocv.io/x/gocv"

	"composite-filter/internal/core"
)

// Algorithm defines the interface for image processing algorithms
type Algorithm interface {
	Apply(input gocv.Mat, params map[string]interface{}) (gocv.Mat, error)
	GetDefaultParams() map[string]interface{}
	GetName() string
	GetDescription() string
	Validate(params map[string]interface{}) error
	GetParameterInfo() []ParameterInfo
}

// ParameterInfo describes a parameter of an algorithm
type ParameterInfo struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"` // "float", "enum", "pixel_type"
	Min         interface{} `json:"min,omitempty"`
	Max         interface{} `json:"max,omitempty"`
	Default     interface{} `json:"default"`
	Description string      `json:"description"`
	Options     []string    `json:"options,omitempty"` // For enum type
}

var algorithms = make(map[string]Algorithm)

func Register(name string, algorithm Algorithm) {
	algorithms[name] = algorithm
}

func Get(name string) (Algorithm, bool) {
	algorithm, exists := algorithms[name]
	return algorithm, exists
}

func Apply(name string, input gocv.Mat, params map[string]interface{}) (gocv.Mat, error) {
	algorithm, exists := algorithms[name]
	if !exists {
		return gocv.NewMat(), fmt.Errorf("algorithm not found: %s", name)
	}

	if err := algorithm.Validate(params); err != nil {
		return gocv.NewMat(), fmt.Errorf("invalid parameters: %w", err)
	}

	return algorithm.Apply(input, params)
}

func ValidateParameters(name string, params map[string]interface{}) error {
	algorithm, exists := algorithms[name]
	if !exists {
		return fmt.Errorf("algorithm not found: %s", name)
	}

	return algorithm.Validate(params)
}

func IsValidAlgorithm(name string) bool {
	_, exists := algorithms[name]
	return exists
}

// Names returns the registered algorithm names in sorted order
func Names() []string {
	names := lo.Keys(algorithms)
	slices.Sort(names)
	return names
}

func GetAllAlgorithms() map[string]Algorithm {
	result := make(map[string]Algorithm)
	for name, algorithm := range algorithms {
		result[name] = algorithm
	}
	return result
}

// FilterBuilder configures a fresh filter from validated parameters
type FilterBuilder func(params map[string]interface{}) (core.Filter, error)

// FilterAlgorithm adapts a pipeline filter to the one-shot Algorithm API
type FilterAlgorithm struct {
	Name        string
	Description string
	Parameters  []ParameterInfo
	Build       FilterBuilder
}

// Apply runs a newly built filter over input and returns a Mat owned by
// the caller. The input is borrowed, never modified.
func (fa *FilterAlgorithm) Apply(input gocv.Mat, params map[string]interface{}) (gocv.Mat, error) {
	if input.Empty() {
		return gocv.NewMat(), fmt.Errorf("input image is empty")
	}

	merged := fa.GetDefaultParams()
	for k, v := range params {
		merged[k] = v
	}

	filter, err := fa.Build(merged)
	if err != nil {
		return gocv.NewMat(), err
	}
	if closer, ok := filter.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	filter.SetInput(core.NewImageView(input))
	if err := filter.Update(); err != nil {
		return gocv.NewMat(), err
	}

	return filter.Output().Clone(), nil
}

func (fa *FilterAlgorithm) GetDefaultParams() map[string]interface{} {
	defaults := make(map[string]interface{}, len(fa.Parameters))
	for _, p := range fa.Parameters {
		defaults[p.Name] = p.Default
	}
	return defaults
}

func (fa *FilterAlgorithm) GetName() string {
	return fa.Name
}

func (fa *FilterAlgorithm) GetDescription() string {
	return fa.Description
}

func (fa *FilterAlgorithm) GetParameterInfo() []ParameterInfo {
	return fa.Parameters
}

func (fa *FilterAlgorithm) Validate(params map[string]interface{}) error {
	return ValidateAgainst(fa.Parameters, params)
}

// ValidateAgainst checks params against their descriptions. Unknown
// parameter names are rejected.
func ValidateAgainst(infos []ParameterInfo, params map[string]interface{}) error {
	byName := lo.KeyBy(infos, func(p ParameterInfo) string { return p.Name })

	for name, val := range params {
		info, ok := byName[name]
		if !ok {
			return fmt.Errorf("unknown parameter: %s", name)
		}

		switch info.Type {
		case "float":
			v, ok := val.(float64)
			if !ok {
				return fmt.Errorf("%s must be a number", name)
			}
			if minV, ok := info.Min.(float64); ok && v < minV {
				return fmt.Errorf("%s must be at least %v", name, minV)
			}
			if maxV, ok := info.Max.(float64); ok && v > maxV {
				return fmt.Errorf("%s must be at most %v", name, maxV)
			}
		case "enum":
			v, ok := val.(string)
			if !ok || !slices.Contains(info.Options, v) {
				return fmt.Errorf("%s must be one of %v", name, info.Options)
			}
		case "pixel_type":
			v, ok := val.(string)
			if !ok {
				return fmt.Errorf("%s must be a pixel type name", name)
			}
			if v == "" {
				continue
			}
			if _, err := core.ParsePixelType(v); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}
	}

	return nil
}

// FloatParam reads a numeric parameter, falling back to def
func FloatParam(params map[string]interface{}, name string, def float64) float64 {
	if val, ok := params[name]; ok {
		if v, ok := val.(float64); ok {
			return v
		}
	}
	return def
}

// StringParam reads a string parameter, falling back to def
func StringParam(params map[string]interface{}, name string, def string) string {
	if val, ok := params[name]; ok {
		if v, ok := val.(string); ok {
			return v
		}
	}
	return def
}

// PixelTypeParam reads an optional pixel type name. An empty name yields
// PixelUnknown.
func PixelTypeParam(params map[string]interface{}, name string) (core.PixelType, error) {
	v := StringParam(params, name, "")
	if v == "" {
		return core.PixelUnknown, nil
	}
	return core.ParsePixelType(v)
}

func init() {
	Register("gradient_magnitude", &FilterAlgorithm{
		Name:        "Gradient Magnitude",
		Description: "Central difference gradient magnitude",
		Parameters: []ParameterInfo{
			{
				Name:        "output_pixel_type",
				Type:        "pixel_type",
				Default:     "",
				Description: "Output sample type (empty keeps the input type)",
			},
		},
		Build: func(params map[string]interface{}) (core.Filter, error) {
			pt, err := PixelTypeParam(params, "output_pixel_type")
			if err != nil {
				return nil, err
			}
			g := NewGradientMagnitude(nil)
			g.SetOutputPixelType(pt)
			return g, nil
		},
	})

	Register("threshold", &FilterAlgorithm{
		Name:        "Threshold",
		Description: "Replace pixels outside a band with a constant",
		Parameters: []ParameterInfo{
			{
				Name:        "mode",
				Type:        "enum",
				Default:     string(ThresholdModeBelow),
				Description: "Which pixels to suppress",
				Options:     []string{string(ThresholdModeBelow), string(ThresholdModeAbove), string(ThresholdModeOutside)},
			},
			{
				Name:        "lower",
				Type:        "float",
				Default:     1.0,
				Description: "Lower bound (below and outside modes)",
			},
			{
				Name:        "upper",
				Type:        "float",
				Default:     255.0,
				Description: "Upper bound (above and outside modes)",
			},
			{
				Name:        "outside_value",
				Type:        "float",
				Default:     0.0,
				Description: "Value written to suppressed pixels",
			},
		},
		Build: func(params map[string]interface{}) (core.Filter, error) {
			t := NewThreshold(nil)
			lower := FloatParam(params, "lower", 1)
			upper := FloatParam(params, "upper", 255)
			switch ThresholdMode(StringParam(params, "mode", string(ThresholdModeBelow))) {
			case ThresholdModeBelow:
				t.ThresholdBelow(lower)
			case ThresholdModeAbove:
				t.ThresholdAbove(upper)
			case ThresholdModeOutside:
				if err := t.ThresholdOutside(lower, upper); err != nil {
					return nil, err
				}
			}
			t.SetOutsideValue(FloatParam(params, "outside_value", 0))
			return t, nil
		},
	})

	Register("rescale_intensity", &FilterAlgorithm{
		Name:        "Rescale Intensity",
		Description: "Linearly map the intensity range onto an output range",
		Parameters: []ParameterInfo{
			{
				Name:        "output_minimum",
				Type:        "float",
				Default:     0.0,
				Description: "Smallest output value",
			},
			{
				Name:        "output_maximum",
				Type:        "float",
				Default:     255.0,
				Description: "Largest output value",
			},
			{
				Name:        "output_pixel_type",
				Type:        "pixel_type",
				Default:     "",
				Description: "Output sample type (empty keeps the input type)",
			},
		},
		Build: func(params map[string]interface{}) (core.Filter, error) {
			pt, err := PixelTypeParam(params, "output_pixel_type")
			if err != nil {
				return nil, err
			}
			r := NewRescaleIntensity(nil)
			r.SetOutputPixelType(pt)
			r.SetOutputMinimum(FloatParam(params, "output_minimum", 0))
			r.SetOutputMaximum(FloatParam(params, "output_maximum", 255))
			return r, nil
		},
	})
}
