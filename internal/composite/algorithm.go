package composite

import (
	"fmt"

	"gocv.io/x/gocv"

	"composite-filter/internal/algorithms"
	"composite-filter/internal/core"
)

// edgeAlgorithm exposes the composite through the algorithm registry
type edgeAlgorithm struct{}

func (edgeAlgorithm) Apply(input gocv.Mat, params map[string]interface{}) (gocv.Mat, error) {
	if input.Empty() {
		return gocv.NewMat(), fmt.Errorf("input image is empty")
	}

	outType, err := algorithms.PixelTypeParam(params, "output_pixel_type")
	if err != nil {
		return gocv.NewMat(), err
	}
	threshold := algorithms.FloatParam(params, "threshold", DefaultThreshold)

	pt, err := core.PixelTypeOf(input.Type())
	if err != nil {
		return gocv.NewMat(), err
	}

	filter, err := NewForPixelType(pt, WithOutputPixelType(outType))
	if err != nil {
		return gocv.NewMat(), err
	}
	defer filter.Close()

	filter.SetThresholdValue(threshold)
	filter.SetInput(core.NewImageView(input))
	if err := filter.Update(); err != nil {
		return gocv.NewMat(), err
	}
	return filter.Output().Clone(), nil
}

func (edgeAlgorithm) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"threshold":         float64(DefaultThreshold),
		"output_pixel_type": "",
	}
}

func (edgeAlgorithm) GetName() string {
	return "Composite Edge Filter"
}

func (edgeAlgorithm) GetDescription() string {
	return "Gradient magnitude, threshold below, then rescale to the full pixel range"
}

func (e edgeAlgorithm) Validate(params map[string]interface{}) error {
	return algorithms.ValidateAgainst(e.GetParameterInfo(), params)
}

func (edgeAlgorithm) GetParameterInfo() []algorithms.ParameterInfo {
	return []algorithms.ParameterInfo{
		{
			Name:        "threshold",
			Type:        "float",
			Default:     float64(DefaultThreshold),
			Description: "Gradient magnitudes below this value are suppressed",
		},
		{
			Name:        "output_pixel_type",
			Type:        "pixel_type",
			Default:     "",
			Description: "Output sample type (empty keeps the input type)",
		},
	}
}

func init() {
	algorithms.Register("composite_edge", edgeAlgorithm{})
}
