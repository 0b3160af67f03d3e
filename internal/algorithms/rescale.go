// Intensity rescale stage
package algorithms

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"composite-filter/internal/core"
)

// RescaleIntensity maps the input's [min, max] linearly onto
// [OutputMinimum, OutputMaximum]. A constant input maps to OutputMinimum.
type RescaleIntensity struct {
	*core.ProcessObject
	outputType core.PixelType
	outputMin  float64
	outputMax  float64
	rangeSet   bool

	inputMin float64
	inputMax float64
	scale    float64
	shift    float64
}

// NewRescaleIntensity creates a rescale filter. Until a range is set the
// output spans the full range of the output pixel type.
func NewRescaleIntensity(logger *logrus.Logger) *RescaleIntensity {
	r := &RescaleIntensity{}
	r.ProcessObject = core.NewProcessObject("RescaleIntensityImageFilter", r, logger)
	return r
}

// SetOutputPixelType selects the output sample type. PixelUnknown keeps
// the input type.
func (r *RescaleIntensity) SetOutputPixelType(pt core.PixelType) {
	r.outputType = pt
}

// OutputPixelType returns the configured output type, PixelUnknown if
// it follows the input
func (r *RescaleIntensity) OutputPixelType() core.PixelType {
	return r.outputType
}

// SetOutputMinimum sets the value the input minimum maps to
func (r *RescaleIntensity) SetOutputMinimum(value float64) {
	r.outputMin = value
	r.rangeSet = true
}

// SetOutputMaximum sets the value the input maximum maps to
func (r *RescaleIntensity) SetOutputMaximum(value float64) {
	r.outputMax = value
	r.rangeSet = true
}

// SetFullRange sets the output range to the full range of pt
func (r *RescaleIntensity) SetFullRange(pt core.PixelType) {
	r.SetOutputMinimum(pt.Min())
	r.SetOutputMaximum(pt.Max())
}

// OutputMinimum returns the configured lower end of the output range
func (r *RescaleIntensity) OutputMinimum() float64 {
	return r.outputMin
}

// OutputMaximum returns the configured upper end of the output range
func (r *RescaleIntensity) OutputMaximum() float64 {
	return r.outputMax
}

// Scale returns the slope used by the last execution
func (r *RescaleIntensity) Scale() float64 {
	return r.scale
}

// Shift returns the offset used by the last execution
func (r *RescaleIntensity) Shift() float64 {
	return r.shift
}

// GenerateData maps the input range onto the output range
func (r *RescaleIntensity) GenerateData() error {
	input := r.Input().Mat()
	if err := core.ValidateImage(input); err != nil {
		return err
	}

	inType, err := core.PixelTypeOf(input.Type())
	if err != nil {
		return err
	}
	outType := r.outputType
	if !outType.Valid() {
		outType = inType
	}

	outMin, outMax := outType.Min(), outType.Max()
	if r.rangeSet {
		outMin, outMax = r.outputMin, r.outputMax
	}
	if outMin > outMax {
		return fmt.Errorf("output minimum %v is greater than output maximum %v", outMin, outMax)
	}

	// Work in double precision so full float32 ranges do not overflow
	wide := gocv.NewMat()
	defer wide.Close()
	input.ConvertTo(&wide, gocv.MatTypeCV64F)

	minVal, maxVal, _, _ := gocv.MinMaxLoc(wide)
	r.inputMin, r.inputMax = float64(minVal), float64(maxVal)
	r.scale = 0
	if r.inputMax > r.inputMin {
		r.scale = (outMax - outMin) / (r.inputMax - r.inputMin)
	}
	r.shift = outMin - r.inputMin*r.scale

	gocv.Normalize(wide, &wide, outMin, outMax, gocv.NormMinMax)

	output := r.Output().Mat()
	wide.ConvertTo(&output, outType.MatType())

	r.Logger().WithFields(logrus.Fields{
		"input_min": r.inputMin,
		"input_max": r.inputMax,
		"scale":     r.scale,
		"shift":     r.shift,
	}).Debug("Rescale computed")

	return nil
}

// Describe writes the base filter state followed by the range and the
// transform of the last execution
func (r *RescaleIntensity) Describe(w io.Writer, indent core.Indent) {
	r.ProcessObject.Describe(w, indent)
	next := indent.Next()
	fmt.Fprintf(w, "%sOutputMinimum: %v\n", next, r.outputMin)
	fmt.Fprintf(w, "%sOutputMaximum: %v\n", next, r.outputMax)
	fmt.Fprintf(w, "%sScale: %v\n", next, r.scale)
	fmt.Fprintf(w, "%sShift: %v\n", next, r.shift)
}
