// Threshold stage: keep samples inside a band, replace the rest
package algorithms

import (
	"fmt"
	"io"
	"math"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"composite-filter/internal/core"
)

// ThresholdMode names the policy last applied to a Threshold filter
type ThresholdMode string

const (
	ThresholdModeBelow   ThresholdMode = "below"
	ThresholdModeAbove   ThresholdMode = "above"
	ThresholdModeOutside ThresholdMode = "outside"
)

// Threshold keeps pixels in [lower, upper] and sets every other pixel to
// the outside value. Infinite bounds are clamped to the input type's range
// at execution time.
type Threshold struct {
	*core.ProcessObject
	mode         ThresholdMode
	lower        float64
	upper        float64
	outsideValue float64
}

// NewThreshold creates a threshold filter that passes every pixel
func NewThreshold(logger *logrus.Logger) *Threshold {
	t := &Threshold{
		mode:  ThresholdModeOutside,
		lower: math.Inf(-1),
		upper: math.Inf(1),
	}
	t.ProcessObject = core.NewProcessObject("ThresholdImageFilter", t, logger)
	return t
}

// ThresholdBelow suppresses pixels below value
func (t *Threshold) ThresholdBelow(value float64) {
	t.mode = ThresholdModeBelow
	t.lower = value
	t.upper = math.Inf(1)
}

// ThresholdAbove suppresses pixels above value
func (t *Threshold) ThresholdAbove(value float64) {
	t.mode = ThresholdModeAbove
	t.lower = math.Inf(-1)
	t.upper = value
}

// ThresholdOutside suppresses pixels outside [lower, upper]
func (t *Threshold) ThresholdOutside(lower, upper float64) error {
	if lower > upper {
		return fmt.Errorf("lower threshold %v is greater than upper threshold %v", lower, upper)
	}
	t.mode = ThresholdModeOutside
	t.lower = lower
	t.upper = upper
	return nil
}

// SetOutsideValue sets the value written to suppressed pixels
func (t *Threshold) SetOutsideValue(value float64) {
	t.outsideValue = value
}

// OutsideValue returns the value written to suppressed pixels
func (t *Threshold) OutsideValue() float64 {
	return t.outsideValue
}

// Lower returns the lower bound of the kept band
func (t *Threshold) Lower() float64 {
	return t.lower
}

// Upper returns the upper bound of the kept band
func (t *Threshold) Upper() float64 {
	return t.upper
}

// Mode returns the policy set by the last ThresholdBelow, ThresholdAbove
// or ThresholdOutside call
func (t *Threshold) Mode() ThresholdMode {
	return t.mode
}

// GenerateData fills the output with the outside value and copies the
// pixels inside the band over it
func (t *Threshold) GenerateData() error {
	input := t.Input().Mat()
	if err := core.ValidateImage(input); err != nil {
		return err
	}

	pt, err := core.PixelTypeOf(input.Type())
	if err != nil {
		return err
	}
	lower := math.Max(t.lower, pt.Min())
	upper := math.Min(t.upper, pt.Max())
	// OpenCV rounds integer bounds; snap them inward instead
	if !pt.IsFloat() {
		lower, upper = math.Ceil(lower), math.Floor(upper)
	}

	filled := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(t.outsideValue, 0, 0, 0), input.Rows(), input.Cols(), input.Type())
	defer filled.Close()

	output := t.Output().Mat()
	filled.CopyTo(&output)
	if lower > upper {
		return nil
	}

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.InRangeWithScalar(input, gocv.NewScalar(lower, 0, 0, 0), gocv.NewScalar(upper, 0, 0, 0), &mask)
	input.CopyToWithMask(&output, mask)

	return nil
}

// Describe writes the base filter state followed by the band settings
func (t *Threshold) Describe(w io.Writer, indent core.Indent) {
	t.ProcessObject.Describe(w, indent)
	next := indent.Next()
	fmt.Fprintf(w, "%sMode: %s\n", next, t.mode)
	fmt.Fprintf(w, "%sLower: %v\n", next, t.lower)
	fmt.Fprintf(w, "%sUpper: %v\n", next, t.upper)
	fmt.Fprintf(w, "%sOutsideValue: %v\n", next, t.outsideValue)
}
