// Concrete implementations of output metrics
package metrics

import (
	"gocv.io/x/gocv"

	"composite-filter/internal/core"
)

// EdgeDensity is the fraction of nonzero output pixels
type EdgeDensity struct{}

func NewEdgeDensity() *EdgeDensity {
	return &EdgeDensity{}
}

func (m *EdgeDensity) Calculate(original, processed gocv.Mat) (float64, error) {
	if err := validatePair(original, processed); err != nil {
		return 0, err
	}
	total := processed.Rows() * processed.Cols()
	return float64(gocv.CountNonZero(processed)) / float64(total), nil
}

func (m *EdgeDensity) GetName() string              { return "Edge Density" }
func (m *EdgeDensity) GetDescription() string       { return "Fraction of nonzero output pixels" }
func (m *EdgeDensity) GetRange() (float64, float64) { return 0, 1 }
func (m *EdgeDensity) IsHigherBetter() bool         { return false }

// SuppressedFraction is the fraction of output pixels sitting at the
// output minimum, which is where thresholded pixels land after rescaling.
type SuppressedFraction struct{}

func NewSuppressedFraction() *SuppressedFraction {
	return &SuppressedFraction{}
}

func (m *SuppressedFraction) Calculate(original, processed gocv.Mat) (float64, error) {
	if err := validatePair(original, processed); err != nil {
		return 0, err
	}

	minVal, _, _, _ := gocv.MinMaxLoc(processed)
	bound := gocv.NewScalar(float64(minVal), 0, 0, 0)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.InRangeWithScalar(processed, bound, bound, &mask)

	total := processed.Rows() * processed.Cols()
	return float64(gocv.CountNonZero(mask)) / float64(total), nil
}

func (m *SuppressedFraction) GetName() string              { return "Suppressed Fraction" }
func (m *SuppressedFraction) GetDescription() string       { return "Fraction of pixels at the output minimum" }
func (m *SuppressedFraction) GetRange() (float64, float64) { return 0, 1 }
func (m *SuppressedFraction) IsHigherBetter() bool         { return false }

// DynamicRange is max - min of the output
type DynamicRange struct{}

func NewDynamicRange() *DynamicRange {
	return &DynamicRange{}
}

func (m *DynamicRange) Calculate(original, processed gocv.Mat) (float64, error) {
	if err := validatePair(original, processed); err != nil {
		return 0, err
	}
	minVal, maxVal, _, _ := gocv.MinMaxLoc(processed)
	return float64(maxVal) - float64(minVal), nil
}

func (m *DynamicRange) GetName() string              { return "Dynamic Range" }
func (m *DynamicRange) GetDescription() string       { return "Difference between the largest and smallest output value" }
func (m *DynamicRange) GetRange() (float64, float64) { return 0, 2 * core.PixelFloat32.Max() }
func (m *DynamicRange) IsHigherBetter() bool         { return true }

// MeanIntensity is the mean output value
type MeanIntensity struct{}

func NewMeanIntensity() *MeanIntensity {
	return &MeanIntensity{}
}

func (m *MeanIntensity) Calculate(original, processed gocv.Mat) (float64, error) {
	if err := validatePair(original, processed); err != nil {
		return 0, err
	}
	return processed.Mean().Val1, nil
}

func (m *MeanIntensity) GetName() string        { return "Mean Intensity" }
func (m *MeanIntensity) GetDescription() string { return "Mean output value" }
func (m *MeanIntensity) GetRange() (float64, float64) {
	return core.PixelFloat32.Min(), core.PixelFloat32.Max()
}
func (m *MeanIntensity) IsHigherBetter() bool { return false }

// RangeCoverage is the output's dynamic range divided by the full range of
// its pixel type. A rescaled, non-constant output covers 1.
type RangeCoverage struct{}

func NewRangeCoverage() *RangeCoverage {
	return &RangeCoverage{}
}

func (m *RangeCoverage) Calculate(original, processed gocv.Mat) (float64, error) {
	if err := validatePair(original, processed); err != nil {
		return 0, err
	}
	pt, err := core.PixelTypeOf(processed.Type())
	if err != nil {
		return 0, err
	}

	minVal, maxVal, _, _ := gocv.MinMaxLoc(processed)
	full := pt.Max() - pt.Min()
	return (float64(maxVal) - float64(minVal)) / full, nil
}

func (m *RangeCoverage) GetName() string              { return "Range Coverage" }
func (m *RangeCoverage) GetDescription() string       { return "Output range relative to the pixel type range" }
func (m *RangeCoverage) GetRange() (float64, float64) { return 0, 1 }
func (m *RangeCoverage) IsHigherBetter() bool         { return true }
