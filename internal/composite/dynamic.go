package composite

import (
	"fmt"
	"math"

	"composite-filter/internal/core"
)

// Filter is a CompositeFilter whose pixel type is chosen at run time
type Filter interface {
	core.Filter
	ThresholdValue() float64
	SetThresholdValue(value float64)
	OutputPixelType() core.PixelType
	Close() error
}

// ThresholdValue returns the threshold converted to float64
func (c *CompositeFilter[T]) ThresholdValue() float64 {
	return float64(c.thresholdValue)
}

// SetThresholdValue converts value to the pixel type and sets it. Values
// are clamped to the type's range; integer types round fractions up, as
// the threshold stage does with its lower bound. NaN suppresses nothing.
func (c *CompositeFilter[T]) SetThresholdValue(value float64) {
	pt := core.PixelTypeFor[T]()
	if math.IsNaN(value) {
		value = pt.Min()
	}
	if !pt.IsFloat() {
		value = math.Ceil(value)
	}
	value = math.Min(math.Max(value, pt.Min()), pt.Max())
	c.SetThreshold(T(value))
}

// NewForPixelType creates a composite filter for input images of type pt
func NewForPixelType(pt core.PixelType, opts ...Option) (Filter, error) {
	switch pt {
	case core.PixelUInt8:
		return New[uint8](opts...), nil
	case core.PixelInt8:
		return New[int8](opts...), nil
	case core.PixelUInt16:
		return New[uint16](opts...), nil
	case core.PixelInt16:
		return New[int16](opts...), nil
	case core.PixelInt32:
		return New[int32](opts...), nil
	case core.PixelFloat32:
		return New[float32](opts...), nil
	}
	return nil, fmt.Errorf("%w: %v", core.ErrUnsupportedPixelType, pt)
}
