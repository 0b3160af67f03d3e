// Package composite chains gradient magnitude, threshold-below and
// intensity rescale behind a single filter interface.
package composite

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"composite-filter/internal/algorithms"
	"composite-filter/internal/core"
)

// DefaultThreshold is the threshold of a newly constructed filter
const DefaultThreshold = 1

// CompositeFilter runs gradient -> threshold -> rescale. The sub-filters
// are owned by the composite and wired once at construction.
type CompositeFilter[T core.Pixel] struct {
	*core.ProcessObject

	gradient  *algorithms.GradientMagnitude
	threshold *algorithms.Threshold
	rescale   *algorithms.RescaleIntensity

	thresholdValue T
	outputType     core.PixelType
}

type options struct {
	logger     *logrus.Logger
	outputType core.PixelType
}

// Option configures a CompositeFilter at construction
type Option func(*options)

// WithLogger sets the logger shared by the composite and its stages
func WithLogger(logger *logrus.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithOutputPixelType changes the sample type of the final output. The
// rescale range follows it, so float32 input with a uint8 output yields
// an 8-bit edge map spanning [0, 255].
func WithOutputPixelType(pt core.PixelType) Option {
	return func(o *options) {
		o.outputType = pt
	}
}

// New creates the sub-filters and connects them in their fixed order
func New[T core.Pixel](opts ...Option) *CompositeFilter[T] {
	o := options{outputType: core.PixelTypeFor[T]()}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.outputType.Valid() {
		o.outputType = core.PixelTypeFor[T]()
	}

	c := &CompositeFilter[T]{
		thresholdValue: DefaultThreshold,
		outputType:     o.outputType,
	}
	c.ProcessObject = core.NewProcessObject("CompositeFilter", c, o.logger)

	c.gradient = algorithms.NewGradientMagnitude(o.logger)
	c.threshold = algorithms.NewThreshold(o.logger)
	c.threshold.SetInput(c.gradient.Output())
	c.rescale = algorithms.NewRescaleIntensity(o.logger)
	c.rescale.SetInput(c.threshold.Output())
	c.rescale.SetOutputPixelType(o.outputType)
	c.rescale.SetFullRange(o.outputType)

	return c
}

// Threshold returns the cutoff applied by the threshold stage
func (c *CompositeFilter[T]) Threshold() T {
	return c.thresholdValue
}

// SetThreshold sets the cutoff used by the next execution
func (c *CompositeFilter[T]) SetThreshold(value T) {
	c.thresholdValue = value
}

// OutputPixelType returns the sample type of the final output
func (c *CompositeFilter[T]) OutputPixelType() core.PixelType {
	return c.outputType
}

// Stages returns the sub-filters in execution order
func (c *CompositeFilter[T]) Stages() []core.Filter {
	return []core.Filter{c.gradient, c.threshold, c.rescale}
}

// GenerateData runs the sub-pipeline over the composite's input and
// grafts the result as the composite's output.
func (c *CompositeFilter[T]) GenerateData() error {
	pt, err := c.Input().PixelType()
	if err != nil {
		return err
	}
	if want := core.PixelTypeFor[T](); pt != want {
		return fmt.Errorf("%w: input is %s, filter expects %s", core.ErrPixelTypeMismatch, pt, want)
	}

	// A fresh image keeps the gradient stage from pulling on our upstream
	input := core.NewImage()
	input.Graft(c.Input())
	c.gradient.SetInput(input)

	c.threshold.ThresholdBelow(float64(c.thresholdValue))

	c.rescale.GraftOutput(c.Output())
	if err := c.rescale.Update(); err != nil {
		return err
	}
	c.GraftOutput(c.rescale.Output())

	c.Logger().WithFields(logrus.Fields{
		"threshold":   c.thresholdValue,
		"output_type": c.outputType.String(),
	}).Debug("Composite filter executed")

	return nil
}

// Describe writes the base filter state followed by the threshold
func (c *CompositeFilter[T]) Describe(w io.Writer, indent core.Indent) {
	c.ProcessObject.Describe(w, indent)
	fmt.Fprintf(w, "%sThreshold: %v\n", indent.Next(), c.thresholdValue)
}

// Close releases the sub-filters and the composite's output
func (c *CompositeFilter[T]) Close() error {
	return errors.Join(
		c.rescale.Close(),
		c.threshold.Close(),
		c.gradient.Close(),
		c.ProcessObject.Close(),
	)
}
