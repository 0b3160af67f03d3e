// Single-input, single-output process objects with demand-driven updates
package core

import (
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Filter is the contract every pipeline stage implements
type Filter interface {
	Name() string
	SetInput(input *Image)
	Input() *Image
	Output() *Image
	GraftOutput(img *Image)
	Update() error
	Describe(w io.Writer, indent Indent)
	Executions() int64
}

// DataGenerator computes a filter's output from its input
type DataGenerator interface {
	GenerateData() error
}

// Indent prints as a run of spaces in Describe output
type Indent int

func (i Indent) String() string {
	return strings.Repeat(" ", int(i))
}

// Next returns the indent used for nested objects
func (i Indent) Next() Indent {
	return i + 2
}

// ProcessObject holds the plumbing shared by all filters. Concrete filters
// embed a pointer to it and pass themselves as the generator.
type ProcessObject struct {
	name      string
	generator DataGenerator
	input     *Image
	output    *Image
	logger    *logrus.Logger

	executions   atomic.Int64
	lastDuration atomic.Int64
}

// NewProcessObject creates the plumbing for a named filter
func NewProcessObject(name string, generator DataGenerator, logger *logrus.Logger) *ProcessObject {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	po := &ProcessObject{
		name:      name,
		generator: generator,
		output:    NewImage(),
		logger:    logger,
	}
	po.output.SetSource(po)
	return po
}

func (po *ProcessObject) Name() string {
	return po.name
}

func (po *ProcessObject) SetInput(input *Image) {
	po.input = input
}

func (po *ProcessObject) Input() *Image {
	return po.input
}

func (po *ProcessObject) Output() *Image {
	return po.output
}

// GraftOutput makes the filter write into img's buffer. The output image
// object stays the same so downstream filters keep their connection.
func (po *ProcessObject) GraftOutput(img *Image) {
	po.output.Graft(img)
}

func (po *ProcessObject) Logger() *logrus.Logger {
	return po.logger
}

func (po *ProcessObject) Executions() int64 {
	return po.executions.Load()
}

func (po *ProcessObject) LastDuration() time.Duration {
	return time.Duration(po.lastDuration.Load())
}

// Update brings the upstream source up to date, then generates this
// filter's output on the calling goroutine.
func (po *ProcessObject) Update() error {
	if po.input == nil {
		return fmt.Errorf("%s: %w", po.name, ErrNoInput)
	}

	if src := po.input.Source(); src != nil {
		if err := src.Update(); err != nil {
			return fmt.Errorf("%s: upstream %s: %w", po.name, src.Name(), err)
		}
	}

	start := time.Now()
	if err := po.generator.GenerateData(); err != nil {
		return fmt.Errorf("%s: %w", po.name, err)
	}
	duration := time.Since(start)

	po.executions.Add(1)
	po.lastDuration.Store(int64(duration))

	meta := po.output.Metadata()
	po.logger.WithFields(logrus.Fields{
		"filter":   po.name,
		"width":    meta.Width,
		"height":   meta.Height,
		"duration": duration,
	}).Debug("Filter executed")

	return nil
}

// Describe writes the state common to all filters
func (po *ProcessObject) Describe(w io.Writer, indent Indent) {
	fmt.Fprintf(w, "%s%s\n", indent, po.name)
	next := indent.Next()
	fmt.Fprintf(w, "%sExecutions: %d\n", next, po.Executions())
	if po.input == nil {
		fmt.Fprintf(w, "%sInput: (none)\n", next)
	} else {
		meta := po.input.Metadata()
		fmt.Fprintf(w, "%sInput: %dx%d\n", next, meta.Width, meta.Height)
	}
	meta := po.output.Metadata()
	fmt.Fprintf(w, "%sOutput: %dx%d\n", next, meta.Width, meta.Height)
}

// Close releases the output buffer if the filter owns it
func (po *ProcessObject) Close() error {
	return po.output.Close()
}
