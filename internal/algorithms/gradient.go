// Gradient magnitude stage backed by OpenCV derivatives
package algorithms

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"composite-filter/internal/core"
)

// GradientMagnitude computes |∇I| with central differences. Borders are
// replicated, which gives a zero derivative across the image edge.
type GradientMagnitude struct {
	*core.ProcessObject
	outputType core.PixelType
}

// NewGradientMagnitude creates a gradient magnitude filter
func NewGradientMagnitude(logger *logrus.Logger) *GradientMagnitude {
	g := &GradientMagnitude{}
	g.ProcessObject = core.NewProcessObject("GradientMagnitudeImageFilter", g, logger)
	return g
}

// SetOutputPixelType selects the output sample type. PixelUnknown keeps
// the input type.
func (g *GradientMagnitude) SetOutputPixelType(pt core.PixelType) {
	g.outputType = pt
}

// OutputPixelType returns the configured output type, PixelUnknown if
// it follows the input
func (g *GradientMagnitude) OutputPixelType() core.PixelType {
	return g.outputType
}

// GenerateData computes the gradient magnitude of the input
func (g *GradientMagnitude) GenerateData() error {
	input := g.Input().Mat()
	if err := core.ValidateImage(input); err != nil {
		return err
	}

	inType, err := core.PixelTypeOf(input.Type())
	if err != nil {
		return err
	}
	outType := g.outputType
	if !outType.Valid() {
		outType = inType
	}

	src := gocv.NewMat()
	defer src.Close()
	input.ConvertTo(&src, gocv.MatTypeCV32F)

	// ksize 1 is the plain [-1 0 1] kernel; scale 0.5 turns it into a
	// central difference
	gx := gocv.NewMat()
	defer gx.Close()
	gocv.Sobel(src, &gx, gocv.MatTypeCV32F, 1, 0, 1, 0.5, 0, gocv.BorderReplicate)

	gy := gocv.NewMat()
	defer gy.Close()
	gocv.Sobel(src, &gy, gocv.MatTypeCV32F, 0, 1, 1, 0.5, 0, gocv.BorderReplicate)

	magnitude := gocv.NewMat()
	defer magnitude.Close()
	gocv.Magnitude(gx, gy, &magnitude)

	output := g.Output().Mat()
	magnitude.ConvertTo(&output, outType.MatType())
	if output.Empty() {
		return fmt.Errorf("gradient output is empty")
	}

	return nil
}

// Describe writes the base filter state followed by the output type
func (g *GradientMagnitude) Describe(w io.Writer, indent core.Indent) {
	g.ProcessObject.Describe(w, indent)
	outType := "same as input"
	if g.outputType.Valid() {
		outType = g.outputType.String()
	}
	fmt.Fprintf(w, "%sOutputPixelType: %s\n", indent.Next(), outType)
}
