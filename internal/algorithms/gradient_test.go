package algorithms

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"composite-filter/internal/core"
	"composite-filter/internal/imagetest"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	return logger
}

func TestGradientMagnitude(t *testing.T) {
	tests := []struct {
		name    string
		inType  core.PixelType
		outType core.PixelType
		rows    [][]float64
		want    [][]float64
		wantOut core.PixelType
	}{
		{
			name:    "horizontal ramp",
			inType:  core.PixelUInt8,
			rows:    imagetest.Repeat([]float64{0, 2, 4, 6, 8}, 3),
			want:    imagetest.Repeat([]float64{1, 2, 2, 2, 1}, 3),
			wantOut: core.PixelUInt8,
		},
		{
			name:    "vertical step as float",
			inType:  core.PixelFloat32,
			rows:    [][]float64{{0, 0}, {0, 0}, {10, 10}, {10, 10}},
			want:    [][]float64{{0, 0}, {5, 5}, {5, 5}, {0, 0}},
			wantOut: core.PixelFloat32,
		},
		{
			name:    "constant image",
			inType:  core.PixelInt16,
			outType: core.PixelFloat32,
			rows:    imagetest.Repeat([]float64{-7, -7, -7}, 3),
			want:    imagetest.Repeat([]float64{0, 0, 0}, 3),
			wantOut: core.PixelFloat32,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := imagetest.NewMat(t, tt.inType, tt.rows)

			g := NewGradientMagnitude(quietLogger())
			defer g.Close()
			g.SetOutputPixelType(tt.outType)
			g.SetInput(core.NewImageView(input))

			require.NoError(t, g.Update())

			pt, err := g.Output().PixelType()
			require.NoError(t, err)
			assert.Equal(t, tt.wantOut, pt)
			assert.InDeltaSlice(t, flatten(tt.want), flatten(imagetest.Values(t, g.Output().Mat())), 1e-5)
		})
	}
}

func TestGradientRejectsColor(t *testing.T) {
	input := gocv.NewMatWithSize(4, 4, gocv.MatTypeCV8UC3)
	defer input.Close()

	g := NewGradientMagnitude(quietLogger())
	defer g.Close()
	g.SetInput(core.NewImageView(input))

	assert.ErrorIs(t, g.Update(), core.ErrChannelCount)
}

func TestGradientDescribe(t *testing.T) {
	g := NewGradientMagnitude(quietLogger())
	defer g.Close()

	var buf bytes.Buffer
	g.Describe(&buf, 0)
	assert.Contains(t, buf.String(), "GradientMagnitudeImageFilter\n")
	assert.Contains(t, buf.String(), "  OutputPixelType: same as input\n")
}

func flatten(rows [][]float64) []float64 {
	var out []float64
	for _, row := range rows {
		out = append(out, row...)
	}
	return out
}
