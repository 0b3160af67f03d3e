package gui

import (
	"bytes"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"composite-filter/internal/core"
	"composite-filter/internal/imagetest"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	return logger
}

func TestToDisplayImage(t *testing.T) {
	mat := imagetest.NewMat(t, core.PixelFloat32, [][]float64{{-1, 0, 1}, {2, 3, 4}})

	img := toDisplayImage(mat, quietLogger())
	require.NotNil(t, img)
	assert.Equal(t, 3, img.Bounds().Dx())
	assert.Equal(t, 2, img.Bounds().Dy())
}

func TestViewerRefresh(t *testing.T) {
	a := test.NewTempApp(t)
	input := imagetest.NewMat(t, core.PixelFloat32, imagetest.Repeat([]float64{0, 0, 100, 100, 140}, 4))

	v := NewViewer(a, input, 1, quietLogger())
	defer v.window.Close()

	v.Refresh(30)
	assert.Equal(t, float32(30), v.filter.Threshold())
	assert.Equal(t, "Edge density: 0.400  Suppressed: 0.600", v.statusLabel.Text)
	assert.Equal(t, 5, v.previewImage.Image.Bounds().Dx())

	out := v.filter.Output().Mat()
	assert.Equal(t, imagetest.Repeat([]float64{0, 255, 255, 0, 0}, 4), imagetest.Values(t, out))
}

func TestRefreshAfterClose(t *testing.T) {
	a := test.NewTempApp(t)
	input := imagetest.NewMat(t, core.PixelFloat32, imagetest.Repeat([]float64{0, 0, 100, 100, 140}, 4))

	v := NewViewer(a, input, 1, quietLogger())
	v.Refresh(1)
	status := v.statusLabel.Text
	executions := v.filter.Executions()

	v.window.Close()
	v.close()
	assert.True(t, v.closed)

	assert.NotPanics(t, func() { v.Refresh(30) })
	assert.Equal(t, executions, v.filter.Executions(), "closed viewer must not execute the filter")
	assert.Equal(t, status, v.statusLabel.Text)
	assert.Equal(t, float32(1), v.filter.Threshold())
}
