package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestGraftSharesBuffer(t *testing.T) {
	src := NewImageFromMat(gocv.NewMatWithSizeFromScalar(gocv.NewScalar(9, 0, 0, 0), 3, 4, gocv.MatTypeCV8U))
	defer src.Close()

	dst := NewImage()
	dst.Graft(src)

	assert.True(t, dst.SharesBuffer(src))
	assert.False(t, dst.Owned())
	assert.Equal(t, ImageMetadata{Width: 4, Height: 3, Channels: 1, Type: gocv.MatTypeCV8U}, dst.Metadata())

	// Writing through the view is visible in the source
	view := dst.Mat()
	view.SetUCharAt(1, 1, 42)
	mat := src.Mat()
	assert.Equal(t, uint8(42), mat.GetUCharAt(1, 1))

	// Closing a grafted image leaves the source intact
	require.NoError(t, dst.Close())
	assert.False(t, src.Empty())
	assert.Equal(t, uint8(9), mat.GetUCharAt(0, 0))
}

func TestGraftIgnoresSelfAndNil(t *testing.T) {
	img := NewImageFromMat(gocv.NewMatWithSize(2, 2, gocv.MatTypeCV8U))
	defer img.Close()

	img.Graft(img)
	img.Graft(nil)
	assert.True(t, img.Owned())

	view := NewImageView(img.Mat())
	img.Graft(view)
	assert.True(t, img.Owned(), "grafting an alias of the same buffer keeps ownership")
	assert.False(t, img.Empty())
}

func TestNewImageViewDoesNotOwn(t *testing.T) {
	mat := gocv.NewMatWithSize(2, 2, gocv.MatTypeCV16U)
	defer mat.Close()

	view := NewImageView(mat)
	assert.False(t, view.Owned())
	require.NoError(t, view.Close())
	assert.False(t, mat.Empty())

	pt, err := view.PixelType()
	require.NoError(t, err)
	assert.Equal(t, PixelUInt16, pt)
}

func TestImageCloneIsDeep(t *testing.T) {
	img := NewImageFromMat(gocv.NewMatWithSizeFromScalar(gocv.NewScalar(1, 0, 0, 0), 2, 2, gocv.MatTypeCV8U))
	defer img.Close()

	clone := img.Clone()
	defer clone.Close()
	clone.SetUCharAt(0, 0, 200)

	mat := img.Mat()
	assert.Equal(t, uint8(1), mat.GetUCharAt(0, 0))
}

func TestEmptyImage(t *testing.T) {
	img := NewImage()
	defer img.Close()

	assert.True(t, img.Empty())
	assert.Equal(t, ImageMetadata{}, img.Metadata())
	_, err := img.PixelType()
	assert.ErrorIs(t, err, ErrEmptyImage)

	clone := img.Clone()
	defer clone.Close()
	assert.True(t, clone.Empty())
}

func TestValidateImage(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()
	assert.ErrorIs(t, ValidateImage(empty), ErrEmptyImage)

	color := gocv.NewMatWithSize(4, 4, gocv.MatTypeCV8UC3)
	defer color.Close()
	assert.ErrorIs(t, ValidateImage(color), ErrChannelCount)

	gray := gocv.NewMatWithSize(4, 4, gocv.MatTypeCV32F)
	defer gray.Close()
	assert.NoError(t, ValidateImage(gray))

	wide := gocv.NewMatWithSize(1, 20000, gocv.MatTypeCV8U)
	defer wide.Close()
	assert.NoError(t, ValidateImage(wide), "no size limit beyond OpenCV's own")
}
