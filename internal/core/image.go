// Image handles shared between pipeline stages
package core

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Source produces an image when updated
type Source interface {
	Name() string
	Update() error
}

// Image wraps an OpenCV Mat. Grafted images reference another image's
// buffer and never release it.
type Image struct {
	mu     sync.RWMutex
	mat    gocv.Mat
	owned  bool
	source Source
}

// ImageMetadata contains image information
type ImageMetadata struct {
	Width    int
	Height   int
	Channels int
	Type     gocv.MatType
}

// NewImage creates an image with an empty owned buffer
func NewImage() *Image {
	return &Image{
		mat:   gocv.NewMat(),
		owned: true,
	}
}

// NewImageFromMat creates an image that takes ownership of mat
func NewImageFromMat(mat gocv.Mat) *Image {
	return &Image{
		mat:   mat,
		owned: true,
	}
}

// NewImageView wraps mat without taking ownership of it
func NewImageView(mat gocv.Mat) *Image {
	return &Image{
		mat: mat,
	}
}

// Mat returns a view of the underlying buffer. Writing into the view
// (e.g. as a gocv dst) is visible through every image sharing the buffer.
func (img *Image) Mat() gocv.Mat {
	img.mu.RLock()
	defer img.mu.RUnlock()
	return img.mat
}

// SetMat replaces the buffer and takes ownership of mat
func (img *Image) SetMat(mat gocv.Mat) {
	img.mu.Lock()
	defer img.mu.Unlock()

	if img.owned && img.mat.Ptr() != mat.Ptr() {
		img.mat.Close()
	}
	img.mat = mat
	img.owned = true
}

// Graft makes img a view over other's buffer without copying pixel data
func (img *Image) Graft(other *Image) {
	if other == nil || other == img {
		return
	}
	mat := other.Mat()

	img.mu.Lock()
	defer img.mu.Unlock()

	if img.mat.Ptr() == mat.Ptr() {
		return
	}
	if img.owned {
		img.mat.Close()
	}
	img.mat = mat
	img.owned = false
}

// Owned reports whether img releases its buffer on Close
func (img *Image) Owned() bool {
	img.mu.RLock()
	defer img.mu.RUnlock()
	return img.owned
}

// SharesBuffer reports whether both images reference the same Mat
func (img *Image) SharesBuffer(other *Image) bool {
	if other == nil {
		return false
	}
	a, b := img.Mat(), other.Mat()
	return a.Ptr() == b.Ptr()
}

// Source returns the process object producing this image, or nil
func (img *Image) Source() Source {
	img.mu.RLock()
	defer img.mu.RUnlock()
	return img.source
}

// SetSource records the producer of this image
func (img *Image) SetSource(src Source) {
	img.mu.Lock()
	defer img.mu.Unlock()
	img.source = src
}

// Empty returns true if the buffer holds no pixels
func (img *Image) Empty() bool {
	mat := img.Mat()
	return mat.Empty()
}

// Clone returns a deep copy owned by the caller
func (img *Image) Clone() gocv.Mat {
	mat := img.Mat()
	if mat.Empty() {
		return gocv.NewMat()
	}
	return mat.Clone()
}

// PixelType returns the sample type of the buffer
func (img *Image) PixelType() (PixelType, error) {
	mat := img.Mat()
	if mat.Empty() {
		return PixelUnknown, ErrEmptyImage
	}
	return PixelTypeOf(mat.Type())
}

// Metadata returns image information
func (img *Image) Metadata() ImageMetadata {
	mat := img.Mat()
	if mat.Empty() {
		return ImageMetadata{}
	}
	return ImageMetadata{
		Width:    mat.Cols(),
		Height:   mat.Rows(),
		Channels: mat.Channels(),
		Type:     mat.Type(),
	}
}

// Close releases the buffer if img owns it
func (img *Image) Close() error {
	img.mu.Lock()
	defer img.mu.Unlock()

	if !img.owned {
		return nil
	}
	img.owned = false
	return img.mat.Close()
}

// ValidateImage checks that mat is a non-empty single channel image
func ValidateImage(mat gocv.Mat) error {
	if mat.Empty() {
		return ErrEmptyImage
	}

	if mat.Cols() <= 0 || mat.Rows() <= 0 {
		return fmt.Errorf("invalid dimensions: %dx%d", mat.Cols(), mat.Rows())
	}

	if mat.Channels() != 1 {
		return fmt.Errorf("%w: %d", ErrChannelCount, mat.Channels())
	}

	return nil
}
