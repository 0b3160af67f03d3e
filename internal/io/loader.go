// Image loading and saving delegated to OpenCV
package io

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"composite-filter/internal/core"
)

var supportedFormats = []string{".jpg", ".jpeg", ".png", ".tiff", ".tif", ".bmp"}

// ImageLoader handles image file operations
type ImageLoader struct {
	logger *logrus.Logger
}

func NewImageLoader(logger *logrus.Logger) *ImageLoader {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ImageLoader{
		logger: logger,
	}
}

// LoadImage reads a single channel image of any depth and converts it to
// the requested pixel type
func (il *ImageLoader) LoadImage(filepath string, pt core.PixelType) (gocv.Mat, error) {
	il.logger.WithField("filepath", filepath).Debug("Loading image")

	if !IsSupportedImageFormat(filepath) {
		return gocv.NewMat(), fmt.Errorf("unsupported image format: %s", filepath)
	}
	if !pt.Valid() {
		return gocv.NewMat(), fmt.Errorf("%w: %v", core.ErrUnsupportedPixelType, pt)
	}

	raw := gocv.IMRead(filepath, gocv.IMReadGrayScale|gocv.IMReadAnyDepth)
	if raw.Empty() {
		raw.Close()
		return gocv.NewMat(), fmt.Errorf("failed to load image: %s", filepath)
	}

	mat := raw
	if raw.Type() != pt.MatType() {
		mat = gocv.NewMat()
		raw.ConvertTo(&mat, pt.MatType())
		raw.Close()
	}

	il.logger.WithFields(logrus.Fields{
		"filepath":   filepath,
		"width":      mat.Cols(),
		"height":     mat.Rows(),
		"pixel_type": pt.String(),
	}).Info("Image loaded successfully")

	return mat, nil
}

// SaveImage writes mat to filepath. 8 and 16 bit unsigned images are
// written unchanged; other depths are min-max scaled to 8 bit first.
func (il *ImageLoader) SaveImage(mat gocv.Mat, filepath string) error {
	il.logger.WithField("filepath", filepath).Debug("Saving image")

	if mat.Empty() {
		return fmt.Errorf("cannot save empty image")
	}

	if !IsSupportedImageFormat(filepath) {
		return fmt.Errorf("unsupported image format: %s", filepath)
	}

	toWrite := mat
	if t := mat.Type(); t != gocv.MatTypeCV8U && t != gocv.MatTypeCV16U {
		il.logger.WithFields(logrus.Fields{
			"filepath": filepath,
			"type":     t,
		}).Warn("Scaling image to 8 bit for writing")

		wide := gocv.NewMat()
		defer wide.Close()
		mat.ConvertTo(&wide, gocv.MatTypeCV64F)
		gocv.Normalize(wide, &wide, 0, 255, gocv.NormMinMax)

		scaled := gocv.NewMat()
		defer scaled.Close()
		wide.ConvertTo(&scaled, gocv.MatTypeCV8U)
		toWrite = scaled
	}

	if !gocv.IMWrite(filepath, toWrite) {
		return fmt.Errorf("failed to save image: %s", filepath)
	}

	il.logger.WithFields(logrus.Fields{
		"filepath": filepath,
		"width":    mat.Cols(),
		"height":   mat.Rows(),
	}).Info("Image saved successfully")

	return nil
}

// IsSupportedImageFormat reports whether the extension can be read and written
func IsSupportedImageFormat(filepath string) bool {
	ext := strings.ToLower(getFileExtension(filepath))
	for _, format := range supportedFormats {
		if ext == format {
			return true
		}
	}
	return false
}

func getFileExtension(filepath string) string {
	for i := len(filepath) - 1; i >= 0; i-- {
		if filepath[i] == '.' {
			return filepath[i:]
		}
		if filepath[i] == '/' || filepath[i] == '\\' {
			break
		}
	}
	return ""
}

func (il *ImageLoader) GetSupportedFormats() []string {
	return []string{"JPEG", "PNG", "TIFF", "BMP"}
}
