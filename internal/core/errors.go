package core

import "errors"

var (
	ErrNoInput              = errors.New("filter input is not set")
	ErrEmptyImage           = errors.New("image is empty")
	ErrPixelTypeMismatch    = errors.New("pixel type mismatch")
	ErrUnsupportedPixelType = errors.New("unsupported pixel type")
	ErrChannelCount         = errors.New("unsupported channel count")
)
