// Pixel value types supported by the filter pipeline
package core

import (
	"fmt"
	"math"
	"strings"

	"gocv.io/x/gocv"
)

// PixelType identifies the scalar type of one image sample
type PixelType int

const (
	PixelUnknown PixelType = iota
	PixelUInt8
	PixelInt8
	PixelUInt16
	PixelInt16
	PixelInt32
	PixelFloat32
)

// Pixel is the set of Go types an image sample can be represented with
type Pixel interface {
	uint8 | int8 | uint16 | int16 | int32 | float32
}

var pixelNames = map[PixelType]string{
	PixelUInt8:   "uint8",
	PixelInt8:    "int8",
	PixelUInt16:  "uint16",
	PixelInt16:   "int16",
	PixelInt32:   "int32",
	PixelFloat32: "float32",
}

func (p PixelType) String() string {
	if name, ok := pixelNames[p]; ok {
		return name
	}
	return "unknown"
}

// MatType returns the single channel OpenCV type for the pixel type
func (p PixelType) MatType() gocv.MatType {
	switch p {
	case PixelUInt8:
		return gocv.MatTypeCV8U
	case PixelInt8:
		return gocv.MatTypeCV8S
	case PixelUInt16:
		return gocv.MatTypeCV16U
	case PixelInt16:
		return gocv.MatTypeCV16S
	case PixelInt32:
		return gocv.MatTypeCV32S
	case PixelFloat32:
		return gocv.MatTypeCV32F
	}
	return gocv.MatTypeCV8U
}

// Min returns the non-positive minimum of the type. For float32 this is
// -MaxFloat32, not the smallest positive value.
func (p PixelType) Min() float64 {
	switch p {
	case PixelInt8:
		return math.MinInt8
	case PixelInt16:
		return math.MinInt16
	case PixelInt32:
		return math.MinInt32
	case PixelFloat32:
		return -math.MaxFloat32
	}
	return 0
}

// Max returns the largest representable value of the type
func (p PixelType) Max() float64 {
	switch p {
	case PixelUInt8:
		return math.MaxUint8
	case PixelInt8:
		return math.MaxInt8
	case PixelUInt16:
		return math.MaxUint16
	case PixelInt16:
		return math.MaxInt16
	case PixelInt32:
		return math.MaxInt32
	case PixelFloat32:
		return math.MaxFloat32
	}
	return 0
}

// IsFloat reports whether samples are floating point
func (p PixelType) IsFloat() bool {
	return p == PixelFloat32
}

// Valid reports whether p is one of the supported types
func (p PixelType) Valid() bool {
	_, ok := pixelNames[p]
	return ok
}

// ParsePixelType converts a type name such as "uint8" or "float32"
func ParsePixelType(name string) (PixelType, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "uchar", "u8":
		key = "uint8"
	case "char", "i8":
		key = "int8"
	case "ushort", "u16":
		key = "uint16"
	case "short", "i16":
		key = "int16"
	case "int", "i32":
		key = "int32"
	case "float", "f32":
		key = "float32"
	}
	for p, n := range pixelNames {
		if n == key {
			return p, nil
		}
	}
	return PixelUnknown, fmt.Errorf("%w: %q", ErrUnsupportedPixelType, name)
}

// PixelTypeOf maps a single channel OpenCV type to its pixel type
func PixelTypeOf(mt gocv.MatType) (PixelType, error) {
	switch mt {
	case gocv.MatTypeCV8U:
		return PixelUInt8, nil
	case gocv.MatTypeCV8S:
		return PixelInt8, nil
	case gocv.MatTypeCV16U:
		return PixelUInt16, nil
	case gocv.MatTypeCV16S:
		return PixelInt16, nil
	case gocv.MatTypeCV32S:
		return PixelInt32, nil
	case gocv.MatTypeCV32F:
		return PixelFloat32, nil
	}
	return PixelUnknown, fmt.Errorf("%w: mat type %v", ErrUnsupportedPixelType, mt)
}

// PixelTypeFor returns the pixel type backing the Go type T
func PixelTypeFor[T Pixel]() PixelType {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return PixelUInt8
	case int8:
		return PixelInt8
	case uint16:
		return PixelUInt16
	case int16:
		return PixelInt16
	case int32:
		return PixelInt32
	case float32:
		return PixelFloat32
	}
	return PixelUnknown
}
