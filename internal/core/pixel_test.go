package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestPixelTypeRange(t *testing.T) {
	tests := []struct {
		pt       PixelType
		min, max float64
		isFloat  bool
	}{
		{PixelUInt8, 0, 255, false},
		{PixelInt8, -128, 127, false},
		{PixelUInt16, 0, 65535, false},
		{PixelInt16, -32768, 32767, false},
		{PixelInt32, math.MinInt32, math.MaxInt32, false},
		{PixelFloat32, -math.MaxFloat32, math.MaxFloat32, true},
	}

	for _, tt := range tests {
		t.Run(tt.pt.String(), func(t *testing.T) {
			assert.Equal(t, tt.min, tt.pt.Min())
			assert.Equal(t, tt.max, tt.pt.Max())
			assert.Equal(t, tt.isFloat, tt.pt.IsFloat())
			assert.True(t, tt.pt.Valid())

			back, err := PixelTypeOf(tt.pt.MatType())
			require.NoError(t, err)
			assert.Equal(t, tt.pt, back)

			parsed, err := ParsePixelType(tt.pt.String())
			require.NoError(t, err)
			assert.Equal(t, tt.pt, parsed)
		})
	}
}

func TestParsePixelTypeAliases(t *testing.T) {
	tests := map[string]PixelType{
		"uchar":   PixelUInt8,
		" UINT8 ": PixelUInt8,
		"short":   PixelInt16,
		"float":   PixelFloat32,
		"f32":     PixelFloat32,
		"ushort":  PixelUInt16,
		"int":     PixelInt32,
		"char":    PixelInt8,
	}
	for name, want := range tests {
		got, err := ParsePixelType(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParsePixelType("float64")
	assert.ErrorIs(t, err, ErrUnsupportedPixelType)
}

func TestPixelTypeOfRejectsMultiChannel(t *testing.T) {
	_, err := PixelTypeOf(gocv.MatTypeCV8UC3)
	assert.ErrorIs(t, err, ErrUnsupportedPixelType)
}

func TestPixelTypeFor(t *testing.T) {
	assert.Equal(t, PixelUInt8, PixelTypeFor[uint8]())
	assert.Equal(t, PixelInt8, PixelTypeFor[int8]())
	assert.Equal(t, PixelUInt16, PixelTypeFor[uint16]())
	assert.Equal(t, PixelInt16, PixelTypeFor[int16]())
	assert.Equal(t, PixelInt32, PixelTypeFor[int32]())
	assert.Equal(t, PixelFloat32, PixelTypeFor[float32]())
}

func TestUnknownPixelType(t *testing.T) {
	assert.False(t, PixelUnknown.Valid())
	assert.Equal(t, "unknown", PixelUnknown.String())
}
