// Package imagetest builds small Mats from literal values for tests.
package imagetest

import (
	"testing"

	"gocv.io/x/gocv"

	"composite-filter/internal/core"
)

// NewMat creates a single channel Mat of type pt holding rows. The Mat is
// closed when the test ends.
func NewMat(t testing.TB, pt core.PixelType, rows [][]float64) gocv.Mat {
	t.Helper()

	wide := gocv.NewMatWithSize(len(rows), len(rows[0]), gocv.MatTypeCV64F)
	defer wide.Close()
	for r, row := range rows {
		for c, v := range row {
			wide.SetDoubleAt(r, c, v)
		}
	}

	mat := gocv.NewMat()
	wide.ConvertTo(&mat, pt.MatType())
	t.Cleanup(func() { mat.Close() })
	return mat
}

// Values reads every sample of a single channel Mat as float64
func Values(t testing.TB, mat gocv.Mat) [][]float64 {
	t.Helper()

	wide := gocv.NewMat()
	defer wide.Close()
	mat.ConvertTo(&wide, gocv.MatTypeCV64F)

	rows := make([][]float64, wide.Rows())
	for r := range rows {
		rows[r] = make([]float64, wide.Cols())
		for c := range rows[r] {
			rows[r][c] = wide.GetDoubleAt(r, c)
		}
	}
	return rows
}

// Repeat returns n copies of row
func Repeat(row []float64, n int) [][]float64 {
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = append([]float64(nil), row...)
	}
	return rows
}
