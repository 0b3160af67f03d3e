package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"composite-filter/internal/core"
	"composite-filter/internal/imagetest"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeStepImage(t *testing.T, path string) {
	t.Helper()
	mat := imagetest.NewMat(t, core.PixelUInt8, imagetest.Repeat([]float64{0, 0, 100, 100, 140}, 4))
	require.True(t, gocv.IMWrite(path, mat))
}

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{"lower=2.5", "mode=outside", "output_pixel_type=uint8", "empty="})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"lower":             2.5,
		"mode":              "outside",
		"output_pixel_type": "uint8",
		"empty":             "",
	}, params)

	_, err = parseParams([]string{"novalue"})
	assert.ErrorContains(t, err, "expected key=value")

	_, err = parseParams([]string{"=3"})
	assert.Error(t, err)
}

func TestAlgorithmsCommand(t *testing.T) {
	out, err := execute(t, "algorithms")
	require.NoError(t, err)
	for _, name := range []string{"composite_edge", "gradient_magnitude", "rescale_intensity", "threshold"} {
		assert.Contains(t, out, name+" - ")
	}
	assert.Contains(t, out, "outside_value")
}

func TestDescribeCommand(t *testing.T) {
	out, err := execute(t, "describe", "--threshold", "7", "--pixel-type", "uint8")
	require.NoError(t, err)
	assert.Contains(t, out, "CompositeFilter\n")
	assert.Contains(t, out, "  Threshold: 7\n")
}

func TestDescribeRejectsBadPixelType(t *testing.T) {
	_, err := execute(t, "describe", "--pixel-type", "complex128")
	assert.ErrorIs(t, err, core.ErrUnsupportedPixelType)
}

func TestRunRecordsHistory(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "step.png")
	out := filepath.Join(dir, "step_edges.png")
	db := filepath.Join(dir, "history.db")
	writeStepImage(t, in)

	stdout, err := execute(t, "run", in, out, "--db", db, "--output-pixel-type", "uint8")
	require.NoError(t, err)
	assert.Contains(t, stdout, "edge_density")

	result := gocv.IMRead(out, gocv.IMReadGrayScale)
	defer result.Close()
	require.False(t, result.Empty())
	assert.Equal(t, imagetest.Repeat([]float64{0, 255, 255, 102, 102}, 4), imagetest.Values(t, result))

	history, err := execute(t, "history", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, history, in)
	assert.Contains(t, history, "float32->uint8")
}

func TestBatchCommand(t *testing.T) {
	inDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "edges")
	for _, name := range []string{"a.png", "b.png", "c.bmp"} {
		writeStepImage(t, filepath.Join(inDir, name))
	}
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "notes.txt"), []byte("skip"), 0o644))

	_, err := execute(t, "batch", inDir, outDir, "--workers", "2", "--pixel-type", "uint8")
	require.NoError(t, err)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"a_edges.png", "b_edges.png", "c_edges.png"}, names)
}

func TestHistoryWithoutDatabase(t *testing.T) {
	_, err := execute(t, "history")
	assert.ErrorContains(t, err, "no history database configured")
}
