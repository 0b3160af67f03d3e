package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndListRuns(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	created := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	first := Run{
		InputPath:       "in/a.png",
		OutputPath:      "out/a_edges.png",
		Threshold:       1,
		PixelType:       "float32",
		OutputPixelType: "uint8",
		Width:           640,
		Height:          480,
		Duration:        1500 * time.Millisecond,
		Metrics:         map[string]float64{"edge_density": 0.25},
		CreatedAt:       created,
	}
	id, err := s.RecordRun(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	second := first
	second.InputPath = "in/b.png"
	second.Threshold = 30
	second.CreatedAt = time.Time{}
	_, err = s.RecordRun(ctx, second)
	require.NoError(t, err)

	runs, err := s.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "in/b.png", runs[0].InputPath, "newest first")
	assert.False(t, runs[0].CreatedAt.IsZero())

	got := runs[1]
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, first.OutputPath, got.OutputPath)
	assert.Equal(t, first.Threshold, got.Threshold)
	assert.Equal(t, first.PixelType, got.PixelType)
	assert.Equal(t, first.OutputPixelType, got.OutputPixelType)
	assert.Equal(t, 640, got.Width)
	assert.Equal(t, 480, got.Height)
	assert.Equal(t, first.Duration, got.Duration)
	assert.Equal(t, first.Metrics, got.Metrics)
	assert.True(t, created.Equal(got.CreatedAt))

	limited, err := s.ListRuns(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestRunsForInput(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, in := range []string{"a.png", "b.png", "a.png"} {
		_, err := s.RecordRun(ctx, Run{InputPath: in, PixelType: "uint8", OutputPixelType: "uint8"})
		require.NoError(t, err)
	}

	runs, err := s.RunsForInput(ctx, "a.png")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, int64(3), runs[0].ID)
	assert.Equal(t, int64(1), runs[1].ID)

	runs, err = s.RunsForInput(ctx, "c.png")
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.RecordRun(ctx, Run{InputPath: "a.png", PixelType: "uint8", OutputPixelType: "uint8"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	runs, err := s.ListRuns(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
