package core

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

// addOne writes input+1 into its output and records the call order
type addOne struct {
	*ProcessObject
	calls *[]string
	err   error
}

func newAddOne(name string, calls *[]string) *addOne {
	f := &addOne{calls: calls}
	f.ProcessObject = NewProcessObject(name, f, testLogger())
	return f
}

func (f *addOne) GenerateData() error {
	*f.calls = append(*f.calls, f.Name())
	if f.err != nil {
		return f.err
	}
	input := f.Input().Mat()
	output := f.Output().Mat()
	input.CopyTo(&output)
	output.AddFloat(1)
	return nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	return logger
}

func TestIndent(t *testing.T) {
	assert.Equal(t, "", Indent(0).String())
	assert.Equal(t, "    ", Indent(2).Next().String())
}

func TestUpdateWithoutInput(t *testing.T) {
	var calls []string
	f := newAddOne("first", &calls)
	defer f.Close()

	err := f.Update()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoInput)
	assert.Contains(t, err.Error(), "first")
	assert.Empty(t, calls)
	assert.Zero(t, f.Executions())
}

func TestUpdatePullsUpstreamFirst(t *testing.T) {
	var calls []string
	first := newAddOne("first", &calls)
	defer first.Close()
	second := newAddOne("second", &calls)
	defer second.Close()

	mat := gocv.NewMatWithSize(2, 2, gocv.MatTypeCV32F)
	defer mat.Close()

	first.SetInput(NewImageView(mat))
	second.SetInput(first.Output())

	require.NoError(t, second.Update())
	assert.Equal(t, []string{"first", "second"}, calls)
	assert.Equal(t, int64(1), first.Executions())
	assert.Equal(t, int64(1), second.Executions())
}

func TestUpdateWrapsUpstreamError(t *testing.T) {
	var calls []string
	first := newAddOne("first", &calls)
	defer first.Close()
	second := newAddOne("second", &calls)
	defer second.Close()

	boom := errors.New("boom")
	first.err = boom

	mat := gocv.NewMatWithSize(2, 2, gocv.MatTypeCV32F)
	defer mat.Close()
	first.SetInput(NewImageView(mat))
	second.SetInput(first.Output())

	err := second.Update()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "second: upstream first: first: boom", err.Error())
	assert.Equal(t, []string{"first"}, calls)
	assert.Zero(t, second.Executions())
}

func TestOutputRecordsSource(t *testing.T) {
	var calls []string
	f := newAddOne("first", &calls)
	defer f.Close()

	assert.Equal(t, "first", f.Output().Source().Name())
	assert.True(t, f.Output().Owned())
}

func TestDescribe(t *testing.T) {
	var calls []string
	f := newAddOne("first", &calls)
	defer f.Close()

	var buf bytes.Buffer
	f.Describe(&buf, Indent(2))
	assert.Equal(t, "  first\n    Executions: 0\n    Input: (none)\n    Output: 0x0\n", buf.String())
}
