package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordBuilder(t *testing.T) {
	rec := NewRecord().WithImage("9", "out1.png").WithImage("9", "out2.png").Completed().Build()
	require.True(t, rec.HasOutputs())
	assert.True(t, rec.IsCompleted())
	assert.Len(t, rec.Outputs["9"].Images, 2)
}

func TestRecordBuilderExecutionError(t *testing.T) {
	rec := NewRecord().WithExecutionError("KSampler", "CUDA out of memory").Build()
	msg, ok := rec.ErrorDescription()
	require.True(t, ok)
	assert.Equal(t, "KSampler: CUDA out of memory", msg)
	assert.False(t, rec.HasOutputs())
}

func TestRecordBuilderRunning(t *testing.T) {
	rec := NewRecord().Running().Build()
	_, failed := rec.ErrorDescription()
	assert.False(t, failed)
	assert.False(t, rec.IsCompleted())
}
