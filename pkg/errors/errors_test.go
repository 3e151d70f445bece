package errors

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("crsim", "closest to 2019-07-01T12:00:00Z")
	assert.Contains(t, err.Error(), "crsim")
	assert.Contains(t, err.Error(), "closest to")
	assert.True(t, Is(err, ErrNotFound))
	assert.True(t, IsNotFound(err))
	assert.False(t, IsDuplicateDataset(err))
}

func TestNotFoundErrorWithoutQuery(t *testing.T) {
	err := NewNotFoundError("dwd", "")
	assert.Equal(t, "no dwd data found", err.Error())
}

func TestDuplicateDatasetError(t *testing.T) {
	err := NewDuplicateDatasetError("wrf", "2019-07-01T12:00:00Z/mp=8/Munich", 2)
	assert.Contains(t, err.Error(), "2 wrf dataset records")
	assert.True(t, IsDuplicateDataset(err))

	// The fault must survive wrapping through a sync error chain.
	wrapped := fmt.Errorf("sync aborted: %w", err)
	assert.True(t, IsDuplicateDataset(wrapped))

	var dup *DuplicateDatasetError
	require.True(t, As(wrapped, &dup))
	assert.Equal(t, 2, dup.Count)
}

func TestOpenErrorUnwrap(t *testing.T) {
	cause := New("permission denied")
	err := NewOpenError("/data/db/crsim.yaml", cause)
	assert.Contains(t, err.Error(), "/data/db/crsim.yaml")
	assert.True(t, Is(err, cause))
}

func TestLoadErrorUnwrap(t *testing.T) {
	cause := New("file truncated")
	err := WrapLoad("regulargrid", "/data/rg/file.nc", cause)
	require.Error(t, err)
	assert.True(t, Is(err, cause))

	var load *LoadError
	require.True(t, As(err, &load))
	assert.Equal(t, "regulargrid", load.Product)
}

func TestParseErrorIsCorruptFile(t *testing.T) {
	err := NewParseError("hmc", "/data/hmc/bad.nc", "no time attribute", nil)
	assert.True(t, IsCorruptFile(err))
	assert.Contains(t, err.Error(), "no time attribute")
}

func TestWrapHelpersNilPassThrough(t *testing.T) {
	assert.NoError(t, WrapIO("write", "/tmp/x", nil))
	assert.NoError(t, WrapOpen("/tmp/x", nil))
	assert.NoError(t, WrapLoad("wrf", "/tmp/x", nil))
	assert.NoError(t, WrapParse("wrf", "/tmp/x", nil))
}

func TestIsCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.True(t, IsCanceled(ctx.Err()))
	assert.True(t, IsCanceled(fmt.Errorf("walk: %w", context.DeadlineExceeded)))
	assert.False(t, IsCanceled(ErrNotFound))
}

func TestConfigError(t *testing.T) {
	err := NewConfigError("products", "unknown product \"sbm\"", nil)
	assert.Contains(t, err.Error(), "products")
	assert.True(t, Is(err, ErrInvalidInput))
}
