package icecat

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icepolcka/icecat/pkg/errors"
	"github.com/icepolcka/icecat/pkg/handle"
)

// queryFixture builds a synced wrf catalog with one dataset every ten
// minutes from 11:50 to 12:10.
func queryFixture(t *testing.T) *Catalog {
	t.Helper()
	root := t.TempDir()
	for _, stamp := range []string{"115000", "120000", "121000"} {
		writeFile(t, filepath.Join(root, "MP8", "wrfout_d03_2019-07-01_"+stamp))
	}
	cat := openTestCatalog(t, "wrf", root, WithSyncOnOpen(true))
	require.Equal(t, 3, cat.Len())
	return cat
}

func TestOpenUnknownProduct(t *testing.T) {
	_, err := Open("sonde", t.TempDir(), filepath.Join(t.TempDir(), "s.yaml"))
	require.Error(t, err)

	var cfg *errors.ConfigError
	assert.True(t, errors.As(err, &cfg))
}

func TestOpenCorruptStore(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "wrf.yaml")
	require.NoError(t, os.WriteFile(storePath, []byte("reference: [unclosed"), 0o644))

	_, err := Open("wrf", t.TempDir(), storePath)
	require.Error(t, err)

	var open *errors.OpenError
	assert.True(t, errors.As(err, &open))
}

func TestCatalogRange(t *testing.T) {
	cat := queryFixture(t)

	handles, err := cat.Range(context.Background(),
		time.Date(2019, 7, 1, 11, 50, 0, 0, time.UTC),
		time.Date(2019, 7, 1, 12, 0, 0, 0, time.UTC),
		Filters{})
	require.NoError(t, err)
	require.Len(t, handles, 2)

	// Ascending time order, bounds inclusive.
	first, ok := handles[0].Attribute("start_time")
	require.True(t, ok)
	assert.Equal(t, time.Date(2019, 7, 1, 11, 50, 0, 0, time.UTC), first)
}

func TestCatalogClosest(t *testing.T) {
	cat := queryFixture(t)

	h, err := cat.Closest(context.Background(),
		time.Date(2019, 7, 1, 11, 58, 0, 0, time.UTC), Filters{})
	require.NoError(t, err)

	got, ok := h.Attribute("start_time")
	require.True(t, ok)
	assert.Equal(t, time.Date(2019, 7, 1, 12, 0, 0, 0, time.UTC), got)
}

func TestCatalogClosestNoMatch(t *testing.T) {
	cat := queryFixture(t)

	_, err := cat.Closest(context.Background(),
		time.Date(2019, 7, 1, 12, 0, 0, 0, time.UTC), Filters{MP: 10})
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestCatalogLatest(t *testing.T) {
	cat := queryFixture(t)

	handles, err := cat.Latest(context.Background(), 2, Filters{})
	require.NoError(t, err)
	require.Len(t, handles, 2)

	newest, ok := handles[0].Attribute("start_time")
	require.True(t, ok)
	assert.Equal(t, time.Date(2019, 7, 1, 12, 10, 0, 0, time.UTC), newest)

	// Asking for more than exists is not an error.
	handles, err = cat.Latest(context.Background(), 10, Filters{})
	require.NoError(t, err)
	assert.Len(t, handles, 3)
}

func TestCatalogDays(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "MP8", "wrfout_d03_2019-07-01_120000"))
	writeFile(t, filepath.Join(root, "MP8", "wrfout_d03_2019-07-03_120000"))
	cat := openTestCatalog(t, "wrf", root, WithSyncOnOpen(true))

	days, err := cat.Days(context.Background(),
		time.Date(2019, 7, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2019, 7, 4, 0, 0, 0, 0, time.UTC),
		Filters{})
	require.NoError(t, err)

	// July 2nd holds nothing and is omitted rather than returned empty.
	require.Len(t, days, 2)
	assert.Len(t, days[0], 1)
	assert.Len(t, days[1], 1)
}

func TestHandleStaysValidAfterClose(t *testing.T) {
	cat := queryFixture(t)

	h, err := cat.Closest(context.Background(),
		time.Date(2019, 7, 1, 12, 0, 0, 0, time.UTC), Filters{})
	require.NoError(t, err)
	require.NoError(t, cat.Close())

	// The handle is a snapshot: attributes and paths survive the close.
	_, ok := h.Attribute("mp_id")
	assert.True(t, ok)
	assert.NotEmpty(t, h.Paths())

	// But the catalog itself rejects further use.
	_, err = cat.Latest(context.Background(), 1, Filters{})
	assert.True(t, errors.Is(err, errors.ErrStoreClosed))
}

func TestLoaderFlowsThroughToHandles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "MP8", "wrfout_d03_2019-07-01_120000"))

	loader := func(_ context.Context, paths map[string]string) (handle.Dataset, error) {
		return len(paths), nil
	}
	cat := openTestCatalog(t, "wrf", root, WithSyncOnOpen(true), WithLoader(loader))

	h, err := cat.Closest(context.Background(),
		time.Date(2019, 7, 1, 12, 0, 0, 0, time.UTC), Filters{})
	require.NoError(t, err)

	ds, err := h.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, ds)
}

func TestWatchStopsOnContextCancel(t *testing.T) {
	cat := openTestCatalog(t, "wrf", t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cat.Watch(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.IsCanceled(err))
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop on cancel")
	}
}
