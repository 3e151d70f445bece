package handle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icepolcka/icecat/pkg/errors"
	"github.com/icepolcka/icecat/pkg/records"
)

func fixtureRecord() records.DatasetRecord {
	t0 := time.Date(2019, 7, 1, 12, 0, 0, 0, time.UTC)
	return records.DatasetRecord{
		ID:       "ds1",
		Identity: records.IdentityKey{Start: t0, End: t0, MP: 8},
		Roles: map[string]string{
			"wrfout": "/data/wrf/wrfout_d03_2019-07-01_120000",
			"clouds": "/data/wrf/clouds_d03_2019-07-01_120000",
		},
		Attrs: records.Attributes{Start: t0, End: t0, MP: 8, Domain: "Munich"},
	}
}

func TestAttributeLookup(t *testing.T) {
	h := New("wrf", fixtureRecord(), nil)

	v, ok := h.Attribute("mp_id")
	require.True(t, ok)
	assert.Equal(t, 8, v)

	v, ok = h.Attribute("domain")
	require.True(t, ok)
	assert.Equal(t, "Munich", v)

	_, ok = h.Attribute("radar")
	assert.False(t, ok)
}

func TestHandleIsASnapshot(t *testing.T) {
	rec := fixtureRecord()
	h := New("wrf", rec, nil)

	// Mutating the source record after handle creation must not show
	// through the handle.
	rec.Roles["wrfmp"] = "/data/wrf/wrfmp_d03_2019-07-01_120000"

	assert.Len(t, h.Paths(), 2)

	// Nor may callers mutate the handle through the returned map.
	paths := h.Paths()
	paths["hacked"] = "/nope"
	_, ok := h.Path("hacked")
	assert.False(t, ok)
}

func TestLoadInvokesLoaderWithResolvedPaths(t *testing.T) {
	var gotPaths map[string]string
	loader := func(_ context.Context, paths map[string]string) (Dataset, error) {
		gotPaths = paths
		return "the dataset", nil
	}

	h := New("wrf", fixtureRecord(), loader)

	ds, err := h.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "the dataset", ds)
	assert.Equal(t, h.Paths(), gotPaths)
}

func TestLoadWrapsLoaderFailure(t *testing.T) {
	boom := errors.New("file deleted since sync")
	loader := func(context.Context, map[string]string) (Dataset, error) {
		return nil, boom
	}

	h := New("dwd", fixtureRecord(), loader)

	_, err := h.Load(context.Background())
	require.Error(t, err)

	var load *errors.LoadError
	require.True(t, errors.As(err, &load))
	assert.Equal(t, "dwd", load.Product)
	assert.True(t, errors.Is(err, boom))
}

func TestLoadWithoutLoader(t *testing.T) {
	h := New("wrf", fixtureRecord(), nil)

	_, err := h.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNoLoader))
}
