package products

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icepolcka/icecat/pkg/errors"
	"github.com/icepolcka/icecat/pkg/records"
)

func mustGet(t *testing.T, name string) Product {
	t.Helper()
	p, ok := Get(name)
	require.True(t, ok, "product %q not registered", name)
	return p
}

func TestRegistryNamesSorted(t *testing.T) {
	names := Names()
	assert.Equal(t, []string{
		"crsim", "dwd", "hmc", "radarfilter", "regulargrid", "temp", "wrf",
	}, names)
}

func TestClassifyWRFKinds(t *testing.T) {
	p := mustGet(t, "wrf")

	for path, want := range map[string]records.FileKind{
		"/data/wrf/MP8/wrfout_d03_2019-07-01_120000": "wrfout",
		"/data/wrf/MP8/clouds_d03_2019-07-01_120000": "clouds",
		"/data/wrf/MP8/wrfmp_d03_2019-07-01_120000":  "wrfmp",
	} {
		kind, ok := p.Classify(path)
		require.True(t, ok, path)
		assert.Equal(t, want, kind, path)
	}

	_, ok := p.Classify("/data/wrf/MP8/namelist.input")
	assert.False(t, ok)
}

func TestClassifyMatchesBaseNameOnly(t *testing.T) {
	p := mustGet(t, "crsim")

	// The directory tree must not influence classification.
	_, ok := p.Classify("/archive/nc/README")
	assert.False(t, ok)

	kind, ok := p.Classify("/archive/whatever/crsim_d03_2019-07-01_120000.nc")
	require.True(t, ok)
	assert.Equal(t, records.FileKind("nc"), kind)
}

func TestParseWRF(t *testing.T) {
	p := mustGet(t, "wrf")
	path := "/data/MODEL/WRF/MP8/wrfout_d03_2019-07-01_120000"

	kind, ok := p.Classify(path)
	require.True(t, ok)

	parsed, err := p.Parser.Parse(context.Background(), path, kind)
	require.NoError(t, err)

	want := time.Date(2019, 7, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, want, parsed.Identity.Start)
	assert.Equal(t, want, parsed.Identity.End)
	assert.Equal(t, 8, parsed.Identity.MP)
	assert.Equal(t, "Munich", parsed.Identity.Domain)
	assert.Equal(t, "wrfout", parsed.Role)
	assert.Equal(t, want, parsed.Attrs.Start)
}

func TestParseWRFCompanionFilesShareIdentity(t *testing.T) {
	p := mustGet(t, "wrf")

	var identities []records.IdentityKey
	for _, path := range []string{
		"/data/MODEL/WRF/MP8/wrfout_d03_2019-07-01_120000",
		"/data/MODEL/WRF/MP8/clouds_d03_2019-07-01_120000",
		"/data/MODEL/WRF/MP8/wrfmp_d03_2019-07-01_120000",
	} {
		kind, ok := p.Classify(path)
		require.True(t, ok)
		parsed, err := p.Parser.Parse(context.Background(), path, kind)
		require.NoError(t, err)
		identities = append(identities, parsed.Identity)
	}

	assert.Equal(t, identities[0], identities[1])
	assert.Equal(t, identities[0], identities[2])
}

func TestParseWRFDomains(t *testing.T) {
	p := mustGet(t, "wrf")

	for gridID, domain := range map[string]string{
		"d01": "Europe", "d02": "Germany", "d03": "Munich",
	} {
		path := "/data/MODEL/WRF/MP10/wrfout_" + gridID + "_2019-07-01_120000"
		parsed, err := p.Parser.Parse(context.Background(), path, "wrfout")
		require.NoError(t, err)
		assert.Equal(t, domain, parsed.Identity.Domain)
	}
}

func TestParseWRFMalformedName(t *testing.T) {
	p := mustGet(t, "wrf")

	_, err := p.Parser.Parse(context.Background(), "/data/MP8/wrfout_d03_garbled", "wrfout")
	require.Error(t, err)
	assert.True(t, errors.IsCorruptFile(err))

	var parse *errors.ParseError
	require.True(t, errors.As(err, &parse))
	assert.Equal(t, "wrf", parse.Product)
}

func TestParseWRFUnknownScheme(t *testing.T) {
	p := mustGet(t, "wrf")

	_, err := p.Parser.Parse(context.Background(),
		"/data/MODEL/WRF/MP99/wrfout_d03_2019-07-01_120000", "wrfout")
	require.Error(t, err)
	assert.True(t, errors.IsCorruptFile(err))
}

func TestParseCRSIM(t *testing.T) {
	p := mustGet(t, "crsim")
	path := "/data/MODEL/CRSIM/MP8/Isen/graupel/crsim_d03_2019-07-01_120000.nc"

	parsed, err := p.Parser.Parse(context.Background(), path, "nc")
	require.NoError(t, err)

	want := time.Date(2019, 7, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, want, parsed.Attrs.Time)
	assert.Equal(t, 8, parsed.Identity.MP)
	assert.Equal(t, "Isen", parsed.Identity.Radar)
	assert.Equal(t, "graupel", parsed.Identity.Hydrometeor)
	assert.Equal(t, "data", parsed.Role)
}

func TestParseCRSIMUnknownHydrometeor(t *testing.T) {
	p := mustGet(t, "crsim")

	_, err := p.Parser.Parse(context.Background(),
		"/data/MODEL/CRSIM/MP8/Isen/hailstones/crsim_d03_2019-07-01_120000.nc", "nc")
	require.Error(t, err)
	assert.True(t, errors.IsCorruptFile(err))
}

func TestParseRegularGridModelAndObservation(t *testing.T) {
	p := mustGet(t, "regulargrid")

	parsed, err := p.Parser.Parse(context.Background(),
		"/data/MODEL/RG/MP28/Isen/rg_d03_2019-07-01_120000.nc", "nc")
	require.NoError(t, err)
	assert.Equal(t, "MODEL", parsed.Identity.Source)
	assert.Equal(t, 28, parsed.Identity.MP)
	assert.Equal(t, "Isen", parsed.Identity.Radar)

	// Observed input has no microphysics scheme in its path.
	parsed, err = p.Parser.Parse(context.Background(),
		"/data/DWD/RG/Isen/rg_2019-07-01_120000.nc", "nc")
	require.NoError(t, err)
	assert.Equal(t, "DWD", parsed.Identity.Source)
	assert.Zero(t, parsed.Identity.MP)
}

func TestParseHMC(t *testing.T) {
	p := mustGet(t, "hmc")

	parsed, err := p.Parser.Parse(context.Background(),
		"/data/MODEL/HMC/MP50/Dolan/hmc_d03_2019-07-01_120000.nc", "nc")
	require.NoError(t, err)
	assert.Equal(t, "Dolan", parsed.Identity.Method)
	assert.Equal(t, "MODEL", parsed.Identity.Source)
	assert.Equal(t, 50, parsed.Identity.MP)

	_, err = p.Parser.Parse(context.Background(),
		"/data/MODEL/HMC/MP50/hmc_d03_2019-07-01_120000.nc", "nc")
	require.Error(t, err)
	assert.True(t, errors.IsCorruptFile(err))
}

func TestParseTemperature(t *testing.T) {
	p := mustGet(t, "temp")

	parsed, err := p.Parser.Parse(context.Background(),
		"/data/MODEL/TEMP/MP10/temp_d03_2019-07-01_123000.nc", "nc")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2019, 7, 1, 12, 30, 0, 0, time.UTC), parsed.Attrs.Time)
	assert.Equal(t, 10, parsed.Identity.MP)
}

func TestParseDWD(t *testing.T) {
	p := mustGet(t, "dwd")
	path := "/data/DWD/Isen/ras07-vol5minng01_sweeph5onem_allmoms_00-20190701120500-isn-10873-hd5.hd5"

	kind, ok := p.Classify(path)
	require.True(t, ok)
	assert.Equal(t, records.FileKind("hd5"), kind)

	parsed, err := p.Parser.Parse(context.Background(), path, kind)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2019, 7, 1, 12, 5, 0, 0, time.UTC), parsed.Attrs.Time)
	assert.Equal(t, "Isen", parsed.Identity.Radar)
	assert.Equal(t, "data", parsed.Role)
}

func TestParseDWDWithoutStamp(t *testing.T) {
	p := mustGet(t, "dwd")

	_, err := p.Parser.Parse(context.Background(), "/data/DWD/Isen/broken-scan.hd5", "hd5")
	require.Error(t, err)
	assert.True(t, errors.IsCorruptFile(err))
}

func TestMPSegmentIsCaseInsensitive(t *testing.T) {
	ref := records.DefaultReference()

	for _, path := range []string{
		"/data/MP8/x_d03_2019-07-01_120000",
		"/data/mp8/x_d03_2019-07-01_120000",
	} {
		id, err := mpFromPath("wrf", path, ref)
		require.NoError(t, err)
		assert.Equal(t, 8, id)
	}
}
