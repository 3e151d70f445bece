package products

import (
	"context"

	"github.com/icepolcka/icecat/pkg/records"
)

func init() {
	Register(WRF())
	Register(CRSIM())
}

// WRF indexes the raw model output. One model time step is written as up to
// three files (full output, cloud fields, particle size distributions) that
// all collapse into one dataset record under their shared time, scheme and
// domain.
func WRF() Product {
	ref := records.DefaultReference()
	return Product{
		Name: "wrf",
		Kinds: []KindRule{
			{Kind: "wrfout", Pattern: "wrfout_*"},
			{Kind: "clouds", Pattern: "clouds_*"},
			{Kind: "wrfmp", Pattern: "wrfmp_*"},
		},
		Parser:    ParserFunc(parseWRF(ref)),
		Reference: ref,
	}
}

func parseWRF(ref records.Reference) func(context.Context, string, records.FileKind) (ParsedFile, error) {
	return func(_ context.Context, path string, kind records.FileKind) (ParsedFile, error) {
		t, err := timeFromWRFName("wrf", path)
		if err != nil {
			return ParsedFile{}, err
		}
		domain, err := domainForGridID("wrf", path)
		if err != nil {
			return ParsedFile{}, err
		}
		mp, err := mpFromPath("wrf", path, ref)
		if err != nil {
			return ParsedFile{}, err
		}
		return ParsedFile{
			Identity: records.IdentityKey{Start: t, End: t, MP: mp, Domain: domain},
			Role:     string(kind),
			Attrs:    records.Attributes{Start: t, End: t, MP: mp, Domain: domain},
		}, nil
	}
}

// CRSIM indexes the forward-simulated polarimetric radar variables computed
// from WRF output, one file per time step, scheme, radar and hydrometeor
// class.
func CRSIM() Product {
	ref := records.DefaultReference()
	return Product{
		Name: "crsim",
		Kinds: []KindRule{
			{Kind: "nc", Pattern: "*.nc"},
		},
		Parser:    ParserFunc(parseCRSIM(ref)),
		Reference: ref,
	}
}

func parseCRSIM(ref records.Reference) func(context.Context, string, records.FileKind) (ParsedFile, error) {
	return func(_ context.Context, path string, _ records.FileKind) (ParsedFile, error) {
		t, err := timeFromWRFName("crsim", trimExt(path))
		if err != nil {
			return ParsedFile{}, err
		}
		mp, err := mpFromPath("crsim", path, ref)
		if err != nil {
			return ParsedFile{}, err
		}
		radar, err := radarFromPath("crsim", path, ref)
		if err != nil {
			return ParsedFile{}, err
		}
		hm, err := hydrometeorFromPath("crsim", path, ref)
		if err != nil {
			return ParsedFile{}, err
		}
		return ParsedFile{
			Identity: records.IdentityKey{Start: t, End: t, MP: mp, Radar: radar, Hydrometeor: hm},
			Role:     "data",
			Attrs:    records.Attributes{Time: t, MP: mp, Radar: radar, Hydrometeor: hm},
		}, nil
	}
}
