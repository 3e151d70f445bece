package products

import (
	"context"

	"github.com/icepolcka/icecat/pkg/records"
)

func init() {
	Register(RadarFilter())
	Register(RegularGrid())
	Register(Temperature())
}

// RadarFilter indexes CR-SIM data resampled from the Cartesian model grid
// onto a radar's spherical scan geometry.
func RadarFilter() Product {
	ref := records.DefaultReference()
	return Product{
		Name: "radarfilter",
		Kinds: []KindRule{
			{Kind: "nc", Pattern: "*.nc"},
		},
		Parser:    ParserFunc(parseRadarFilter(ref)),
		Reference: ref,
	}
}

func parseRadarFilter(ref records.Reference) func(context.Context, string, records.FileKind) (ParsedFile, error) {
	return func(_ context.Context, path string, _ records.FileKind) (ParsedFile, error) {
		t, err := timeFromWRFName("radarfilter", trimExt(path))
		if err != nil {
			return ParsedFile{}, err
		}
		mp, err := mpFromPath("radarfilter", path, ref)
		if err != nil {
			return ParsedFile{}, err
		}
		radar, err := radarFromPath("radarfilter", path, ref)
		if err != nil {
			return ParsedFile{}, err
		}
		return ParsedFile{
			Identity: records.IdentityKey{Start: t, End: t, MP: mp, Radar: radar},
			Role:     "data",
			Attrs:    records.Attributes{Time: t, MP: mp, Radar: radar},
		}, nil
	}
}

// RegularGrid indexes data interpolated onto the shared regular Cartesian
// grid. Both simulated (MODEL) and observed (DWD) input end up here, so the
// source tag is part of the identity; only MODEL data carries a scheme.
func RegularGrid() Product {
	ref := records.DefaultReference()
	return Product{
		Name: "regulargrid",
		Kinds: []KindRule{
			{Kind: "nc", Pattern: "*.nc"},
		},
		Parser:    ParserFunc(parseRegularGrid(ref)),
		Reference: ref,
	}
}

func parseRegularGrid(ref records.Reference) func(context.Context, string, records.FileKind) (ParsedFile, error) {
	return func(_ context.Context, path string, _ records.FileKind) (ParsedFile, error) {
		t, err := timeFromWRFName("regulargrid", trimExt(path))
		if err != nil {
			return ParsedFile{}, err
		}
		source, err := sourceFromPath("regulargrid", path)
		if err != nil {
			return ParsedFile{}, err
		}
		var mp int
		if source == "MODEL" {
			if mp, err = mpFromPath("regulargrid", path, ref); err != nil {
				return ParsedFile{}, err
			}
		}
		radar, err := radarFromPath("regulargrid", path, ref)
		if err != nil {
			return ParsedFile{}, err
		}
		return ParsedFile{
			Identity: records.IdentityKey{Start: t, End: t, MP: mp, Source: source, Radar: radar},
			Role:     "data",
			Attrs:    records.Attributes{Time: t, MP: mp, Source: source, Radar: radar},
		}, nil
	}
}

// Temperature indexes the temperature fields interpolated to the radar
// grid, used to constrain hydrometeor classification.
func Temperature() Product {
	ref := records.DefaultReference()
	return Product{
		Name: "temp",
		Kinds: []KindRule{
			{Kind: "nc", Pattern: "*.nc"},
		},
		Parser:    ParserFunc(parseTemperature(ref)),
		Reference: ref,
	}
}

func parseTemperature(ref records.Reference) func(context.Context, string, records.FileKind) (ParsedFile, error) {
	return func(_ context.Context, path string, _ records.FileKind) (ParsedFile, error) {
		t, err := timeFromWRFName("temp", trimExt(path))
		if err != nil {
			return ParsedFile{}, err
		}
		mp, err := mpFromPath("temp", path, ref)
		if err != nil {
			return ParsedFile{}, err
		}
		return ParsedFile{
			Identity: records.IdentityKey{Start: t, End: t, MP: mp},
			Role:     "data",
			Attrs:    records.Attributes{Time: t, MP: mp},
		}, nil
	}
}
