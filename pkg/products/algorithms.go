package products

import (
	"context"

	"github.com/icepolcka/icecat/pkg/errors"
	"github.com/icepolcka/icecat/pkg/records"
)

func init() {
	Register(HMC())
}

// hmcMethods are the classification schemes the campaign ran. The method is
// a path segment, e.g. .../MODEL/MP8/Dolan/hmc_2019-07-01_120000.nc.
var hmcMethods = map[string]bool{
	"Dolan": true,
}

// HMC indexes hydrometeor classification output. Like the regular grid it
// spans both simulated and observed input, so source is part of the
// identity, plus the classification method that produced the file.
func HMC() Product {
	ref := records.DefaultReference()
	return Product{
		Name: "hmc",
		Kinds: []KindRule{
			{Kind: "nc", Pattern: "*.nc"},
		},
		Parser:    ParserFunc(parseHMC(ref)),
		Reference: ref,
	}
}

func parseHMC(ref records.Reference) func(context.Context, string, records.FileKind) (ParsedFile, error) {
	return func(_ context.Context, path string, _ records.FileKind) (ParsedFile, error) {
		t, err := timeFromWRFName("hmc", trimExt(path))
		if err != nil {
			return ParsedFile{}, err
		}
		source, err := sourceFromPath("hmc", path)
		if err != nil {
			return ParsedFile{}, err
		}
		var mp int
		if source == "MODEL" {
			if mp, err = mpFromPath("hmc", path, ref); err != nil {
				return ParsedFile{}, err
			}
		}
		method, err := methodFromPath("hmc", path)
		if err != nil {
			return ParsedFile{}, err
		}
		return ParsedFile{
			Identity: records.IdentityKey{Start: t, End: t, MP: mp, Source: source, Method: method},
			Role:     "data",
			Attrs:    records.Attributes{Time: t, MP: mp, Source: source, Method: method},
		}, nil
	}
}

// methodFromPath finds the path segment naming a known classification
// method.
func methodFromPath(product, path string) (string, error) {
	for _, seg := range segments(path) {
		if hmcMethods[seg] {
			return seg, nil
		}
	}
	return "", errors.NewParseError(product, path, "no classification method segment in path", nil)
}
