package products

import (
	"context"

	"github.com/icepolcka/icecat/pkg/records"
)

func init() {
	Register(DWD())
}

// DWD indexes the operational C-band volume scans from the Isen site. The
// archive names files with a yyyymmddhhmmss stamp and the radar is fixed:
// Isen is the only DWD site inside the Munich domain.
func DWD() Product {
	ref := records.DefaultReference()
	return Product{
		Name: "dwd",
		Kinds: []KindRule{
			{Kind: "hd5", Pattern: "*.hd5"},
		},
		Parser:    ParserFunc(parseDWD()),
		Reference: ref,
	}
}

func parseDWD() func(context.Context, string, records.FileKind) (ParsedFile, error) {
	return func(_ context.Context, path string, _ records.FileKind) (ParsedFile, error) {
		t, err := timeFromStamp("dwd", path)
		if err != nil {
			return ParsedFile{}, err
		}
		return ParsedFile{
			Identity: records.IdentityKey{Start: t, End: t, Radar: "Isen"},
			Role:     "data",
			Attrs:    records.Attributes{Time: t, Radar: "Isen"},
		}, nil
	}
}
