package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/lsst-dm/Daxgen/internal/ctxlog"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
)

// Locations names the catalog documents to read. SiteCatalog may be empty.
type Locations struct {
	TransformationCatalog string
	SiteCatalog           string
}

// Load reads both catalogs through fs and builds the resolver table.
// Locations may be plain paths or any URL scheme registered with afs.
func Load(ctx context.Context, fs afs.Service, loc Locations) (*Table, *SiteCatalog, error) {
	logger := ctxlog.FromContext(ctx)

	var sites *SiteCatalog
	if loc.SiteCatalog != "" {
		data, err := download(ctx, fs, loc.SiteCatalog)
		if err != nil {
			return nil, nil, err
		}
		if sites, err = ParseSiteCatalog(data); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", loc.SiteCatalog, err)
		}
		logger.Debug("Site catalog loaded", "location", loc.SiteCatalog, "sites", len(sites.Sites))
	}

	if loc.TransformationCatalog == "" {
		return nil, nil, fmt.Errorf("transformation catalog location is required")
	}
	data, err := download(ctx, fs, loc.TransformationCatalog)
	if err != nil {
		return nil, nil, err
	}
	tc, err := ParseTransformationCatalog(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", loc.TransformationCatalog, err)
	}
	bindings, err := tc.Bindings(sites)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", loc.TransformationCatalog, err)
	}

	table := NewTable()
	for _, b := range bindings {
		table.Add(b)
	}
	logger.Debug("Transformation catalog loaded", "location", loc.TransformationCatalog, "bindings", table.Len())

	return table, sites, nil
}

func download(ctx context.Context, fs afs.Service, location string) ([]byte, error) {
	u := location
	if !strings.Contains(location, "://") {
		u = url.Normalize(location, file.Scheme)
	}
	data, err := fs.DownloadWithURL(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", location, err)
	}
	return data, nil
}
