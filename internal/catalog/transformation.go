package catalog

import (
	"fmt"

	"github.com/lsst-dm/Daxgen/internal/model"
	"gopkg.in/yaml.v3"
)

// DefaultTransformationType is assumed for entries that do not set `type`.
const DefaultTransformationType = "installed"

// TransformationCatalog mirrors the YAML transformation catalog layout.
type TransformationCatalog struct {
	Pegasus         string           `yaml:"pegasus,omitempty"`
	Transformations []Transformation `yaml:"transformations"`
}

// Transformation is one logical executable with its per-site installations.
type Transformation struct {
	Namespace string               `yaml:"namespace,omitempty"`
	Name      string               `yaml:"name"`
	Version   string               `yaml:"version,omitempty"`
	Profiles  map[string]yaml.Node `yaml:"profiles,omitempty"`
	Sites     []TransformationSite `yaml:"sites"`
}

// TransformationSite is the installation of a transformation on one site.
type TransformationSite struct {
	Name     string               `yaml:"name"`
	PFN      string               `yaml:"pfn"`
	Type     string               `yaml:"type,omitempty"`
	Arch     string               `yaml:"arch,omitempty"`
	OSType   string               `yaml:"os.type,omitempty"`
	Profiles map[string]yaml.Node `yaml:"profiles,omitempty"`
}

// ParseTransformationCatalog decodes a YAML transformation catalog.
func ParseTransformationCatalog(data []byte) (*TransformationCatalog, error) {
	var tc TransformationCatalog
	if err := yaml.Unmarshal(data, &tc); err != nil {
		return nil, fmt.Errorf("decoding transformation catalog: %w", err)
	}

	seen := make(map[tableKey]struct{})
	for i, tr := range tc.Transformations {
		if tr.Name == "" {
			return nil, fmt.Errorf("transformation #%d has no name", i+1)
		}
		for _, site := range tr.Sites {
			if site.Name == "" {
				return nil, fmt.Errorf("transformation %q: site entry has no name", tr.Name)
			}
			if site.PFN == "" {
				return nil, fmt.Errorf("transformation %q on site %q has no pfn", tr.Name, site.Name)
			}
			key := tableKey{tr.Name, site.Name}
			if _, dup := seen[key]; dup {
				return nil, fmt.Errorf("transformation %q is listed twice for site %q", tr.Name, site.Name)
			}
			seen[key] = struct{}{}
		}
	}
	return &tc, nil
}

// Bindings flattens the catalog into bindings. Site-level profiles override
// transformation-level ones; arch and os default to the site catalog entry
// when sites is not nil.
func (tc *TransformationCatalog) Bindings(sites *SiteCatalog) ([]Binding, error) {
	var out []Binding
	for _, tr := range tc.Transformations {
		base, err := decodeProfiles(tr.Profiles)
		if err != nil {
			return nil, fmt.Errorf("transformation %q: %w", tr.Name, err)
		}
		for _, site := range tr.Sites {
			siteProfile, err := decodeProfiles(site.Profiles)
			if err != nil {
				return nil, fmt.Errorf("transformation %q on site %q: %w", tr.Name, site.Name, err)
			}

			b := Binding{
				Transformation: tr.Name,
				Site:           site.Name,
				PFN:            site.PFN,
				Type:           site.Type,
				Arch:           site.Arch,
				OS:             site.OSType,
				Profile:        base.Merge(siteProfile),
			}
			if b.Type == "" {
				b.Type = DefaultTransformationType
			}
			if s, ok := sites.Site(site.Name); ok {
				if b.Arch == "" {
					b.Arch = s.Arch
				}
				if b.OS == "" {
					b.OS = s.OSType
				}
			}
			out = append(out, b)
		}
	}
	return out, nil
}

// decodeProfiles turns `{namespace: {key: value}}` into a flat Profile.
func decodeProfiles(nodes map[string]yaml.Node) (model.Profile, error) {
	profile := model.Profile{}
	for namespace, node := range nodes {
		var values map[string]any
		if err := node.Decode(&values); err != nil {
			return nil, fmt.Errorf("profile namespace %q: %w", namespace, err)
		}
		for key, value := range values {
			switch value.(type) {
			case map[string]any, []any:
				return nil, fmt.Errorf("profile %s.%s must be a scalar", namespace, key)
			}
			profile[namespace+"."+key] = fmt.Sprint(value)
		}
	}
	return profile, nil
}
