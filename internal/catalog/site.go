package catalog

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// SiteCatalog mirrors the YAML site catalog layout. Only the fields the
// generator reads are decoded; the rest of the document is ignored.
type SiteCatalog struct {
	Pegasus string `yaml:"pegasus,omitempty"`
	Sites   []Site `yaml:"sites"`
}

// Site is one execution or storage site.
type Site struct {
	Name        string      `yaml:"name"`
	Arch        string      `yaml:"arch,omitempty"`
	OSType      string      `yaml:"os.type,omitempty"`
	Directories []Directory `yaml:"directories,omitempty"`
}

// Directory is a storage location of a site.
type Directory struct {
	Type        string       `yaml:"type"`
	Path        string       `yaml:"path"`
	FileServers []FileServer `yaml:"fileServers,omitempty"`
}

// FileServer exposes a directory through a URL.
type FileServer struct {
	Operation string `yaml:"operation"`
	URL       string `yaml:"url"`
}

// ParseSiteCatalog decodes a YAML site catalog.
func ParseSiteCatalog(data []byte) (*SiteCatalog, error) {
	var sc SiteCatalog
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("decoding site catalog: %w", err)
	}

	seen := make(map[string]struct{}, len(sc.Sites))
	for i, s := range sc.Sites {
		if s.Name == "" {
			return nil, fmt.Errorf("site #%d has no name", i+1)
		}
		if _, dup := seen[s.Name]; dup {
			return nil, fmt.Errorf("site %q is listed twice", s.Name)
		}
		seen[s.Name] = struct{}{}
	}
	return &sc, nil
}

// Site returns the named site. It is safe to call on a nil catalog.
func (sc *SiteCatalog) Site(name string) (Site, bool) {
	if sc == nil {
		return Site{}, false
	}
	for _, s := range sc.Sites {
		if s.Name == name {
			return s, true
		}
	}
	return Site{}, false
}

// Names returns the site names in catalog order.
func (sc *SiteCatalog) Names() []string {
	if sc == nil {
		return nil
	}
	names := make([]string, len(sc.Sites))
	for i, s := range sc.Sites {
		names[i] = s.Name
	}
	return names
}
