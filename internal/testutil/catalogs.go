package testutil

import (
	"fmt"
	"strings"
)

// TransformationCatalog renders a catalog binding every stage on site to an
// installed executable under /software/bin.
func TransformationCatalog(site string, stages ...string) string {
	var sb strings.Builder
	sb.WriteString("pegasus: \"5.0\"\ntransformations:\n")
	for _, stage := range stages {
		fmt.Fprintf(&sb, "  - name: %s\n    sites:\n      - name: %s\n        pfn: /software/bin/%s.py\n        type: installed\n        arch: x86_64\n        os.type: linux\n", stage, site, stage)
	}
	return sb.String()
}

// SiteCatalog renders a site catalog listing the given sites.
func SiteCatalog(sites ...string) string {
	var sb strings.Builder
	sb.WriteString("pegasus: \"5.0\"\nsites:\n")
	for _, site := range sites {
		fmt.Fprintf(&sb, "  - name: %s\n    arch: x86_64\n    os.type: linux\n", site)
	}
	return sb.String()
}
