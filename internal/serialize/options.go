package serialize

import (
	"fmt"
)

// Format selects the layout of the workflow document.
type Format string

const (
	// FormatDAX is the XML abstract workflow (ADAG 3.6).
	FormatDAX Format = "dax"
	// FormatYAML is the YAML abstract workflow (Pegasus 5).
	FormatYAML Format = "yaml"
)

// DescriptorFormat selects the encoding of task descriptors.
type DescriptorFormat string

const (
	DescriptorJSON DescriptorFormat = "json"
	DescriptorHCL  DescriptorFormat = "hcl"
)

// Artifact names, relative to the output location.
const (
	DescriptorDir = "descriptors"
	NodeLinkFile  = "graph.json"
)

// ParseFormat validates a workflow format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatDAX, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown workflow format %q (want %q or %q)", s, FormatDAX, FormatYAML)
}

// ParseDescriptorFormat validates a descriptor format name.
func ParseDescriptorFormat(s string) (DescriptorFormat, error) {
	switch f := DescriptorFormat(s); f {
	case DescriptorJSON, DescriptorHCL:
		return f, nil
	}
	return "", fmt.Errorf("unknown descriptor format %q (want %q or %q)", s, DescriptorJSON, DescriptorHCL)
}

// WorkflowFile returns the artifact name of the workflow document.
func (f Format) WorkflowFile() string {
	if f == FormatYAML {
		return "workflow.yml"
	}
	return "workflow.dax"
}

// Options control rendering.
type Options struct {
	Format           Format
	DescriptorFormat DescriptorFormat
	// DescriptorURL is the location the descriptors are published under. It
	// becomes the PFN prefix of every descriptor file in the workflow document.
	DescriptorURL string
	// DescriptorSite is the site of the descriptor replicas.
	DescriptorSite string
	// NodeLink adds the node-link export to the artifacts.
	NodeLink bool
}

func (o Options) withDefaults() Options {
	if o.Format == "" {
		o.Format = FormatDAX
	}
	if o.DescriptorFormat == "" {
		o.DescriptorFormat = DescriptorJSON
	}
	if o.DescriptorURL == "" {
		o.DescriptorURL = DescriptorDir
	}
	if o.DescriptorSite == "" {
		o.DescriptorSite = "local"
	}
	return o
}
