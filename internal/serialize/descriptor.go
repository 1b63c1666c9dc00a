package serialize

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/lsst-dm/Daxgen/internal/graph"
	"github.com/zclconf/go-cty/cty"
)

// Descriptor is everything an executor needs to run one task without
// knowing anything about the pipeline.
type Descriptor struct {
	ID        string            `json:"id" hcl:"id"`
	Stage     string            `json:"stage" hcl:"stage"`
	Workflow  string            `json:"workflow" hcl:"workflow"`
	Binding   DescriptorBinding `json:"binding" hcl:"binding,block"`
	Arguments []string          `json:"arguments" hcl:"arguments"`
	Consumes  []ConsumedUnit    `json:"consumes" hcl:"consumes,block"`
	Produces  []string          `json:"produces" hcl:"produces"`
	Profile   map[string]string `json:"profile" hcl:"profile"`
}

// DescriptorBinding is the executable of the task.
type DescriptorBinding struct {
	Name string `json:"name" hcl:"name"`
	Site string `json:"site" hcl:"site"`
	Path string `json:"path" hcl:"path"`
	Type string `json:"type" hcl:"type"`
	Arch string `json:"arch,omitempty" hcl:"arch,optional"`
	OS   string `json:"os,omitempty" hcl:"os,optional"`
}

// ConsumedUnit is one input of the task. External units carry their replica
// location when one is known.
type ConsumedUnit struct {
	ID       string `json:"id" hcl:"id,label"`
	External bool   `json:"external" hcl:"external"`
	URL      string `json:"url,omitempty" hcl:"url,optional"`
	Site     string `json:"site,omitempty" hcl:"site,optional"`
}

// NewDescriptor builds the descriptor of a node. The binding is always the
// stage executable, also when jobs run through a wrapper.
func NewDescriptor(n *graph.TaskNode, workflow uuid.UUID) *Descriptor {
	d := &Descriptor{
		ID:       n.ID.String(),
		Stage:    n.Stage,
		Workflow: workflow.String(),
		Binding: DescriptorBinding{
			Name: n.Binding.Transformation,
			Site: n.Binding.Site,
			Path: n.Binding.PFN,
			Type: n.Binding.Type,
			Arch: n.Binding.Arch,
			OS:   n.Binding.OS,
		},
		Arguments: append([]string{}, n.Arguments...),
		Consumes:  make([]ConsumedUnit, 0, len(n.Consumes)),
		Produces:  make([]string, 0, len(n.Produces)),
		Profile:   make(map[string]string, len(n.Profile)),
	}
	for _, u := range n.Consumes {
		d.Consumes = append(d.Consumes, ConsumedUnit{ID: u.ID(), External: u.External, URL: u.URL, Site: u.Site})
	}
	for _, u := range n.Produces {
		d.Produces = append(d.Produces, u.ID())
	}
	for k, v := range n.Profile {
		d.Profile[k] = v
	}
	return d
}

// Encode renders the descriptor in the given format.
func (d *Descriptor) Encode(f DescriptorFormat) ([]byte, error) {
	switch f {
	case DescriptorJSON:
		data, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case DescriptorHCL:
		return d.encodeHCL(), nil
	}
	return nil, fmt.Errorf("unknown descriptor format %q", f)
}

func (d *Descriptor) encodeHCL() []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()
	body.SetAttributeValue("id", cty.StringVal(d.ID))
	body.SetAttributeValue("stage", cty.StringVal(d.Stage))
	body.SetAttributeValue("workflow", cty.StringVal(d.Workflow))
	body.SetAttributeValue("arguments", stringList(d.Arguments))
	body.SetAttributeValue("produces", stringList(d.Produces))
	body.SetAttributeValue("profile", stringMap(d.Profile))

	body.AppendNewline()
	binding := body.AppendNewBlock("binding", nil).Body()
	binding.SetAttributeValue("name", cty.StringVal(d.Binding.Name))
	binding.SetAttributeValue("site", cty.StringVal(d.Binding.Site))
	binding.SetAttributeValue("path", cty.StringVal(d.Binding.Path))
	binding.SetAttributeValue("type", cty.StringVal(d.Binding.Type))
	if d.Binding.Arch != "" {
		binding.SetAttributeValue("arch", cty.StringVal(d.Binding.Arch))
	}
	if d.Binding.OS != "" {
		binding.SetAttributeValue("os", cty.StringVal(d.Binding.OS))
	}

	for _, c := range d.Consumes {
		body.AppendNewline()
		unit := body.AppendNewBlock("consumes", []string{c.ID}).Body()
		unit.SetAttributeValue("external", cty.BoolVal(c.External))
		if c.URL != "" {
			unit.SetAttributeValue("url", cty.StringVal(c.URL))
		}
		if c.Site != "" {
			unit.SetAttributeValue("site", cty.StringVal(c.Site))
		}
	}

	return hclwrite.Format(f.Bytes())
}

// ParseDescriptor decodes a descriptor written by Encode.
func ParseDescriptor(data []byte, f DescriptorFormat) (*Descriptor, error) {
	var d Descriptor
	switch f {
	case DescriptorJSON:
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("decoding descriptor: %w", err)
		}
	case DescriptorHCL:
		if err := hclsimple.Decode("descriptor.hcl", data, nil, &d); err != nil {
			return nil, fmt.Errorf("decoding descriptor: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown descriptor format %q", f)
	}
	return &d, nil
}

func stringList(items []string) cty.Value {
	if len(items) == 0 {
		return cty.ListValEmpty(cty.String)
	}
	vals := make([]cty.Value, len(items))
	for i, s := range items {
		vals[i] = cty.StringVal(s)
	}
	return cty.ListVal(vals)
}

func stringMap(m map[string]string) cty.Value {
	if len(m) == 0 {
		return cty.MapValEmpty(cty.String)
	}
	vals := make(map[string]cty.Value, len(m))
	for k, v := range m {
		vals[k] = cty.StringVal(v)
	}
	return cty.MapVal(vals)
}
