package serialize

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lsst-dm/Daxgen/internal/ctxlog"
	"github.com/lsst-dm/Daxgen/internal/graph"
	"github.com/lsst-dm/Daxgen/internal/model"
)

// Artifact is one rendered file.
type Artifact struct {
	Path string
	Data []byte
}

// Artifacts is the complete output of one run, in write order.
type Artifacts struct {
	WorkflowID uuid.UUID
	Files      []Artifact
}

// File returns the artifact with the given path.
func (a *Artifacts) File(path string) (Artifact, bool) {
	for _, f := range a.Files {
		if f.Path == path {
			return f, true
		}
	}
	return Artifact{}, false
}

// workflowNamespace scopes the name-based workflow identifiers.
var workflowNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/lsst-dm/Daxgen/workflow"))

// WorkflowID derives a stable identifier from the name, node ids and edges.
func WorkflowID(g graph.Graph) uuid.UUID {
	var sb strings.Builder
	sb.WriteString(g.Name())
	sb.WriteByte('\n')
	for _, n := range g.Nodes() {
		sb.WriteString(n.ID.String())
		sb.WriteByte('\n')
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(&sb, "%s>%s\n", e.Parent, e.Child)
	}
	return uuid.NewSHA1(workflowNamespace, []byte(sb.String()))
}

// Render produces every artifact of a sealed graph.
func Render(ctx context.Context, g graph.Graph, opts Options) (*Artifacts, error) {
	logger := ctxlog.FromContext(ctx)
	if !g.Sealed() {
		return nil, fmt.Errorf("workflow %q: graph must be sealed before rendering", g.Name())
	}
	opts = opts.withDefaults()

	out := &Artifacts{WorkflowID: WorkflowID(g)}
	doc := newDocument(g, opts)

	var workflow []byte
	var err error
	switch opts.Format {
	case FormatDAX:
		workflow, err = encodeDAX(doc)
	case FormatYAML:
		workflow, err = encodeYAML(doc)
	default:
		err = fmt.Errorf("unknown workflow format %q", opts.Format)
	}
	if err != nil {
		return nil, fmt.Errorf("rendering workflow document: %w", err)
	}
	out.Files = append(out.Files, Artifact{Path: opts.Format.WorkflowFile(), Data: workflow})
	logger.Debug("Workflow document rendered.", "format", opts.Format, "jobs", len(doc.Jobs), "bytes", len(workflow))

	for _, n := range g.Nodes() {
		d := NewDescriptor(n, out.WorkflowID)
		data, err := d.Encode(opts.DescriptorFormat)
		if err != nil {
			return nil, fmt.Errorf("rendering descriptor of %s: %w", n.ID, err)
		}
		out.Files = append(out.Files, Artifact{Path: descriptorLFN(n, opts.DescriptorFormat), Data: data})
	}
	logger.Debug("Task descriptors rendered.", "format", opts.DescriptorFormat, "count", len(g.Nodes()))

	if opts.NodeLink {
		data, err := encodeNodeLink(g)
		if err != nil {
			return nil, fmt.Errorf("rendering node-link graph: %w", err)
		}
		out.Files = append(out.Files, Artifact{Path: NodeLinkFile, Data: data})
	}

	return out, nil
}

// document is the format-neutral content of the workflow document.
type document struct {
	Name         string
	Executables  []executable
	Files        []fileEntry
	Jobs         []job
	Dependencies []dependency
}

type executable struct {
	Name string
	Site string
	PFN  string
	Type string
	Arch string
	OS   string
}

type fileEntry struct {
	LFN  string
	PFN  string
	Site string
}

type job struct {
	ID        string
	Name      string
	Arguments []string
	Profiles  []profile
	Inputs    []string
	Outputs   []string
	Stdout    string
	Stderr    string
}

type profile struct {
	Namespace string
	Key       string
	Value     string
}

type dependency struct {
	Child   string
	Parents []string
}

func descriptorLFN(n *graph.TaskNode, f DescriptorFormat) string {
	return fmt.Sprintf("%s/%s.%s", DescriptorDir, n.ID, f)
}

func newDocument(g graph.Graph, opts Options) *document {
	doc := &document{Name: g.Name()}
	base := strings.TrimSuffix(opts.DescriptorURL, "/")

	seenExec := make(map[string]bool)
	addExec := func(name, site, pfn, typ, arch, os string) {
		if seenExec[name] {
			return
		}
		seenExec[name] = true
		doc.Executables = append(doc.Executables, executable{Name: name, Site: site, PFN: pfn, Type: typ, Arch: arch, OS: os})
	}

	for _, n := range g.Nodes() {
		if n.Wrapper != nil {
			w := n.Wrapper
			addExec(w.Transformation, w.Site, w.PFN, w.Type, w.Arch, w.OS)
		} else {
			b := n.Binding
			addExec(b.Transformation, b.Site, b.PFN, b.Type, b.Arch, b.OS)
		}

		lfn := descriptorLFN(n, opts.DescriptorFormat)
		doc.Files = append(doc.Files, fileEntry{
			LFN:  lfn,
			PFN:  base + "/" + strings.TrimPrefix(lfn, DescriptorDir+"/"),
			Site: opts.DescriptorSite,
		})

		j := job{
			ID:        n.ID.String(),
			Name:      n.Transformation(),
			Arguments: n.Arguments,
			Inputs:    []string{lfn},
		}
		if n.Wrapper != nil {
			j.Arguments = []string{lfn}
		}
		for _, key := range n.Profile.Keys() {
			ns, k := model.SplitProfileKey(key)
			j.Profiles = append(j.Profiles, profile{Namespace: ns, Key: k, Value: n.Profile[key]})
		}
		if n.CaptureOutput {
			j.Stdout = n.ID.String() + ".out"
			j.Stderr = n.ID.String() + ".err"
			j.Outputs = append(j.Outputs, j.Stdout, j.Stderr)
		}
		doc.Jobs = append(doc.Jobs, j)
	}

	index := make(map[string]int)
	for _, e := range g.Edges() {
		i, ok := index[e.Child]
		if !ok {
			i = len(doc.Dependencies)
			index[e.Child] = i
			doc.Dependencies = append(doc.Dependencies, dependency{Child: e.Child})
		}
		doc.Dependencies[i].Parents = append(doc.Dependencies[i].Parents, e.Parent)
	}
	return doc
}
