package serialize

import (
	"bytes"
	"sort"

	"gopkg.in/yaml.v3"
)

const pegasusAPIVersion = "5.0"

type yamlWorkflow struct {
	Pegasus               string                `yaml:"pegasus"`
	Name                  string                `yaml:"name"`
	ReplicaCatalog        yamlReplicaCatalog    `yaml:"replicaCatalog"`
	TransformationCatalog yamlTransformationCat `yaml:"transformationCatalog"`
	Jobs                  []yamlJob             `yaml:"jobs"`
	JobDependencies       []yamlDependency      `yaml:"jobDependencies,omitempty"`
}

type yamlReplicaCatalog struct {
	Replicas []yamlReplica `yaml:"replicas"`
}

type yamlReplica struct {
	LFN  string    `yaml:"lfn"`
	PFNs []yamlPFN `yaml:"pfns"`
}

type yamlPFN struct {
	PFN  string `yaml:"pfn"`
	Site string `yaml:"site"`
}

type yamlTransformationCat struct {
	Transformations []yamlTransformation `yaml:"transformations"`
}

type yamlTransformation struct {
	Name  string                   `yaml:"name"`
	Sites []yamlTransformationSite `yaml:"sites"`
}

type yamlTransformationSite struct {
	Name   string `yaml:"name"`
	PFN    string `yaml:"pfn"`
	Type   string `yaml:"type"`
	Arch   string `yaml:"arch,omitempty"`
	OSType string `yaml:"os.type,omitempty"`
}

type yamlJob struct {
	Type      string                       `yaml:"type"`
	Name      string                       `yaml:"name"`
	ID        string                       `yaml:"id"`
	Arguments []string                     `yaml:"arguments"`
	Profiles  map[string]map[string]string `yaml:"profiles,omitempty"`
	Stdout    string                       `yaml:"stdout,omitempty"`
	Stderr    string                       `yaml:"stderr,omitempty"`
	Uses      []yamlUses                   `yaml:"uses"`
}

type yamlUses struct {
	LFN             string `yaml:"lfn"`
	Type            string `yaml:"type"`
	StageOut        *bool  `yaml:"stageOut,omitempty"`
	RegisterReplica *bool  `yaml:"registerReplica,omitempty"`
}

type yamlDependency struct {
	ID       string   `yaml:"id"`
	Children []string `yaml:"children"`
}

// encodeYAML renders the document as a Pegasus 5 YAML workflow. Dependencies
// are listed per parent, parents in job order.
func encodeYAML(doc *document) ([]byte, error) {
	wf := yamlWorkflow{Pegasus: pegasusAPIVersion, Name: doc.Name}

	for _, f := range doc.Files {
		wf.ReplicaCatalog.Replicas = append(wf.ReplicaCatalog.Replicas,
			yamlReplica{LFN: f.LFN, PFNs: []yamlPFN{{PFN: f.PFN, Site: f.Site}}})
	}
	for _, e := range doc.Executables {
		wf.TransformationCatalog.Transformations = append(wf.TransformationCatalog.Transformations, yamlTransformation{
			Name:  e.Name,
			Sites: []yamlTransformationSite{{Name: e.Site, PFN: e.PFN, Type: e.Type, Arch: e.Arch, OSType: e.OS}},
		})
	}

	yes, no := true, false
	order := make(map[string]int, len(doc.Jobs))
	for i, j := range doc.Jobs {
		order[j.ID] = i
		yj := yamlJob{Type: "job", Name: j.Name, ID: j.ID, Arguments: j.Arguments, Stdout: j.Stdout, Stderr: j.Stderr}
		if yj.Arguments == nil {
			yj.Arguments = []string{}
		}
		for _, p := range j.Profiles {
			if yj.Profiles == nil {
				yj.Profiles = make(map[string]map[string]string)
			}
			if yj.Profiles[p.Namespace] == nil {
				yj.Profiles[p.Namespace] = make(map[string]string)
			}
			yj.Profiles[p.Namespace][p.Key] = p.Value
		}
		for _, in := range j.Inputs {
			yj.Uses = append(yj.Uses, yamlUses{LFN: in, Type: "input"})
		}
		for _, out := range j.Outputs {
			yj.Uses = append(yj.Uses, yamlUses{LFN: out, Type: "output", StageOut: &yes, RegisterReplica: &no})
		}
		wf.Jobs = append(wf.Jobs, yj)
	}

	children := make(map[string][]string)
	var parents []string
	for _, d := range doc.Dependencies {
		for _, p := range d.Parents {
			if _, ok := children[p]; !ok {
				parents = append(parents, p)
			}
			children[p] = append(children[p], d.Child)
		}
	}
	sort.SliceStable(parents, func(i, j int) bool { return order[parents[i]] < order[parents[j]] })
	for _, p := range parents {
		wf.JobDependencies = append(wf.JobDependencies, yamlDependency{ID: p, Children: children[p]})
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(wf); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
