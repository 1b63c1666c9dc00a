package serialize

import (
	"bytes"
	"encoding/xml"
)

const (
	daxNamespace = "http://pegasus.isi.edu/schema/DAX"
	daxSchema    = "http://pegasus.isi.edu/schema/DAX http://pegasus.isi.edu/schema/dax-3.6.xsd"
	daxVersion   = "3.6"
)

type daxADAG struct {
	XMLName        xml.Name        `xml:"adag"`
	Xmlns          string          `xml:"xmlns,attr"`
	XmlnsXSI       string          `xml:"xmlns:xsi,attr"`
	SchemaLocation string          `xml:"xsi:schemaLocation,attr"`
	Version        string          `xml:"version,attr"`
	Name           string          `xml:"name,attr"`
	JobCount       int             `xml:"jobCount,attr"`
	ChildCount     int             `xml:"childCount,attr"`
	Files          []daxFile       `xml:"file"`
	Executables    []daxExecutable `xml:"executable"`
	Jobs           []daxJob        `xml:"job"`
	Children       []daxChild      `xml:"child"`
}

type daxFile struct {
	Name string   `xml:"name,attr"`
	PFNs []daxPFN `xml:"pfn"`
}

type daxPFN struct {
	URL  string `xml:"url,attr"`
	Site string `xml:"site,attr"`
}

type daxExecutable struct {
	Name      string   `xml:"name,attr"`
	Arch      string   `xml:"arch,attr,omitempty"`
	OS        string   `xml:"os,attr,omitempty"`
	Installed bool     `xml:"installed,attr"`
	PFNs      []daxPFN `xml:"pfn"`
}

type daxJob struct {
	ID       string       `xml:"id,attr"`
	Name     string       `xml:"name,attr"`
	Argument string       `xml:"argument,omitempty"`
	Profiles []daxProfile `xml:"profile"`
	Stdout   *daxStream   `xml:"stdout"`
	Stderr   *daxStream   `xml:"stderr"`
	Uses     []daxUses    `xml:"uses"`
}

type daxProfile struct {
	Namespace string `xml:"namespace,attr"`
	Key       string `xml:"key,attr"`
	Value     string `xml:",chardata"`
}

type daxStream struct {
	Name string `xml:"name,attr"`
	Link string `xml:"link,attr"`
}

type daxUses struct {
	Name     string `xml:"name,attr"`
	Link     string `xml:"link,attr"`
	Register *bool  `xml:"register,attr"`
	Transfer *bool  `xml:"transfer,attr"`
}

type daxChild struct {
	Ref     string      `xml:"ref,attr"`
	Parents []daxParent `xml:"parent"`
}

type daxParent struct {
	Ref string `xml:"ref,attr"`
}

// encodeDAX renders the document as an ADAG 3.6 XML workflow.
func encodeDAX(doc *document) ([]byte, error) {
	adag := daxADAG{
		Xmlns:          daxNamespace,
		XmlnsXSI:       "http://www.w3.org/2001/XMLSchema-instance",
		SchemaLocation: daxSchema,
		Version:        daxVersion,
		Name:           doc.Name,
		JobCount:       len(doc.Jobs),
		ChildCount:     len(doc.Dependencies),
	}

	for _, f := range doc.Files {
		adag.Files = append(adag.Files, daxFile{Name: f.LFN, PFNs: []daxPFN{{URL: f.PFN, Site: f.Site}}})
	}
	for _, e := range doc.Executables {
		adag.Executables = append(adag.Executables, daxExecutable{
			Name:      e.Name,
			Arch:      e.Arch,
			OS:        e.OS,
			Installed: e.Type != "stageable",
			PFNs:      []daxPFN{{URL: e.PFN, Site: e.Site}},
		})
	}

	yes, no := true, false
	for _, j := range doc.Jobs {
		dj := daxJob{ID: j.ID, Name: j.Name, Argument: joinArguments(j.Arguments)}
		for _, p := range j.Profiles {
			dj.Profiles = append(dj.Profiles, daxProfile{Namespace: p.Namespace, Key: p.Key, Value: p.Value})
		}
		if j.Stdout != "" {
			dj.Stdout = &daxStream{Name: j.Stdout, Link: "output"}
		}
		if j.Stderr != "" {
			dj.Stderr = &daxStream{Name: j.Stderr, Link: "output"}
		}
		for _, in := range j.Inputs {
			dj.Uses = append(dj.Uses, daxUses{Name: in, Link: "input"})
		}
		for _, out := range j.Outputs {
			dj.Uses = append(dj.Uses, daxUses{Name: out, Link: "output", Register: &no, Transfer: &yes})
		}
		adag.Jobs = append(adag.Jobs, dj)
	}

	for _, d := range doc.Dependencies {
		c := daxChild{Ref: d.Child}
		for _, p := range d.Parents {
			c.Parents = append(c.Parents, daxParent{Ref: p})
		}
		adag.Children = append(adag.Children, c)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(adag); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// joinArguments renders an argument list on one line. Arguments containing
// whitespace are quoted so the planner keeps them intact.
func joinArguments(args []string) string {
	var buf bytes.Buffer
	for i, a := range args {
		if i > 0 {
			buf.WriteByte(' ')
		}
		if a == "" || bytes.ContainsAny([]byte(a), " \t\n\"") {
			buf.WriteByte('"')
			for _, r := range a {
				if r == '"' || r == '\\' {
					buf.WriteByte('\\')
				}
				buf.WriteRune(r)
			}
			buf.WriteByte('"')
			continue
		}
		buf.WriteString(a)
	}
	return buf.String()
}
