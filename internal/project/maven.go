package project

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"github.com/hargabyte/ctxpack/internal/facts"
)

type pomModel struct {
	XMLName    xml.Name        `xml:"project"`
	GroupID    string          `xml:"groupId"`
	ArtifactID string          `xml:"artifactId"`
	Version    string          `xml:"version"`
	Name       string          `xml:"name"`
	Parent     pomParent       `xml:"parent"`
	Properties pomProperties   `xml:"properties"`
	Deps       []pomDependency `xml:"dependencies>dependency"`
}

type pomParent struct {
	GroupID string `xml:"groupId"`
	Version string `xml:"version"`
}

type pomProperties struct {
	Entries []pomProperty `xml:",any"`
}

type pomProperty struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

type pomDependency struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
	Scope      string `xml:"scope"`
}

// loadMaven fills p from a pom.xml. Only direct <dependencies> are read;
// dependencyManagement and profiles are ignored.
func loadMaven(path string, p *facts.Project) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var pom pomModel
	if err := xml.Unmarshal(data, &pom); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	props := pom.properties()
	p.BuildSystem = Maven
	switch {
	case pom.Name != "":
		p.Name = props.expand(pom.Name)
	case pom.ArtifactID != "":
		p.Name = pom.ArtifactID
	}
	p.Version = props.expand(firstNonEmpty(pom.Version, pom.Parent.Version))

	for _, d := range pom.Deps {
		p.Dependencies = append(p.Dependencies, facts.Dependency{
			GroupID:    props.expand(strings.TrimSpace(d.GroupID)),
			ArtifactID: props.expand(strings.TrimSpace(d.ArtifactID)),
			Version:    props.expand(strings.TrimSpace(d.Version)),
			Scope:      strings.TrimSpace(d.Scope),
		})
	}
	return nil
}

type propertyMap map[string]string

// properties collects the <properties> block plus the built-in
// project.* references.
func (m pomModel) properties() propertyMap {
	props := propertyMap{
		"project.groupId":    firstNonEmpty(m.GroupID, m.Parent.GroupID),
		"project.artifactId": m.ArtifactID,
		"project.version":    firstNonEmpty(m.Version, m.Parent.Version),
	}
	for _, e := range m.Properties.Entries {
		props[e.XMLName.Local] = strings.TrimSpace(e.Value)
	}
	return props
}

// expand substitutes ${name} references. Unknown references are kept.
// Substituted values are not expanded again.
func (props propertyMap) expand(s string) string {
	var sb strings.Builder
	for {
		open := strings.Index(s, "${")
		if open < 0 {
			break
		}
		end := strings.IndexByte(s[open:], '}')
		if end < 0 {
			break
		}
		key := s[open+2 : open+end]
		sb.WriteString(s[:open])
		if v, ok := props[key]; ok {
			sb.WriteString(v)
		} else {
			sb.WriteString(s[open : open+end+1])
		}
		s = s[open+end+1:]
	}
	sb.WriteString(s)
	return sb.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
