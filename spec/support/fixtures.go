package support

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// StepFixture is one step registration in a generated step module.
type StepFixture struct {
	// Keyword is Given, When, Then, or Step for a generic registration.
	Keyword string
	Pattern string
}

// ManifestFixture is a YAML registration manifest.
type ManifestFixture struct {
	Name    string   `yaml:"name"`
	Version string   `yaml:"version,omitempty"`
	Given   []string `yaml:"given,omitempty"`
	When    []string `yaml:"when,omitempty"`
	Then    []string `yaml:"then,omitempty"`
}

// NewManifestFixture groups steps by keyword into a manifest.
func NewManifestFixture(name, version string, steps []StepFixture) (*ManifestFixture, error) {
	m := &ManifestFixture{Name: name, Version: version}
	for _, s := range steps {
		switch strings.ToLower(s.Keyword) {
		case "given":
			m.Given = append(m.Given, s.Pattern)
		case "when":
			m.When = append(m.When, s.Pattern)
		case "then":
			m.Then = append(m.Then, s.Pattern)
		default:
			return nil, fmt.Errorf("manifest steps need Given, When or Then, got %q", s.Keyword)
		}
	}
	return m, nil
}

// CreateManifest writes the manifest to relativePath.
func (e *TestEnv) CreateManifest(relativePath string, m *ManifestFixture) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return e.CreateFile(relativePath, string(data))
}

// CreateGoModule writes a go.mod declaring modulePath into dir.
func (e *TestEnv) CreateGoModule(dir, modulePath string) error {
	return e.CreateFile(dir+"/go.mod", "module "+modulePath+"\n\ngo 1.22\n")
}

// CreateStepPackage writes a godog step package with the given steps into
// dir/steps.go. Steps are registered in order on a *godog.ScenarioContext
// and each handler is a no-op.
func (e *TestEnv) CreateStepPackage(dir string, steps []StepFixture) error {
	return e.CreateFile(dir+"/steps.go", GoStepSource(pkgName(dir), steps))
}

// GoStepSource renders a Go file registering steps. A comment naming the
// keyword precedes each run of explicit steps, the way step files are
// usually sectioned.
func GoStepSource(pkg string, steps []StepFixture) string {
	var b strings.Builder
	fmt.Fprintf(&b, "package %s\n\n", pkg)
	b.WriteString("import \"github.com/cucumber/godog\"\n\n")
	b.WriteString("func InitializeScenario(ctx *godog.ScenarioContext) {\n")

	section := ""
	for i, s := range steps {
		kw := s.Keyword
		if kw == "" {
			kw = "Step"
		}
		if kw != section {
			if i > 0 {
				b.WriteString("\n")
			}
			if kw == "Step" {
				b.WriteString("\t// Shared steps\n")
			} else {
				fmt.Fprintf(&b, "\t// %s steps\n", kw)
			}
			section = kw
		}
		fmt.Fprintf(&b, "\tctx.%s(%s, step%d)\n", kw, goQuote(s.Pattern), i)
	}
	b.WriteString("}\n")

	for i := range steps {
		fmt.Fprintf(&b, "\nfunc step%d() error { return nil }\n", i)
	}
	return b.String()
}

// goQuote prefers a raw string literal, as step files usually do.
func goQuote(s string) string {
	if strings.Contains(s, "`") {
		return fmt.Sprintf("%q", s)
	}
	return "`" + s + "`"
}

func pkgName(dir string) string {
	dir = strings.TrimRight(dir, "/")
	if i := strings.LastIndex(dir, "/"); i >= 0 {
		dir = dir[i+1:]
	}
	name := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_' {
			return r
		}
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return -1
	}, dir)
	if name == "" || name[0] >= '0' && name[0] <= '9' {
		return "steps"
	}
	return name
}
