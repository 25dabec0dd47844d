package gosource

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/alexbrand/stepexport/internal/loader"
	"github.com/alexbrand/stepexport/internal/step"
)

var fixture = filepath.Join("testdata", "myproject", "steps")

func load(t *testing.T, path string, opts loader.Options) *step.Module {
	t.Helper()
	m, err := New().Load(path, opts)
	if err != nil {
		t.Fatalf("Load(%q) returned unexpected error: %v", path, err)
	}
	return m
}

func assertPatterns(t *testing.T, m *step.Module, c step.Category, want ...string) {
	t.Helper()
	got := m.Patterns(c)
	if len(got) != len(want) {
		t.Fatalf("Patterns(%s) = %q, want %q", c, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Patterns(%s)[%d] = %q, want %q", c, i, got[i], want[i])
		}
	}
}

func TestLoad_PackageDirectory(t *testing.T) {
	m := load(t, fixture, loader.Options{})

	if m.Name != "example.com/myproject/steps" {
		t.Errorf("Name = %q, want %q", m.Name, "example.com/myproject/steps")
	}
	if m.Version != loader.DefaultVersion {
		t.Errorf("Version = %q, want %q", m.Version, loader.DefaultVersion)
	}
	if m.Path != fixture {
		t.Errorf("Path = %q, want %q", m.Path, fixture)
	}

	assertPatterns(t, m, step.CategoryGiven, `^I have (\d+) cukes$`)
	assertPatterns(t, m, step.CategoryWhen, `^I eat (\d+)$`)
	assertPatterns(t, m, step.CategoryThen, `^I should have (\d+) left$`)

	if m.Definitions[0].Handler != "c.iHaveCukes" {
		t.Errorf("Handler = %q, want %q", m.Definitions[0].Handler, "c.iHaveCukes")
	}
}

func TestLoad_IncludeTests(t *testing.T) {
	m := load(t, fixture, loader.Options{IncludeTests: true, Version: "1.2.0"})

	if m.Version != "1.2.0" {
		t.Errorf("Version = %q, want %q", m.Version, "1.2.0")
	}
	// common_steps_test.go sorts before cukes_steps.go
	assertPatterns(t, m, step.CategoryThen,
		`^the basket should contain <b>&"fresh"</b> cukes$`,
		`^I should have (\d+) left$`,
	)
}

func TestLoad_Recursive(t *testing.T) {
	m := load(t, fixture+"/...", loader.Options{})

	if m.Name != "example.com/myproject/steps" {
		t.Errorf("Name = %q, want %q", m.Name, "example.com/myproject/steps")
	}
	assertPatterns(t, m, step.CategoryGiven, `^I have (\d+) cukes$`)
	assertPatterns(t, m, step.CategoryWhen, `^I eat (\d+)$`, `^I pay (\d+) euros?$`)
}

func TestLoad_SingleFile(t *testing.T) {
	m := load(t, filepath.Join(fixture, "checkout", "checkout.go"), loader.Options{})

	if m.Name != "example.com/myproject/steps/checkout" {
		t.Errorf("Name = %q", m.Name)
	}
	assertPatterns(t, m, step.CategoryWhen, `^I pay (\d+) euros?$`)
}

func TestLoad_NoGoMod(t *testing.T) {
	dir := t.TempDir()
	src := "package acceptance\n\nimport \"github.com/cucumber/godog\"\n\nfunc Init(ctx *godog.ScenarioContext) {\n\tctx.Given(\"^x$\", x)\n}\n"
	if err := os.WriteFile(filepath.Join(dir, "steps.go"), []byte(src), 0644); err != nil {
		t.Fatalf("failed to write source: %v", err)
	}

	m := load(t, dir, loader.Options{})
	// t.TempDir is outside any module, so the package clause names it.
	if m.Name != "acceptance" {
		t.Errorf("Name = %q, want %q", m.Name, "acceptance")
	}
	assertPatterns(t, m, step.CategoryGiven, "^x$")
}

func TestLoad_Errors(t *testing.T) {
	empty := t.TempDir()

	broken := t.TempDir()
	if err := os.WriteFile(filepath.Join(broken, "broken.go"), []byte("package broken\n\nfunc {"), 0644); err != nil {
		t.Fatalf("failed to write source: %v", err)
	}

	notGo := filepath.Join(t.TempDir(), "MyProject.Steps.dll")
	if err := os.WriteFile(notGo, []byte{0x4d, 0x5a}, 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	tests := []struct {
		name  string
		path  string
		cause error
	}{
		{"missing path", filepath.Join(empty, "missing"), fs.ErrNotExist},
		{"empty directory", empty, ErrNoGoFiles},
		{"syntax error", broken, nil},
		{"not a Go file", notGo, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Load(tt.path, loader.Options{})
			if err == nil {
				t.Fatal("Load() expected error, got nil")
			}
			if !errors.Is(err, loader.ErrLoad) {
				t.Errorf("error %v should wrap loader.ErrLoad", err)
			}
			if tt.cause != nil && !errors.Is(err, tt.cause) {
				t.Errorf("error %v should wrap %v", err, tt.cause)
			}
		})
	}
}

func TestSplitRecursive(t *testing.T) {
	tests := []struct {
		in        string
		root      string
		recursive bool
	}{
		{"./spec/...", filepath.FromSlash("./spec"), true},
		{"...", ".", true},
		{"spec/steps", "spec/steps", false},
	}

	for _, tt := range tests {
		root, recursive := splitRecursive(tt.in)
		if root != tt.root || recursive != tt.recursive {
			t.Errorf("splitRecursive(%q) = (%q, %v), want (%q, %v)", tt.in, root, recursive, tt.root, tt.recursive)
		}
	}
}

func TestRegister(t *testing.T) {
	loader.UnregisterAll()
	defer loader.UnregisterAll()

	Register()
	l, err := loader.Get(loader.KindGo)
	if err != nil {
		t.Fatalf("loader.Get() returned unexpected error: %v", err)
	}
	if l.Name() != Name {
		t.Errorf("Name() = %q, want %q", l.Name(), Name)
	}
}
