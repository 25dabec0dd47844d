// Package features classifies generic step patterns by how the project's
// Gherkin feature files use them.
package features

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	gherkin "github.com/cucumber/gherkin/go/v26"
	messages "github.com/cucumber/messages/go/v21"

	"github.com/alexbrand/stepexport/internal/step"
)

// Usage is a step as written in a feature file, with its effective category.
type Usage struct {
	Text     string
	Category step.Category
	File     string
}

// Classifier matches step patterns against the steps used in feature files.
type Classifier struct {
	usages []Usage
}

// Load parses every .feature file below dir.
func Load(dir string) (*Classifier, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".feature") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find feature files in %s: %w", dir, err)
	}
	sort.Strings(paths)

	c := &Classifier{}
	for _, path := range paths {
		usages, err := parseFile(path)
		if err != nil {
			return nil, err
		}
		c.usages = append(c.usages, usages...)
	}
	return c, nil
}

// New creates a classifier over already collected usages.
func New(usages []Usage) *Classifier {
	return &Classifier{usages: usages}
}

// Usages returns the steps the classifier knows about.
func (c *Classifier) Usages() []Usage {
	return c.usages
}

// Classify returns the category most feature steps matching pattern are
// written with. Ties go to the earlier category in Given, When, Then order.
// It reports false when the pattern does not compile or matches nothing.
func (c *Classifier) Classify(pattern string) (step.Category, bool) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", false
	}

	votes := make(map[step.Category]int)
	for _, u := range c.usages {
		if u.Category != "" && re.MatchString(u.Text) {
			votes[u.Category]++
		}
	}

	var best step.Category
	for _, cat := range step.Categories() {
		if votes[cat] > votes[best] {
			best = cat
		}
	}
	return best, best != ""
}

func parseFile(path string) ([]Usage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open feature file: %w", err)
	}
	defer f.Close()

	doc, err := gherkin.ParseGherkinDocument(f, (&messages.Incrementing{}).NewId)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if doc.Feature == nil {
		return nil, nil
	}
	return collect(doc, path), nil
}

// collect flattens the document's pickles. Pickles expand scenario outlines
// and resolve And/But to the type of the step they continue.
func collect(doc *messages.GherkinDocument, path string) []Usage {
	var usages []Usage
	for _, pickle := range gherkin.Pickles(*doc, path, (&messages.Incrementing{}).NewId) {
		for _, s := range pickle.Steps {
			usages = append(usages, Usage{
				Text:     s.Text,
				Category: categoryOf(s.Type),
				File:     path,
			})
		}
	}
	return usages
}

func categoryOf(t messages.PickleStepType) step.Category {
	switch t {
	case messages.PickleStepType_CONTEXT:
		return step.CategoryGiven
	case messages.PickleStepType_ACTION:
		return step.CategoryWhen
	case messages.PickleStepType_OUTCOME:
		return step.CategoryThen
	default:
		return ""
	}
}
