package extract

import (
	"github.com/alexbrand/stepexport/internal/step"
)

// Classifier assigns a category to a generic step pattern.
type Classifier interface {
	Classify(pattern string) (step.Category, bool)
}

// Classify places the module's unclassified definitions. Each one is offered
// to cls first (when non-nil) and then falls back to the fallback category.
// An empty fallback leaves the definition unclassified. It returns the
// definitions that remain unclassified.
func Classify(mod *step.Module, cls Classifier, fallback step.Category) []step.Definition {
	var skipped []step.Definition
	for i := range mod.Definitions {
		def := &mod.Definitions[i]
		if def.Classified() {
			continue
		}
		if cls != nil {
			if cat, ok := cls.Classify(def.Pattern); ok {
				def.Markers = []step.Category{cat}
				continue
			}
		}
		if fallback != "" {
			def.Markers = []step.Category{fallback}
			continue
		}
		skipped = append(skipped, *def)
	}
	return skipped
}
