package features

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexbrand/stepexport/internal/step"
)

const cukesFeature = `Feature: Eating cukes

  Background:
    Given a fresh directory

  Scenario: eat some
    Given I have 12 cukes
    And the basket is full
    When I eat 5
    Then I should have 7 left
    But the basket should not be empty

  Scenario Outline: eat many
    When I eat <n>
    Then I should have <left> left

    Examples:
      | n | left |
      | 1 | 11   |
      | 2 | 10   |
`

func writeFeature(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFeature(t, dir, "cukes.feature", cukesFeature)
	writeFeature(t, dir, "notes.txt", "not a feature")

	c, err := Load(dir)
	require.NoError(t, err)

	// Background steps are repeated for each of the three pickles.
	assert.Len(t, c.Usages(), 3+5+2+2)
	assert.Equal(t, Usage{
		Text:     "a fresh directory",
		Category: step.CategoryGiven,
		File:     filepath.Join(dir, "cukes.feature"),
	}, c.Usages()[0])
}

func TestClassify(t *testing.T) {
	dir := t.TempDir()
	writeFeature(t, dir, "nested/cukes.feature", cukesFeature)

	c, err := Load(dir)
	require.NoError(t, err)

	tests := []struct {
		pattern string
		want    step.Category
		ok      bool
	}{
		{`^I have (\d+) cukes$`, step.CategoryGiven, true},
		{`^the basket is full$`, step.CategoryGiven, true},
		{`^I eat (\d+)$`, step.CategoryWhen, true},
		{`^I should have (\d+) left$`, step.CategoryThen, true},
		{`^the basket should not be empty$`, step.CategoryThen, true},
		{`^I eat <n>$`, "", false},
		{`^nothing matches this$`, "", false},
		{`^broken (pattern$`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got, ok := c.Classify(tt.pattern)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_MajorityAndTies(t *testing.T) {
	c := New([]Usage{
		{Text: "the door is open", Category: step.CategoryThen},
		{Text: "the door is open", Category: step.CategoryGiven},
		{Text: "the door is open", Category: step.CategoryThen},
		{Text: "the light is on", Category: step.CategoryThen},
		{Text: "the light is on", Category: step.CategoryWhen},
	})

	got, ok := c.Classify(`^the door is open$`)
	require.True(t, ok)
	assert.Equal(t, step.CategoryThen, got)

	got, ok = c.Classify(`^the light is on$`)
	require.True(t, ok)
	assert.Equal(t, step.CategoryWhen, got, "ties go to the earlier category")
}

func TestLoad_Rules(t *testing.T) {
	dir := t.TempDir()
	writeFeature(t, dir, "rules.feature", `Feature: Rules

  Rule: only one

    Scenario: first
      Given a rule precondition
      When the rule acts
      Then the rule holds
`)

	c, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, c.Usages(), 3)
	assert.Equal(t, step.CategoryWhen, c.Usages()[1].Category)
}

func TestLoad_InvalidFeature(t *testing.T) {
	dir := t.TempDir()
	writeFeature(t, dir, "broken.feature", "Feature: broken\n  Scenario: x\n    Given ok\n    this is not a step\n")

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLoad_MissingDir(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestLoad_EmptyFeatureFile(t *testing.T) {
	dir := t.TempDir()
	writeFeature(t, dir, "empty.feature", "# just a comment\n")

	c, err := Load(dir)
	require.NoError(t, err)
	assert.Empty(t, c.Usages())
}
