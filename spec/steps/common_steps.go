// Package steps provides step definitions for the stepexport CLI Gherkin specs.
package steps

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"

	"github.com/alexbrand/stepexport/spec/support"
)

// contextKey is a type for context keys to avoid collisions.
type contextKey string

const (
	testEnvKey          contextKey = "testEnv"
	cliRunnerKey        contextKey = "cliRunner"
	lastResultKey       contextKey = "lastResult"
	mockGitHubServerKey contextKey = "mockGitHubServer"
	savedFilesKey       contextKey = "savedFiles"
)

// getTestEnv retrieves the TestEnv from context.
func getTestEnv(ctx context.Context) *support.TestEnv {
	if env, ok := ctx.Value(testEnvKey).(*support.TestEnv); ok {
		return env
	}
	return nil
}

// getCLIRunner retrieves the CLIRunner from context.
func getCLIRunner(ctx context.Context) *support.CLIRunner {
	if runner, ok := ctx.Value(cliRunnerKey).(*support.CLIRunner); ok {
		return runner
	}
	return nil
}

// getLastResult retrieves the last command result from context.
func getLastResult(ctx context.Context) *support.CommandResult {
	if result, ok := ctx.Value(lastResultKey).(*support.CommandResult); ok {
		return result
	}
	return nil
}

// getMockGitHubServer retrieves the MockGitHubServer from context.
func getMockGitHubServer(ctx context.Context) *support.MockGitHubServer {
	if server, ok := ctx.Value(mockGitHubServerKey).(*support.MockGitHubServer); ok {
		return server
	}
	return nil
}

// InitializeCommonSteps registers all common step definitions.
func InitializeCommonSteps(ctx *godog.ScenarioContext) {
	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		env, err := support.NewTestEnv()
		if err != nil {
			return ctx, fmt.Errorf("failed to create test environment: %w", err)
		}

		// Uses $STEPEXPORT_BIN, or stepexport from PATH
		runner := support.NewCLIRunner("")
		runner.WorkDir = env.TempDir

		ctx = context.WithValue(ctx, testEnvKey, env)
		ctx = context.WithValue(ctx, cliRunnerKey, runner)

		return ctx, nil
	})

	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if server := getMockGitHubServer(ctx); server != nil {
			server.Close()
		}

		if env := getTestEnv(ctx); env != nil {
			if cleanupErr := env.Cleanup(); cleanupErr != nil {
				fmt.Printf("Warning: cleanup failed: %v\n", cleanupErr)
			}
		}
		return ctx, nil
	})

	// Given steps
	ctx.Given(`^a fresh directory$`, aFreshDirectory)
	ctx.Given(`^a file "([^"]*)" with content:$`, aFileWithContent)
	ctx.Given(`^a directory "([^"]*)"$`, aDirectory)
	ctx.Given(`^a manifest "([^"]*)" named "([^"]*)" with steps:$`, aManifestNamedWithSteps)
	ctx.Given(`^a manifest "([^"]*)" named "([^"]*)" version "([^"]*)" with steps:$`, aManifestNamedVersionWithSteps)
	ctx.Given(`^a Go module "([^"]*)" in "([^"]*)"$`, aGoModuleIn)
	ctx.Given(`^a Go step package "([^"]*)" with steps:$`, aGoStepPackageWithSteps)
	ctx.Given(`^a config file with the following content:$`, aConfigFileWithTheFollowingContent)
	ctx.Given(`^the environment variable "([^"]*)" is "([^"]*)"$`, theEnvironmentVariableIs)
	ctx.Given(`^a mock GitHub API server is running$`, aMockGitHubAPIServerIsRunning)
	ctx.Given(`^the GitHub token is "([^"]*)"$`, theGitHubTokenIs)
	ctx.Given(`^the mock GitHub API rejects gists$`, theMockGitHubAPIRejectsGists)

	// When steps
	ctx.When(`^I run "([^"]*)"$`, iRun)
	ctx.When(`^I save the content of "([^"]*)"$`, iSaveTheContentOf)

	// Then steps
	ctx.Then(`^the exit code should be (\d+)$`, theExitCodeShouldBe)
	ctx.Then(`^stdout should contain "([^"]*)"$`, stdoutShouldContain)
	ctx.Then(`^stdout should not contain "([^"]*)"$`, stdoutShouldNotContain)
	ctx.Then(`^stderr should contain "([^"]*)"$`, stderrShouldContain)
	ctx.Then(`^stderr should be empty$`, stderrShouldBeEmpty)
	ctx.Then(`^the output should match:$`, theOutputShouldMatch)
	ctx.Then(`^the file "([^"]*)" should exist$`, theFileShouldExist)
	ctx.Then(`^the file "([^"]*)" should not exist$`, theFileShouldNotExist)
	ctx.Then(`^the file "([^"]*)" should contain exactly:$`, theFileShouldContainExactly)
	ctx.Then(`^the file "([^"]*)" should be unchanged$`, theFileShouldBeUnchanged)
	ctx.Then(`^the file "([^"]*)" should contain "([^"]*)"$`, theFileShouldContain)
	ctx.Then(`^the file "([^"]*)" should not contain "([^"]*)"$`, theFileShouldNotContain)
	ctx.Then(`^the JSON file "([^"]*)" should have "([^"]*)" equal to "([^"]*)"$`, theJSONFileShouldHaveEqualTo)
	ctx.Then(`^the JSON file "([^"]*)" should have array "([^"]*)" with length (\d+)$`, theJSONFileShouldHaveArrayWithLength)
	ctx.Then(`^the JSON file "([^"]*)" should have array "([^"]*)" containing "([^"]*)"$`, theJSONFileShouldHaveArrayContaining)
	ctx.Then(`^a gist named "([^"]*)" should have been published$`, aGistNamedShouldHaveBeenPublished)
	ctx.Then(`^the gist should be (public|secret)$`, theGistShouldBe)
	ctx.Then(`^the gist description should be "([^"]*)"$`, theGistDescriptionShouldBe)
	ctx.Then(`^no gist should have been published$`, noGistShouldHaveBeenPublished)
}

// aFreshDirectory checks the scenario starts in an empty directory.
func aFreshDirectory(ctx context.Context) (context.Context, error) {
	if getTestEnv(ctx) == nil {
		return ctx, fmt.Errorf("test environment not initialized")
	}
	return ctx, nil
}

// aFileWithContent creates a file holding the docstring.
func aFileWithContent(ctx context.Context, path string, content *godog.DocString) (context.Context, error) {
	env := getTestEnv(ctx)
	if env == nil {
		return ctx, fmt.Errorf("test environment not initialized")
	}
	if err := env.CreateFile(path, content.Content+"\n"); err != nil {
		return ctx, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return ctx, nil
}

// aDirectory creates an empty directory.
func aDirectory(ctx context.Context, path string) (context.Context, error) {
	env := getTestEnv(ctx)
	if env == nil {
		return ctx, fmt.Errorf("test environment not initialized")
	}
	if err := env.CreateDir(path); err != nil {
		return ctx, fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return ctx, nil
}

// stepFixtures reads a keyword | pattern table.
func stepFixtures(table *godog.Table) ([]support.StepFixture, error) {
	if len(table.Rows) < 1 {
		return nil, fmt.Errorf("table must have a header row")
	}

	colIndex := make(map[string]int)
	for i, cell := range table.Rows[0].Cells {
		colIndex[cell.Value] = i
	}
	kwCol, ok := colIndex["keyword"]
	if !ok {
		return nil, fmt.Errorf("table must have 'keyword' column")
	}
	patternCol, ok := colIndex["pattern"]
	if !ok {
		return nil, fmt.Errorf("table must have 'pattern' column")
	}

	var steps []support.StepFixture
	for _, row := range table.Rows[1:] {
		steps = append(steps, support.StepFixture{
			Keyword: row.Cells[kwCol].Value,
			Pattern: row.Cells[patternCol].Value,
		})
	}
	return steps, nil
}

// aManifestNamedWithSteps writes a manifest without a version.
func aManifestNamedWithSteps(ctx context.Context, path, name string, table *godog.Table) (context.Context, error) {
	return aManifestNamedVersionWithSteps(ctx, path, name, "", table)
}

// aManifestNamedVersionWithSteps writes a manifest from a keyword | pattern table.
func aManifestNamedVersionWithSteps(ctx context.Context, path, name, version string, table *godog.Table) (context.Context, error) {
	env := getTestEnv(ctx)
	if env == nil {
		return ctx, fmt.Errorf("test environment not initialized")
	}

	steps, err := stepFixtures(table)
	if err != nil {
		return ctx, err
	}
	m, err := support.NewManifestFixture(name, version, steps)
	if err != nil {
		return ctx, err
	}
	if err := env.CreateManifest(path, m); err != nil {
		return ctx, fmt.Errorf("failed to create manifest: %w", err)
	}
	return ctx, nil
}

// aGoModuleIn writes a go.mod so loaded packages get an import path.
func aGoModuleIn(ctx context.Context, modulePath, dir string) (context.Context, error) {
	env := getTestEnv(ctx)
	if env == nil {
		return ctx, fmt.Errorf("test environment not initialized")
	}
	if err := env.CreateGoModule(dir, modulePath); err != nil {
		return ctx, fmt.Errorf("failed to create go.mod: %w", err)
	}
	return ctx, nil
}

// aGoStepPackageWithSteps writes a godog step package from a keyword | pattern table.
// An empty keyword registers the step with ctx.Step.
func aGoStepPackageWithSteps(ctx context.Context, dir string, table *godog.Table) (context.Context, error) {
	env := getTestEnv(ctx)
	if env == nil {
		return ctx, fmt.Errorf("test environment not initialized")
	}

	steps, err := stepFixtures(table)
	if err != nil {
		return ctx, err
	}
	if err := env.CreateStepPackage(dir, steps); err != nil {
		return ctx, fmt.Errorf("failed to create step package: %w", err)
	}
	return ctx, nil
}

// aConfigFileWithTheFollowingContent writes the project config file.
func aConfigFileWithTheFollowingContent(ctx context.Context, content *godog.DocString) (context.Context, error) {
	env := getTestEnv(ctx)
	if env == nil {
		return ctx, fmt.Errorf("test environment not initialized")
	}

	if err := support.NewConfigGenerator().GenerateFromYAML(env, content.Content); err != nil {
		return ctx, fmt.Errorf("failed to write config file: %w", err)
	}
	return ctx, nil
}

// theEnvironmentVariableIs sets an environment variable for the scenario.
func theEnvironmentVariableIs(ctx context.Context, key, value string) (context.Context, error) {
	env := getTestEnv(ctx)
	if env == nil {
		return ctx, fmt.Errorf("test environment not initialized")
	}
	env.SetEnv(key, value)
	return ctx, nil
}

// aMockGitHubAPIServerIsRunning starts a mock GitHub API server.
func aMockGitHubAPIServerIsRunning(ctx context.Context) (context.Context, error) {
	env := getTestEnv(ctx)
	if env == nil {
		return ctx, fmt.Errorf("test environment not initialized")
	}

	server := support.NewMockGitHubServer()
	env.SetEnv("GITHUB_API_URL", server.URL)

	return context.WithValue(ctx, mockGitHubServerKey, server), nil
}

// theGitHubTokenIs sets GITHUB_TOKEN and makes the mock expect it.
func theGitHubTokenIs(ctx context.Context, token string) (context.Context, error) {
	env := getTestEnv(ctx)
	if env == nil {
		return ctx, fmt.Errorf("test environment not initialized")
	}
	env.SetEnv("GITHUB_TOKEN", token)

	if server := getMockGitHubServer(ctx); server != nil {
		server.ExpectedToken = token
	}
	return ctx, nil
}

// theMockGitHubAPIRejectsGists makes gist creation fail validation.
func theMockGitHubAPIRejectsGists(ctx context.Context) (context.Context, error) {
	server := getMockGitHubServer(ctx)
	if server == nil {
		return ctx, fmt.Errorf("mock GitHub API server not running - call 'a mock GitHub API server is running' first")
	}
	server.FailGists = true
	return ctx, nil
}

// iRun executes a CLI command.
func iRun(ctx context.Context, command string) (context.Context, error) {
	runner := getCLIRunner(ctx)
	if runner == nil {
		return ctx, fmt.Errorf("CLI runner not initialized")
	}

	result := runner.Run(command)
	if result.Err != nil {
		return ctx, fmt.Errorf("failed to run %q: %w", result.Command, result.Err)
	}
	return context.WithValue(ctx, lastResultKey, result), nil
}

// iSaveTheContentOf records a file's bytes for a later comparison.
func iSaveTheContentOf(ctx context.Context, path string) (context.Context, error) {
	content, err := readFile(ctx, path)
	if err != nil {
		return ctx, err
	}

	saved := make(map[string]string)
	if prev, ok := ctx.Value(savedFilesKey).(map[string]string); ok {
		for k, v := range prev {
			saved[k] = v
		}
	}
	saved[path] = content
	return context.WithValue(ctx, savedFilesKey, saved), nil
}

// theExitCodeShouldBe verifies the exit code of the last command.
func theExitCodeShouldBe(ctx context.Context, expected int) error {
	result := getLastResult(ctx)
	if result == nil {
		return fmt.Errorf("no command has been run")
	}

	if result.ExitCode != expected {
		return fmt.Errorf("expected exit code %d, got %d\nstdout: %s\nstderr: %s",
			expected, result.ExitCode, result.Stdout, result.Stderr)
	}
	return nil
}

// stdoutShouldContain verifies stdout contains a substring.
func stdoutShouldContain(ctx context.Context, expected string) error {
	result := getLastResult(ctx)
	if result == nil {
		return fmt.Errorf("no command has been run")
	}

	if !result.StdoutContains(expected) {
		return fmt.Errorf("expected stdout to contain %q, got:\n%s", expected, result.Stdout)
	}
	return nil
}

// stdoutShouldNotContain verifies stdout does not contain a substring.
func stdoutShouldNotContain(ctx context.Context, unexpected string) error {
	result := getLastResult(ctx)
	if result == nil {
		return fmt.Errorf("no command has been run")
	}

	if result.StdoutContains(unexpected) {
		return fmt.Errorf("expected stdout to not contain %q, but it does:\n%s", unexpected, result.Stdout)
	}
	return nil
}

// stderrShouldContain verifies stderr contains a substring.
func stderrShouldContain(ctx context.Context, expected string) error {
	result := getLastResult(ctx)
	if result == nil {
		return fmt.Errorf("no command has been run")
	}

	if !result.StderrContains(expected) {
		return fmt.Errorf("expected stderr to contain %q, got:\n%s", expected, result.Stderr)
	}
	return nil
}

// stderrShouldBeEmpty verifies stderr is empty.
func stderrShouldBeEmpty(ctx context.Context) error {
	result := getLastResult(ctx)
	if result == nil {
		return fmt.Errorf("no command has been run")
	}

	if strings.TrimSpace(result.Stderr) != "" {
		return fmt.Errorf("expected stderr to be empty, got:\n%s", result.Stderr)
	}
	return nil
}

// theOutputShouldMatch verifies stdout matches a docstring, ignoring
// leading and trailing whitespace.
func theOutputShouldMatch(ctx context.Context, expected *godog.DocString) error {
	result := getLastResult(ctx)
	if result == nil {
		return fmt.Errorf("no command has been run")
	}

	actual := result.StdoutTrimmed()
	want := strings.TrimSpace(expected.Content)
	if actual != want {
		return fmt.Errorf("output did not match\nExpected:\n%s\n\nActual:\n%s", want, actual)
	}
	return nil
}

// theFileShouldExist verifies a file exists.
func theFileShouldExist(ctx context.Context, path string) error {
	env := getTestEnv(ctx)
	if env == nil {
		return fmt.Errorf("test environment not initialized")
	}
	if !env.FileExists(path) {
		return fmt.Errorf("expected file %s to exist", path)
	}
	return nil
}

// theFileShouldNotExist verifies a file was not created.
func theFileShouldNotExist(ctx context.Context, path string) error {
	env := getTestEnv(ctx)
	if env == nil {
		return fmt.Errorf("test environment not initialized")
	}
	if env.FileExists(path) {
		return fmt.Errorf("expected file %s to not exist", path)
	}
	return nil
}

// readFile reads a file of the scenario directory.
func readFile(ctx context.Context, path string) (string, error) {
	env := getTestEnv(ctx)
	if env == nil {
		return "", fmt.Errorf("test environment not initialized")
	}
	content, err := env.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return content, nil
}

// theFileShouldContainExactly compares a file byte for byte. The docstring
// omits the file's final newline.
func theFileShouldContainExactly(ctx context.Context, path string, expected *godog.DocString) error {
	content, err := readFile(ctx, path)
	if err != nil {
		return err
	}

	want := expected.Content + "\n"
	if content != want {
		return fmt.Errorf("file %s did not match\nExpected:\n%q\n\nActual:\n%q", path, want, content)
	}
	return nil
}

// theFileShouldBeUnchanged compares a file byte for byte with its saved content.
func theFileShouldBeUnchanged(ctx context.Context, path string) error {
	saved, ok := ctx.Value(savedFilesKey).(map[string]string)
	if !ok {
		return fmt.Errorf("no saved content for %s", path)
	}
	want, ok := saved[path]
	if !ok {
		return fmt.Errorf("no saved content for %s", path)
	}

	content, err := readFile(ctx, path)
	if err != nil {
		return err
	}
	if content != want {
		return fmt.Errorf("file %s changed\nBefore:\n%q\n\nAfter:\n%q", path, want, content)
	}
	return nil
}

// theFileShouldContain verifies a file contains a substring.
func theFileShouldContain(ctx context.Context, path, expected string) error {
	content, err := readFile(ctx, path)
	if err != nil {
		return err
	}
	if !strings.Contains(content, expected) {
		return fmt.Errorf("expected %s to contain %q, got:\n%s", path, expected, content)
	}
	return nil
}

// theFileShouldNotContain verifies a file does not contain a substring.
func theFileShouldNotContain(ctx context.Context, path, unexpected string) error {
	content, err := readFile(ctx, path)
	if err != nil {
		return err
	}
	if strings.Contains(content, unexpected) {
		return fmt.Errorf("expected %s to not contain %q, got:\n%s", path, unexpected, content)
	}
	return nil
}

// parseJSONFile reads and parses a JSON report.
func parseJSONFile(ctx context.Context, path string) (*support.JSONResult, error) {
	content, err := readFile(ctx, path)
	if err != nil {
		return nil, err
	}
	parsed := support.ParseJSON(content)
	if !parsed.Valid() {
		return nil, fmt.Errorf("invalid JSON in %s: %s\n%s", path, parsed.Error(), content)
	}
	return parsed, nil
}

// theJSONFileShouldHaveEqualTo verifies a JSON path has the expected value.
func theJSONFileShouldHaveEqualTo(ctx context.Context, path, key, expected string) error {
	parsed, err := parseJSONFile(ctx, path)
	if err != nil {
		return err
	}
	if actual := parsed.GetString(key); actual != expected {
		return fmt.Errorf("expected %s %q to be %q, got %q", path, key, expected, actual)
	}
	return nil
}

// theJSONFileShouldHaveArrayWithLength verifies the length of a JSON array.
func theJSONFileShouldHaveArrayWithLength(ctx context.Context, path, key string, expected int) error {
	parsed, err := parseJSONFile(ctx, path)
	if err != nil {
		return err
	}
	if !parsed.IsArray(key) {
		return fmt.Errorf("expected %s %q to be an array, got %v", path, key, parsed.Get(key))
	}
	if actual := parsed.ArrayLen(key); actual != expected {
		return fmt.Errorf("expected %s %q to have %d entries, got %d", path, key, expected, actual)
	}
	return nil
}

// theJSONFileShouldHaveArrayContaining verifies a JSON array holds a string.
func theJSONFileShouldHaveArrayContaining(ctx context.Context, path, key, expected string) error {
	parsed, err := parseJSONFile(ctx, path)
	if err != nil {
		return err
	}
	if !parsed.ContainsString(key, expected) {
		return fmt.Errorf("expected %s %q to contain %q, got %v", path, key, expected, parsed.Get(key))
	}
	return nil
}

// lastGist returns the last gist the mock received.
func lastGist(ctx context.Context) (*support.MockGist, error) {
	server := getMockGitHubServer(ctx)
	if server == nil {
		return nil, fmt.Errorf("mock GitHub API server not running")
	}
	gist := server.LastGist()
	if gist == nil {
		return nil, fmt.Errorf("no gist was published")
	}
	return gist, nil
}

// aGistNamedShouldHaveBeenPublished verifies the gist holds a file of that name
// with the same content as the written report.
func aGistNamedShouldHaveBeenPublished(ctx context.Context, name string) error {
	gist, err := lastGist(ctx)
	if err != nil {
		return err
	}
	content, ok := gist.Files[name]
	if !ok {
		return fmt.Errorf("gist %s has no file %q", gist.ID, name)
	}

	written, err := readFile(ctx, name)
	if err != nil {
		return err
	}
	if content != written {
		return fmt.Errorf("gist file %q does not match the written report\ngist:\n%s\nfile:\n%s", name, content, written)
	}
	return nil
}

// theGistShouldBe verifies the visibility of the last gist.
func theGistShouldBe(ctx context.Context, visibility string) error {
	gist, err := lastGist(ctx)
	if err != nil {
		return err
	}
	if gist.Public != (visibility == "public") {
		return fmt.Errorf("expected gist %s to be %s, got public=%v", gist.ID, visibility, gist.Public)
	}
	return nil
}

// theGistDescriptionShouldBe verifies the description of the last gist.
func theGistDescriptionShouldBe(ctx context.Context, expected string) error {
	gist, err := lastGist(ctx)
	if err != nil {
		return err
	}
	if gist.Description != expected {
		return fmt.Errorf("expected gist description %q, got %q", expected, gist.Description)
	}
	return nil
}

// noGistShouldHaveBeenPublished verifies the mock stored no gist.
func noGistShouldHaveBeenPublished(ctx context.Context) error {
	server := getMockGitHubServer(ctx)
	if server == nil {
		return fmt.Errorf("mock GitHub API server not running")
	}
	if gist := server.LastGist(); gist != nil {
		return fmt.Errorf("expected no gist, got %s", gist.ID)
	}
	return nil
}
