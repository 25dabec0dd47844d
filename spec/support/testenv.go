// Package support provides test helpers and fixtures for the stepexport specs.
package support

import (
	"os"
	"path/filepath"
)

// TestEnv holds the test environment state for a scenario.
type TestEnv struct {
	// TempDir is the temporary directory for this test run
	TempDir string
	// ConfigDir is the project-local .stepexport directory within TempDir
	ConfigDir string
	// XDGConfigHome replaces the user's config home so their settings and
	// credentials never leak into a scenario
	XDGConfigHome string
	// OriginalDir is the directory we were in before the test
	OriginalDir string
	// OriginalEnv stores original environment variables to restore
	OriginalEnv map[string]string
}

// NewTestEnv creates a new isolated test environment.
// It creates a temporary directory, changes into it and points
// XDG_CONFIG_HOME below it. GITHUB_TOKEN and STEPEXPORT_* variables set
// by the caller's shell are cleared.
func NewTestEnv() (*TestEnv, error) {
	originalDir, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	tempDir, err := os.MkdirTemp("", "stepexport-test-*")
	if err != nil {
		return nil, err
	}

	if err := os.Chdir(tempDir); err != nil {
		os.RemoveAll(tempDir)
		return nil, err
	}

	env := &TestEnv{
		TempDir:       tempDir,
		ConfigDir:     filepath.Join(tempDir, ".stepexport"),
		XDGConfigHome: filepath.Join(tempDir, ".xdg"),
		OriginalDir:   originalDir,
		OriginalEnv:   make(map[string]string),
	}
	env.SetEnv("XDG_CONFIG_HOME", env.XDGConfigHome)
	for _, key := range []string{"GITHUB_TOKEN", "GITHUB_API_URL", "STEPEXPORT_FORMAT", "STEPEXPORT_UNCLASSIFIED"} {
		env.UnsetEnv(key)
	}
	return env, nil
}

// Cleanup removes the temporary directory and restores the original state.
func (e *TestEnv) Cleanup() error {
	if err := os.Chdir(e.OriginalDir); err != nil {
		return err
	}

	for key, value := range e.OriginalEnv {
		if value == "" {
			os.Unsetenv(key)
		} else {
			os.Setenv(key, value)
		}
	}

	return os.RemoveAll(e.TempDir)
}

// SetEnv sets an environment variable and stores the original value for restoration.
func (e *TestEnv) SetEnv(key, value string) {
	if _, exists := e.OriginalEnv[key]; !exists {
		e.OriginalEnv[key] = os.Getenv(key)
	}
	os.Setenv(key, value)
}

// UnsetEnv unsets an environment variable and stores the original value for restoration.
func (e *TestEnv) UnsetEnv(key string) {
	if _, exists := e.OriginalEnv[key]; !exists {
		e.OriginalEnv[key] = os.Getenv(key)
	}
	os.Unsetenv(key)
}

// CreateFile creates a file with the given content within the temp directory.
func (e *TestEnv) CreateFile(relativePath, content string) error {
	fullPath := filepath.Join(e.TempDir, relativePath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}

	return os.WriteFile(fullPath, []byte(content), 0644)
}

// ReadFile reads a file from the temp directory.
func (e *TestEnv) ReadFile(relativePath string) (string, error) {
	content, err := os.ReadFile(e.Path(relativePath))
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// FileExists checks if a file exists within the temp directory.
func (e *TestEnv) FileExists(relativePath string) bool {
	_, err := os.Stat(e.Path(relativePath))
	return err == nil
}

// Path returns the full path for a relative path within the temp directory.
func (e *TestEnv) Path(relativePath string) string {
	return filepath.Join(e.TempDir, relativePath)
}

// CreateDir creates a directory within the temp directory.
func (e *TestEnv) CreateDir(relativePath string) error {
	return os.MkdirAll(e.Path(relativePath), 0755)
}
