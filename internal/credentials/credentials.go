// Package credentials loads the GitHub token used to publish gists.
// Credentials are stored in $XDG_CONFIG_HOME/stepexport/credentials.yaml
// with 0600 permissions.
package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/alexbrand/stepexport/internal/config"
)

// ErrNoToken is returned when neither the environment nor the credentials
// file holds a GitHub token.
var ErrNoToken = errors.New("GitHub token not found: set GITHUB_TOKEN environment variable or add github.token to " + DefaultCredentialsPath())

// Credentials represents the top-level credentials structure.
type Credentials struct {
	GitHub *GitHubCredentials `yaml:"github,omitempty"`
}

// GitHubCredentials holds GitHub-specific credentials.
type GitHubCredentials struct {
	Token string `yaml:"token"`
}

var (
	creds     *Credentials
	credsFile string
)

// DefaultCredentialsPath returns the default credentials file path.
func DefaultCredentialsPath() string {
	return filepath.Join(config.Dir(), "credentials.yaml")
}

// Init loads credentials from path, or from the default path when empty.
// A missing file is not an error; the token may come from the environment.
func Init(path string) error {
	if path == "" {
		path = DefaultCredentialsPath()
	}
	credsFile = path
	creds = &Credentials{}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read credentials file: %w", err)
	}

	if err := yaml.Unmarshal(data, creds); err != nil {
		return fmt.Errorf("failed to parse credentials file: %w", err)
	}
	return nil
}

// GetGitHubToken returns the GitHub token using the following priority:
// 1. GITHUB_TOKEN environment variable
// 2. credentials.yaml github.token
func GetGitHubToken() (string, error) {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return token, nil
	}

	if creds != nil && creds.GitHub != nil && creds.GitHub.Token != "" {
		return creds.GitHub.Token, nil
	}

	return "", ErrNoToken
}

// CredentialsFilePath returns the path to the credentials file being used.
func CredentialsFilePath() string {
	return credsFile
}
