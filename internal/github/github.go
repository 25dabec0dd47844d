// Package github publishes rendered step reports as GitHub gists.
package github

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	gh "github.com/google/go-github/v60/github"
	"golang.org/x/oauth2"
)

// Name is the name of the publisher.
const Name = "github"

// ErrNotConnected is returned when Publish is called before Connect.
var ErrNotConnected = errors.New("not connected")

// Gist describes the document to upload.
type Gist struct {
	// Filename is the name of the single file in the gist.
	Filename string
	// Description is shown above the gist.
	Description string
	// Public makes the gist discoverable; otherwise it is secret.
	Public bool
	// Content is the rendered report.
	Content string
}

// Result describes a created gist.
type Result struct {
	ID     string
	URL    string
	RawURL string
	Owner  string
}

// Publisher uploads reports through the GitHub REST API.
type Publisher struct {
	client    *gh.Client
	login     string
	connected bool
}

// New creates a new, unconnected publisher.
func New() *Publisher {
	return &Publisher{}
}

// Name returns the name of the publisher.
func (p *Publisher) Name() string {
	return Name
}

// Connect creates the authenticated clients and checks the token by
// resolving the login it belongs to. GITHUB_API_URL points both clients at
// a GitHub Enterprise server or a test server.
func (p *Publisher) Connect(ctx context.Context, token string) error {
	if token == "" {
		return errors.New("github token is required")
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	p.client = gh.NewClient(tc)

	apiURL := os.Getenv("GITHUB_API_URL")
	if apiURL != "" {
		baseURL := apiURL
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		var err error
		p.client, err = p.client.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return fmt.Errorf("failed to set GitHub API URL: %w", err)
		}
	}

	viewer, err := NewViewerClient(ctx, token, apiURL)
	if err != nil {
		return err
	}
	login, err := viewer.Login(ctx)
	if err != nil {
		return err
	}

	p.login = login
	p.connected = true
	return nil
}

// Login returns the account the token belongs to.
func (p *Publisher) Login() string {
	return p.login
}

// Publish creates a gist holding the report.
func (p *Publisher) Publish(ctx context.Context, g Gist) (*Result, error) {
	if !p.connected {
		return nil, ErrNotConnected
	}
	if g.Filename == "" {
		return nil, errors.New("gist filename is required")
	}

	req := &gh.Gist{
		Description: gh.String(g.Description),
		Public:      gh.Bool(g.Public),
		Files: map[gh.GistFilename]gh.GistFile{
			gh.GistFilename(g.Filename): {
				Filename: gh.String(g.Filename),
				Content:  gh.String(g.Content),
			},
		},
	}

	gist, _, err := p.client.Gists.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create gist: %w", err)
	}

	res := &Result{
		ID:    gist.GetID(),
		URL:   gist.GetHTMLURL(),
		Owner: gist.GetOwner().GetLogin(),
	}
	if res.Owner == "" {
		res.Owner = p.login
	}
	if f, ok := gist.Files[gh.GistFilename(g.Filename)]; ok {
		res.RawURL = f.GetRawURL()
	}
	return res, nil
}
