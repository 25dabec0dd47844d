package github

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"
)

// ViewerClient queries the GraphQL API for the authenticated account.
type ViewerClient struct {
	client *githubv4.Client
}

// NewViewerClient creates a new GraphQL client.
// If apiURL is provided, it will be used as the GraphQL endpoint (for testing/enterprise).
func NewViewerClient(ctx context.Context, token, apiURL string) (*ViewerClient, error) {
	if token == "" {
		return nil, errors.New("github token is required")
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(ctx, src)

	var client *githubv4.Client
	if apiURL != "" {
		graphqlURL := apiURL
		if !strings.HasSuffix(graphqlURL, "/") {
			graphqlURL += "/"
		}
		graphqlURL += "graphql"
		client = githubv4.NewEnterpriseClient(graphqlURL, httpClient)
	} else {
		client = githubv4.NewClient(httpClient)
	}

	return &ViewerClient{client: client}, nil
}

// Login returns the login of the account the token authenticates.
func (v *ViewerClient) Login(ctx context.Context) (string, error) {
	var query struct {
		Viewer struct {
			Login githubv4.String
		}
	}

	if err := v.client.Query(ctx, &query, nil); err != nil {
		return "", fmt.Errorf("failed to resolve GitHub login: %w", err)
	}
	if query.Viewer.Login == "" {
		return "", errors.New("failed to resolve GitHub login: empty response")
	}
	return string(query.Viewer.Login), nil
}
