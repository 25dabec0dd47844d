package support

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// MockGist is a gist received by the mock GitHub API.
type MockGist struct {
	ID          string
	Description string
	Public      bool
	// Files maps file names to their content.
	Files map[string]string
}

// MockGitHubServer provides a mock implementation of the GitHub gist and
// GraphQL viewer APIs for testing.
type MockGitHubServer struct {
	Server *httptest.Server
	URL    string

	// mu protects all fields below
	mu sync.RWMutex

	// Gists in creation order
	Gists []*MockGist

	// ExpectedToken if set, validates Authorization header
	ExpectedToken string

	// AuthenticatedUser is the login returned for the viewer query
	AuthenticatedUser string

	// FailGists makes gist creation return 422
	FailGists bool

	// NextGistID is the next gist number to assign
	NextGistID int
}

// NewMockGitHubServer creates and starts a new mock GitHub API server.
// Point the binary at it with GITHUB_API_URL=URL.
func NewMockGitHubServer() *MockGitHubServer {
	mock := &MockGitHubServer{
		AuthenticatedUser: "test-user",
		NextGistID:        1,
	}

	mux := http.NewServeMux()

	// POST /gists - create gist
	mux.HandleFunc("/api/v3/gists", mock.handleGists)

	// POST /graphql - viewer query
	mux.HandleFunc("/graphql", mock.handleGraphQL)
	mux.HandleFunc("/api/graphql", mock.handleGraphQL)

	mock.Server = httptest.NewServer(mux)
	mock.URL = mock.Server.URL

	return mock
}

// Close shuts down the mock server.
func (m *MockGitHubServer) Close() {
	if m.Server != nil {
		m.Server.Close()
	}
}

// LastGist returns the most recently created gist, or nil.
func (m *MockGitHubServer) LastGist() *MockGist {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.Gists) == 0 {
		return nil
	}
	return m.Gists[len(m.Gists)-1]
}

// validateAuth checks the Authorization header and returns an error response if invalid.
func (m *MockGitHubServer) validateAuth(w http.ResponseWriter, r *http.Request) bool {
	m.mu.RLock()
	expectedToken := m.ExpectedToken
	m.mu.RUnlock()

	auth := r.Header.Get("Authorization")
	if auth == "" {
		m.writeError(w, http.StatusUnauthorized, "Requires authentication")
		return false
	}
	if expectedToken != "" && auth != "Bearer "+expectedToken && auth != "token "+expectedToken {
		m.writeError(w, http.StatusUnauthorized, "Bad credentials")
		return false
	}
	return true
}

// handleGists handles POST /gists requests.
func (m *MockGitHubServer) handleGists(w http.ResponseWriter, r *http.Request) {
	if !m.validateAuth(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		m.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req struct {
		Description string `json:"description"`
		Public      bool   `json:"public"`
		Files       map[string]struct {
			Content string `json:"content"`
		} `json:"files"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		m.writeError(w, http.StatusBadRequest, "Problems parsing JSON")
		return
	}

	m.mu.Lock()
	if m.FailGists || len(req.Files) == 0 {
		m.mu.Unlock()
		m.writeError(w, http.StatusUnprocessableEntity, "Validation Failed")
		return
	}
	gist := &MockGist{
		ID:          fmt.Sprintf("gist%d", m.NextGistID),
		Description: req.Description,
		Public:      req.Public,
		Files:       make(map[string]string, len(req.Files)),
	}
	m.NextGistID++
	for name, f := range req.Files {
		gist.Files[name] = f.Content
	}
	m.Gists = append(m.Gists, gist)
	user := m.AuthenticatedUser
	m.mu.Unlock()

	files := make(map[string]any, len(gist.Files))
	for name := range gist.Files {
		files[name] = map[string]any{
			"filename": name,
			"raw_url":  m.URL + "/raw/" + gist.ID + "/" + name,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{
		"id":          gist.ID,
		"html_url":    m.URL + "/gist/" + gist.ID,
		"description": gist.Description,
		"public":      gist.Public,
		"owner":       map[string]any{"login": user},
		"files":       files,
	})
}

// handleGraphQL answers the viewer query.
func (m *MockGitHubServer) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	if !m.validateAuth(w, r) {
		return
	}

	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		m.writeGraphQLError(w, "Invalid JSON: "+err.Error())
		return
	}
	if !strings.Contains(req.Query, "viewer") {
		m.writeGraphQLError(w, "unsupported query")
		return
	}

	m.mu.RLock()
	user := m.AuthenticatedUser
	m.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"data": map[string]any{"viewer": map[string]any{"login": user}},
	})
}

// writeError writes a GitHub-style error response.
func (m *MockGitHubServer) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"message":           message,
		"documentation_url": "https://docs.github.com/rest",
	})
}

// writeGraphQLError writes a GraphQL error response.
func (m *MockGitHubServer) writeGraphQLError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"errors": []map[string]any{{"message": message}},
	})
}
