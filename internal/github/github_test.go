package github

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

type gistRequest struct {
	Description string `json:"description"`
	Public      bool   `json:"public"`
	Files       map[string]struct {
		Filename string `json:"filename"`
		Content  string `json:"content"`
	} `json:"files"`
}

// mockGitHubServer answers the GraphQL viewer query and gist creation.
func mockGitHubServer(t *testing.T, login string, gistStatus int, got *gistRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/graphql":
			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{"viewer": map[string]any{"login": login}},
			})
		case r.Method == http.MethodPost && r.URL.Path == "/api/v3/gists":
			body, _ := io.ReadAll(r.Body)
			if got != nil {
				if err := json.Unmarshal(body, got); err != nil {
					t.Errorf("failed to decode gist request: %v", err)
				}
			}
			w.WriteHeader(gistStatus)
			if gistStatus != http.StatusCreated {
				json.NewEncoder(w).Encode(map[string]any{"message": "Validation Failed"})
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"id":       "aa5a315d61ae9438b18d",
				"html_url": "https://gist.github.com/aa5a315d61ae9438b18d",
				"files": map[string]any{
					"steps.html": map[string]any{
						"filename": "steps.html",
						"raw_url":  "https://gist.githubusercontent.com/raw/steps.html",
					},
				},
			})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPublish(t *testing.T) {
	var got gistRequest
	srv := mockGitHubServer(t, "octocat", http.StatusCreated, &got)
	t.Setenv("GITHUB_API_URL", srv.URL)

	p := New()
	if err := p.Connect(context.Background(), "test-token"); err != nil {
		t.Fatalf("Connect() returned unexpected error: %v", err)
	}
	if p.Login() != "octocat" {
		t.Errorf("Login() = %q, want octocat", p.Login())
	}

	res, err := p.Publish(context.Background(), Gist{
		Filename:    "steps.html",
		Description: "Assembly: MyProject.Steps, version: 1.2.0.0",
		Content:     "<html></html>\n",
	})
	if err != nil {
		t.Fatalf("Publish() returned unexpected error: %v", err)
	}

	if res.ID != "aa5a315d61ae9438b18d" {
		t.Errorf("ID = %q", res.ID)
	}
	if res.URL != "https://gist.github.com/aa5a315d61ae9438b18d" {
		t.Errorf("URL = %q", res.URL)
	}
	if res.RawURL != "https://gist.githubusercontent.com/raw/steps.html" {
		t.Errorf("RawURL = %q", res.RawURL)
	}
	if res.Owner != "octocat" {
		t.Errorf("Owner = %q, want octocat", res.Owner)
	}

	if got.Public {
		t.Error("gist should be secret unless Public is set")
	}
	if got.Description != "Assembly: MyProject.Steps, version: 1.2.0.0" {
		t.Errorf("description = %q", got.Description)
	}
	if f, ok := got.Files["steps.html"]; !ok || f.Content != "<html></html>\n" {
		t.Errorf("files = %+v", got.Files)
	}
}

func TestPublish_APIError(t *testing.T) {
	srv := mockGitHubServer(t, "octocat", http.StatusUnprocessableEntity, nil)
	t.Setenv("GITHUB_API_URL", srv.URL)

	p := New()
	if err := p.Connect(context.Background(), "test-token"); err != nil {
		t.Fatalf("Connect() returned unexpected error: %v", err)
	}

	_, err := p.Publish(context.Background(), Gist{Filename: "steps.html", Content: "x"})
	if err == nil {
		t.Fatal("Publish() expected error")
	}
}

func TestConnect_BadToken(t *testing.T) {
	srv := mockGitHubServer(t, "octocat", http.StatusCreated, nil)
	t.Setenv("GITHUB_API_URL", srv.URL)

	if err := New().Connect(context.Background(), "wrong-token"); err == nil {
		t.Error("Connect() expected error for rejected token")
	}
}

func TestConnect_EmptyToken(t *testing.T) {
	if err := New().Connect(context.Background(), ""); err == nil {
		t.Error("Connect() expected error for empty token")
	}
}

func TestPublishNotConnected(t *testing.T) {
	_, err := New().Publish(context.Background(), Gist{Filename: "steps.html"})
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("Publish() error = %v, want ErrNotConnected", err)
	}
}

func TestName(t *testing.T) {
	if New().Name() != "github" {
		t.Errorf("Name() = %s, want github", New().Name())
	}
}
