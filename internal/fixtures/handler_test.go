package fixtures

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/samvad-hq/simplest-networking/pkg/mocktransport"
)

func TestKey(t *testing.T) {
	cases := []struct {
		method string
		raw    string
		want   string
	}{
		{"get", "https://api.myapp.com/users", "GET /users"},
		{"POST", "http://localhost:8080/user?id=1", "POST /user?id=1"},
		{"", "https://api.myapp.com", "GET /"},
	}
	for _, tc := range cases {
		u, _ := url.Parse(tc.raw)
		if got := Key(tc.method, u); got != tc.want {
			t.Errorf("Key(%s, %s) = %q want %q", tc.method, tc.raw, got, tc.want)
		}
	}
}

func TestLoadFileAndServe(t *testing.T) {
	file := filepath.Join(t.TempDir(), "fixtures.yaml")
	content := `
fixtures:
  - method: GET
    path: /users
    body: '[{"name":"SA"}]'
  - method: POST
    path: /user
    query: id=1
    status: 201
    headers:
      X-Fixture: detail
    body: '{"name":"SA"}'
`
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixtures file: %v", err)
	}

	fixtures, err := LoadFile(file)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(fixtures) != 2 {
		t.Fatalf("expected 2 fixtures, got %d", len(fixtures))
	}

	store, _ := NewStore("memory", "")
	if err := Seed(store, fixtures); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	client := mocktransport.NewClient(mocktransport.New(Handler(store)), time.Second)

	resp, err := client.Get(context.Background(), "https://anywhere.example/users", nil)
	if err != nil {
		t.Fatalf("Get users: %v", err)
	}
	if resp.StatusCode() != http.StatusOK || string(resp.Body()) != `[{"name":"SA"}]` {
		t.Fatalf("users reply %d %s", resp.StatusCode(), resp.Body())
	}

	resp, err = client.Execute(context.Background(), http.MethodPost, "https://api.myapp.com/user?id=1", nil, []byte(`{}`))
	if err != nil {
		t.Fatalf("Execute detail: %v", err)
	}
	if resp.StatusCode() != http.StatusCreated || resp.Header().Get("X-Fixture") != "detail" {
		t.Fatalf("detail reply %d %v", resp.StatusCode(), resp.Header())
	}

	resp, err = client.Get(context.Background(), "https://api.myapp.com/missing", nil)
	if err != nil {
		t.Fatalf("Get missing: %v", err)
	}
	if resp.StatusCode() != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown fixture, got %d", resp.StatusCode())
	}
}

func TestLoadFileRejectsRelativePath(t *testing.T) {
	file := filepath.Join(t.TempDir(), "fixtures.json")
	if err := os.WriteFile(file, []byte(`{"fixtures":[{"method":"GET","path":"users"}]}`), 0o644); err != nil {
		t.Fatalf("write fixtures file: %v", err)
	}
	if _, err := LoadFile(file); err == nil {
		t.Fatalf("expected error for relative fixture path")
	}
}
