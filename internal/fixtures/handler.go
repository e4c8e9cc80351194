package fixtures

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/samvad-hq/simplest-networking/pkg/mocktransport"
	"gopkg.in/yaml.v3"
)

// Fixture is a canned reply declared in a seed file.
type Fixture struct {
	Method  string            `json:"method" yaml:"method"`
	Path    string            `json:"path" yaml:"path"`
	Query   string            `json:"query" yaml:"query"`
	Status  int               `json:"status" yaml:"status"`
	Headers map[string]string `json:"headers" yaml:"headers"`
	Body    string            `json:"body" yaml:"body"`
}

type seedFile struct {
	Fixtures []Fixture `json:"fixtures" yaml:"fixtures"`
}

// Key returns the store key the fixture answers.
func (f Fixture) Key() string {
	return Key(f.Method, &url.URL{Path: f.Path, RawQuery: f.Query})
}

// Reply converts the fixture into a mock reply.
func (f Fixture) Reply() mocktransport.Reply {
	header := make(http.Header, len(f.Headers)+1)
	for k, v := range f.Headers {
		header.Set(k, v)
	}
	if header.Get("Content-Type") == "" {
		header.Set("Content-Type", "application/json")
	}
	return mocktransport.Reply{StatusCode: f.Status, Header: header, Body: []byte(f.Body)}
}

// LoadFile reads fixtures from a YAML or JSON seed file.
func LoadFile(path string) ([]Fixture, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("fixtures file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixtures file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read fixtures file: %w", err)
	}

	var sf seedFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(raw, &sf)
	default:
		err = yaml.Unmarshal(raw, &sf)
	}
	if err != nil {
		return nil, fmt.Errorf("decode fixtures file: %w", err)
	}

	for i, f := range sf.Fixtures {
		f.Path = strings.TrimSpace(f.Path)
		if !strings.HasPrefix(f.Path, "/") {
			return nil, fmt.Errorf("fixtures[%d]: path %q must start with /", i, f.Path)
		}
		sf.Fixtures[i] = f
	}
	return sf.Fixtures, nil
}

// Seed stores every fixture, later entries replacing earlier ones with the same key.
func Seed(store Store, fixtures []Fixture) error {
	if store == nil {
		return errors.New("fixture store is nil")
	}
	for _, f := range fixtures {
		if err := store.Put(f.Key(), f.Reply()); err != nil {
			return fmt.Errorf("seed %s: %w", f.Key(), err)
		}
	}
	return nil
}

// Handler answers requests from store. Unknown requests get a 404 JSON reply.
func Handler(store Store) mocktransport.Handler {
	return func(req *http.Request) (mocktransport.Reply, error) {
		key := Key(req.Method, req.URL)
		reply, ok, err := store.Lookup(key)
		if err != nil {
			return mocktransport.Reply{}, fmt.Errorf("lookup fixture %s: %w", key, err)
		}
		if !ok {
			body, _ := json.Marshal(map[string]string{"error": "no fixture for " + key})
			return mocktransport.Reply{
				StatusCode: http.StatusNotFound,
				Header:     http.Header{"Content-Type": []string{"application/json"}},
				Body:       body,
			}, nil
		}
		return reply, nil
	}
}
