package endpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Definition is a named endpoint declared in a catalog file.
type Definition struct {
	Name   string   `json:"name" yaml:"name"`
	Scheme string   `json:"scheme" yaml:"scheme"`
	Host   string   `json:"host" yaml:"host"`
	Path   string   `json:"path" yaml:"path"`
	Query  []string `json:"query" yaml:"query"`
}

type catalogFile struct {
	Endpoints []Definition `json:"endpoints" yaml:"endpoints"`
}

// Catalog resolves named endpoint definitions loaded from YAML or JSON.
type Catalog struct {
	mu    sync.RWMutex
	defs  []Definition
	index map[string]Definition
}

// LoadCatalog reads an endpoint catalog from path.
func LoadCatalog(path string) (*Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("endpoints file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open endpoints file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read endpoints file: %w", err)
	}

	cf, err := parseCatalog(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	return NewCatalog(cf.Endpoints...)
}

// NewCatalog validates defs and indexes them by name.
func NewCatalog(defs ...Definition) (*Catalog, error) {
	if len(defs) == 0 {
		return nil, errors.New("endpoints catalog contains no entries")
	}

	c := &Catalog{
		defs:  make([]Definition, len(defs)),
		index: make(map[string]Definition, len(defs)),
	}
	for i := range defs {
		d := sanitizeDefinition(defs[i])
		if err := validateDefinition(d); err != nil {
			return nil, fmt.Errorf("endpoints[%d]: %w", i, err)
		}
		if _, exists := c.index[d.Name]; exists {
			return nil, fmt.Errorf("duplicate endpoint name %q", d.Name)
		}
		c.defs[i] = d
		c.index[d.Name] = d
	}
	return c, nil
}

func parseCatalog(data []byte, ext string) (catalogFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var cf catalogFile
		if err := d.fn(data, &cf); err == nil {
			return cf, nil
		}
	}

	return catalogFile{}, errors.New("endpoints file format not recognized (expected YAML or JSON)")
}

func sanitizeDefinition(d Definition) Definition {
	d.Name = strings.TrimSpace(d.Name)
	d.Scheme = strings.TrimSpace(d.Scheme)
	d.Host = strings.TrimSpace(d.Host)
	d.Path = strings.TrimSpace(d.Path)
	if len(d.Query) > 0 {
		q := make([]string, 0, len(d.Query))
		for _, name := range d.Query {
			if name = strings.TrimSpace(name); name != "" {
				q = append(q, name)
			}
		}
		d.Query = q
	}
	return d
}

func validateDefinition(d Definition) error {
	if d.Name == "" {
		return errors.New("name is required")
	}
	if d.Path == "" {
		return fmt.Errorf("path is required for endpoint %q", d.Name)
	}
	if !strings.HasPrefix(d.Path, "/") {
		return fmt.Errorf("path for endpoint %q must start with /", d.Name)
	}
	return nil
}

// Names returns the catalog entry names in declaration order.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0, len(c.defs))
	for _, d := range c.defs {
		out = append(out, d.Name)
	}
	return out
}

// Has reports whether name is declared.
func (c *Catalog) Has(name string) bool {
	if c == nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.index[strings.TrimSpace(name)]
	return ok
}

// Endpoint builds the named endpoint, filling declared query names from values.
// opts are applied first; scheme and host declared on the entry take precedence.
func (c *Catalog) Endpoint(name string, values map[string]string, opts ...Option) (Endpoint, error) {
	if c == nil {
		return Endpoint{}, errors.New("endpoint catalog is nil")
	}

	c.mu.RLock()
	d, ok := c.index[strings.TrimSpace(name)]
	c.mu.RUnlock()
	if !ok {
		return Endpoint{}, fmt.Errorf("no endpoint named %q", name)
	}

	items := make([]QueryItem, 0, len(d.Query))
	for _, q := range d.Query {
		v, ok := values[q]
		if !ok {
			return Endpoint{}, fmt.Errorf("endpoint %q: missing value for query %q", d.Name, q)
		}
		items = append(items, QueryItem{Name: q, Value: v})
	}

	all := append([]Option(nil), opts...)
	if d.Scheme != "" {
		all = append(all, WithScheme(d.Scheme))
	}
	if d.Host != "" {
		all = append(all, WithHost(d.Host))
	}
	all = append(all, WithQuery(items...))
	return New(d.Path, all...), nil
}
