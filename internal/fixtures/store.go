package fixtures

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/samvad-hq/simplest-networking/pkg/mocktransport"
)

// Package fixtures stores canned replies and serves them through the mock transport.

// Store maps request keys to canned replies.
type Store interface {
	Close() error
	Lookup(key string) (mocktransport.Reply, bool, error)
	Put(key string, reply mocktransport.Reply) error
	Len() (int, error)
}

// NewStore creates the configured fixture backend.
func NewStore(typ, path string) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "memory":
		return newMemoryStore(), nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt fixtures require a path")
		}
		return openBolt(path)
	default:
		return nil, fmt.Errorf("unsupported fixtures type %q", typ)
	}
}

// Key identifies a request by method, path and raw query. Host and scheme are ignored
// so the same fixtures answer any configured API host.
func Key(method string, u *url.URL) string {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodGet
	}
	if u == nil {
		return method + " /"
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		return method + " " + path + "?" + u.RawQuery
	}
	return method + " " + path
}

type noopStore struct{}

func (noopStore) Close() error                                     { return nil }
func (noopStore) Lookup(string) (mocktransport.Reply, bool, error) { return mocktransport.Reply{}, false, nil }
func (noopStore) Put(string, mocktransport.Reply) error            { return nil }
func (noopStore) Len() (int, error)                                { return 0, nil }

type memoryStore struct {
	mu      sync.RWMutex
	replies map[string]mocktransport.Reply
}

func newMemoryStore() *memoryStore {
	return &memoryStore{replies: make(map[string]mocktransport.Reply)}
}

func (m *memoryStore) Close() error { return nil }

func (m *memoryStore) Lookup(key string) (mocktransport.Reply, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.replies[key]
	return r, ok, nil
}

func (m *memoryStore) Put(key string, reply mocktransport.Reply) error {
	m.mu.Lock()
	m.replies[key] = reply
	m.mu.Unlock()
	return nil
}

func (m *memoryStore) Len() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.replies), nil
}
