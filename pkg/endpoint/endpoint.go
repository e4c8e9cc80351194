package endpoint

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Package endpoint builds absolute request URLs from named endpoint descriptors.

const (
	DefaultScheme = "https"
	DefaultHost   = "api.myapp.com"
)

// ErrInvalidEndpoint is wrapped by every error returned from URL and Parse.
var ErrInvalidEndpoint = errors.New("invalid endpoint")

// QueryItem is a single name/value query pair. Order is significant.
type QueryItem struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Endpoint describes the components of a target URL.
type Endpoint struct {
	Scheme string
	Host   string
	Path   string
	Query  []QueryItem
}

// Option customizes an Endpoint built by New.
type Option func(*Endpoint)

// WithScheme overrides the default scheme.
func WithScheme(scheme string) Option {
	return func(e *Endpoint) { e.Scheme = scheme }
}

// WithHost overrides the default host.
func WithHost(host string) Option {
	return func(e *Endpoint) { e.Host = host }
}

// WithQuery appends query items in the given order.
func WithQuery(items ...QueryItem) Option {
	return func(e *Endpoint) { e.Query = append(e.Query, items...) }
}

// WithQueryParam appends a single query item.
func WithQueryParam(name, value string) Option {
	return WithQuery(QueryItem{Name: name, Value: value})
}

// New returns an endpoint for path on the default scheme and host.
func New(path string, opts ...Option) Endpoint {
	e := Endpoint{
		Scheme: DefaultScheme,
		Host:   DefaultHost,
		Path:   path,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&e)
		}
	}
	if len(e.Query) > 0 {
		e.Query = append([]QueryItem(nil), e.Query...)
	}
	return e
}

// URL validates the components and assembles the absolute URL.
func (e Endpoint) URL() (*url.URL, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}

	u := &url.URL{
		Scheme:   strings.ToLower(e.Scheme),
		Host:     e.Host,
		Path:     e.Path,
		RawQuery: encodeQuery(e.Query),
	}

	// url.URL happily stringifies hosts it would refuse to parse.
	parsed, err := url.Parse(u.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	return parsed, nil
}

// String returns the assembled URL, or an empty string when the endpoint is invalid.
func (e Endpoint) String() string {
	u, err := e.URL()
	if err != nil {
		return ""
	}
	return u.String()
}

func (e Endpoint) validate() error {
	if e.Path == "" {
		return fmt.Errorf("%w: path is empty", ErrInvalidEndpoint)
	}
	if !strings.HasPrefix(e.Path, "/") {
		return fmt.Errorf("%w: path %q must start with /", ErrInvalidEndpoint, e.Path)
	}
	if !validScheme(e.Scheme) {
		return fmt.Errorf("%w: scheme %q", ErrInvalidEndpoint, e.Scheme)
	}
	if strings.TrimSpace(e.Host) == "" {
		return fmt.Errorf("%w: host is empty", ErrInvalidEndpoint)
	}
	if strings.ContainsAny(e.Host, " /?#@\t\r\n") {
		return fmt.Errorf("%w: host %q", ErrInvalidEndpoint, e.Host)
	}
	return nil
}

// validScheme follows RFC 3986: ALPHA *( ALPHA / DIGIT / "+" / "-" / "." ).
func validScheme(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case i > 0 && ('0' <= c && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return true
}

// encodeQuery keeps declaration order; url.Values.Encode would sort keys.
func encodeQuery(items []QueryItem) string {
	if len(items) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, item := range items {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(item.Name))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(item.Value))
	}
	return sb.String()
}

// Parse splits an absolute URL back into its endpoint components.
func Parse(raw string) (Endpoint, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Endpoint{}, fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	query, err := decodeQuery(u.RawQuery)
	if err != nil {
		return Endpoint{}, err
	}
	e := Endpoint{
		Scheme: u.Scheme,
		Host:   u.Host,
		Path:   u.Path,
		Query:  query,
	}
	if err := e.validate(); err != nil {
		return Endpoint{}, err
	}
	return e, nil
}

func decodeQuery(raw string) ([]QueryItem, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, "&")
	items := make([]QueryItem, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		name, value, _ := strings.Cut(part, "=")
		n, err := url.QueryUnescape(name)
		if err != nil {
			return nil, fmt.Errorf("%w: query name %q: %v", ErrInvalidEndpoint, name, err)
		}
		v, err := url.QueryUnescape(value)
		if err != nil {
			return nil, fmt.Errorf("%w: query value %q: %v", ErrInvalidEndpoint, value, err)
		}
		items = append(items, QueryItem{Name: n, Value: v})
	}
	return items, nil
}
