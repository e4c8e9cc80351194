package api

import (
	"context"
	"fmt"

	"github.com/samvad-hq/simplest-networking/pkg/endpoint"
	"github.com/samvad-hq/simplest-networking/pkg/fetch"
	"github.com/samvad-hq/simplest-networking/pkg/request"
)

// Package api declares the users endpoints of api.myapp.com.

const (
	EndpointUsers      = "users"
	EndpointUserDetail = "user_detail"

	HeaderAccessToken = "accessToken"
)

// DetailRequestBody is the payload for a user detail update.
type DetailRequestBody struct {
	Name string `json:"name"`
}

// DetailResponse is a single user as returned by the API.
type DetailResponse struct {
	Name string `json:"name"`
}

// UsersEndpoint is GET /users.
func UsersEndpoint(opts ...endpoint.Option) endpoint.Endpoint {
	return endpoint.New("/users", opts...)
}

// UserDetailEndpoint is /user?id={id}.
func UserDetailEndpoint(id string, opts ...endpoint.Option) endpoint.Endpoint {
	all := append(append([]endpoint.Option(nil), opts...), endpoint.WithQueryParam("id", id))
	return endpoint.New("/user", all...)
}

// UsersRequest lists users.
func UsersRequest(opts ...endpoint.Option) request.Request {
	return request.New(UsersEndpoint(opts...))
}

// UserDetailRequest posts body for user id, authenticated with accessToken.
func UserDetailRequest(id string, body DetailRequestBody, accessToken string, opts ...endpoint.Option) request.Request {
	return userDetailRequest(UserDetailEndpoint(id, opts...), body, accessToken)
}

func userDetailRequest(ep endpoint.Endpoint, body DetailRequestBody, accessToken string) request.Request {
	return request.New(ep).
		WithMethod(request.MethodPost).
		WithBody(body).
		WithHeaders(map[string]string{HeaderAccessToken: accessToken})
}

// Service calls the users API through a fetch client.
type Service struct {
	client   *fetch.Client
	catalog  *endpoint.Catalog
	baseOpts []endpoint.Option
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithCatalog resolves endpoints from cat when it declares them.
func WithCatalog(cat *endpoint.Catalog) ServiceOption {
	return func(s *Service) { s.catalog = cat }
}

// WithEndpointOptions applies opts (scheme, host) to every endpoint.
func WithEndpointOptions(opts ...endpoint.Option) ServiceOption {
	return func(s *Service) { s.baseOpts = append(s.baseOpts, opts...) }
}

// NewService builds a users service.
func NewService(client *fetch.Client, opts ...ServiceOption) *Service {
	if client == nil {
		client = fetch.NewClient(nil, nil)
	}
	s := &Service{client: client}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// ListUsers fetches GET /users.
func (s *Service) ListUsers(ctx context.Context) ([]DetailResponse, error) {
	ep, err := s.endpoint(EndpointUsers, nil, UsersEndpoint)
	if err != nil {
		return nil, err
	}
	users, err := fetch.Fetch[[]DetailResponse](ctx, s.client, request.New(ep))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// UpdateUserDetail posts body for user id.
func (s *Service) UpdateUserDetail(ctx context.Context, id string, body DetailRequestBody, accessToken string) (DetailResponse, error) {
	ep, err := s.endpoint(EndpointUserDetail, map[string]string{"id": id}, func(opts ...endpoint.Option) endpoint.Endpoint {
		return UserDetailEndpoint(id, opts...)
	})
	if err != nil {
		return DetailResponse{}, err
	}
	detail, err := fetch.Fetch[DetailResponse](ctx, s.client, userDetailRequest(ep, body, accessToken))
	if err != nil {
		return DetailResponse{}, fmt.Errorf("update user %s: %w", id, err)
	}
	return detail, nil
}

// UserDetailAsync is the single-resolution variant of UpdateUserDetail.
func (s *Service) UserDetailAsync(ctx context.Context, id string, body DetailRequestBody, accessToken string) <-chan fetch.Result[DetailResponse] {
	ch := make(chan fetch.Result[DetailResponse], 1)
	go func() {
		defer close(ch)
		v, err := s.UpdateUserDetail(ctx, id, body, accessToken)
		ch <- fetch.Result[DetailResponse]{Value: v, Err: err}
	}()
	return ch
}

// ListUsersAsync is the single-resolution variant of ListUsers.
func (s *Service) ListUsersAsync(ctx context.Context) <-chan fetch.Result[[]DetailResponse] {
	ch := make(chan fetch.Result[[]DetailResponse], 1)
	go func() {
		defer close(ch)
		v, err := s.ListUsers(ctx)
		ch <- fetch.Result[[]DetailResponse]{Value: v, Err: err}
	}()
	return ch
}

func (s *Service) endpoint(name string, values map[string]string, builtin func(...endpoint.Option) endpoint.Endpoint) (endpoint.Endpoint, error) {
	if s.catalog != nil && s.catalog.Has(name) {
		ep, err := s.catalog.Endpoint(name, values, s.baseOpts...)
		if err != nil {
			return endpoint.Endpoint{}, fmt.Errorf("resolve endpoint %s: %w", name, err)
		}
		return ep, nil
	}
	return builtin(s.baseOpts...), nil
}
