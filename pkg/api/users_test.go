package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"reflect"
	"testing"
	"time"

	"github.com/samvad-hq/simplest-networking/pkg/endpoint"
	"github.com/samvad-hq/simplest-networking/pkg/fetch"
	"github.com/samvad-hq/simplest-networking/pkg/mocktransport"
	"github.com/samvad-hq/simplest-networking/pkg/request"
)

func TestUserDetailRequest(t *testing.T) {
	req := UserDetailRequest("1", DetailRequestBody{Name: "SA"}, "123")
	if err := req.Err(); err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := req.URL().String(); got != "https://api.myapp.com/user?id=1" {
		t.Fatalf("url = %q", got)
	}
	if req.Method() != request.MethodPost {
		t.Fatalf("method = %s", req.Method())
	}
	if string(req.Body()) != `{"name":"SA"}` {
		t.Fatalf("body = %s", req.Body())
	}
	want := map[string]string{"Content-Type": "application/json", "Accesstoken": "123"}
	if got := req.Headers(); !reflect.DeepEqual(got, want) {
		t.Fatalf("headers = %v", got)
	}
}

func TestUsersRequest(t *testing.T) {
	req := UsersRequest(endpoint.WithHost("staging.myapp.com"))
	if got := req.URL().String(); got != "https://staging.myapp.com/users" {
		t.Fatalf("url = %q", got)
	}
	if req.HasMethod() || req.Body() != nil {
		t.Fatalf("users request should be a bare GET")
	}
}

func newService(h mocktransport.Handler, opts ...ServiceOption) *Service {
	tr := mocktransport.New(h)
	return NewService(fetch.NewClient(mocktransport.NewClient(tr, time.Second), nil), opts...)
}

func TestServiceListUsers(t *testing.T) {
	svc := newService(func(req *http.Request) (mocktransport.Reply, error) {
		if req.Method != http.MethodGet || req.URL.Path != "/users" {
			t.Errorf("unexpected request %s %s", req.Method, req.URL)
		}
		return mocktransport.JSONReply(http.StatusOK, `[{"name":"SA"}]`), nil
	})

	users, err := svc.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if !reflect.DeepEqual(users, []DetailResponse{{Name: "SA"}}) {
		t.Fatalf("users = %+v", users)
	}
}

func TestServiceUpdateUserDetail(t *testing.T) {
	svc := newService(func(req *http.Request) (mocktransport.Reply, error) {
		body, _ := io.ReadAll(req.Body)
		if req.Method != http.MethodPost || req.URL.Query().Get("id") != "7" {
			t.Errorf("unexpected request %s %s", req.Method, req.URL)
		}
		if req.Header.Get(HeaderAccessToken) != "tok" {
			t.Errorf("missing access token")
		}
		if string(body) != `{"name":"SA"}` {
			t.Errorf("body = %s", body)
		}
		return mocktransport.JSONReply(http.StatusOK, `{"name":"SA"}`), nil
	}, WithEndpointOptions(endpoint.WithScheme("http"), endpoint.WithHost("localhost:8080")))

	res := <-svc.UserDetailAsync(context.Background(), "7", DetailRequestBody{Name: "SA"}, "tok")
	if res.Err != nil {
		t.Fatalf("UserDetailAsync: %v", res.Err)
	}
	if res.Value.Name != "SA" {
		t.Fatalf("detail = %+v", res.Value)
	}
}

func TestServiceUsesCatalog(t *testing.T) {
	cat, err := endpoint.NewCatalog(endpoint.Definition{Name: EndpointUsers, Path: "/v2/users"})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	var gotPath string
	svc := newService(func(req *http.Request) (mocktransport.Reply, error) {
		gotPath = req.URL.Path
		return mocktransport.JSONReply(http.StatusOK, `[]`), nil
	}, WithCatalog(cat))

	if _, err := svc.ListUsers(context.Background()); err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if gotPath != "/v2/users" {
		t.Fatalf("catalog endpoint not used, path = %s", gotPath)
	}

	// user_detail is not in the catalog and falls back to the built-in endpoint
	svc2 := newService(func(req *http.Request) (mocktransport.Reply, error) {
		gotPath = req.URL.Path
		return mocktransport.JSONReply(http.StatusOK, `{"name":"x"}`), nil
	}, WithCatalog(cat))
	if _, err := svc2.UpdateUserDetail(context.Background(), "1", DetailRequestBody{Name: "x"}, "t"); err != nil {
		t.Fatalf("UpdateUserDetail: %v", err)
	}
	if gotPath != "/user" {
		t.Fatalf("fallback path = %s", gotPath)
	}
}

func TestServiceSurfacesFailures(t *testing.T) {
	svc := newService(mocktransport.Failure(errors.New("offline")))
	res := <-svc.ListUsersAsync(context.Background())
	if !errors.Is(res.Err, fetch.ErrTransport) {
		t.Fatalf("expected transport failure, got %v", res.Err)
	}
	if res.Value != nil {
		t.Fatalf("expected no users on failure")
	}
}
