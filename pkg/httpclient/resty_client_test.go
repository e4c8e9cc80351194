package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRestyClientGetSendsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if got := r.Header.Get("X-Test"); got != "1" {
			t.Errorf("missing header, got %q", got)
		}
		w.Header().Set("X-Reply", "ok")
		_, _ = io.WriteString(w, `[{"name":"SA"}]`)
	}))
	defer srv.Close()

	client := NewRestyClient(2 * time.Second)
	resp, err := client.Get(context.Background(), srv.URL+"/users", map[string]string{"X-Test": "1"})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.StatusCode() != http.StatusOK || !resp.IsSuccess() {
		t.Fatalf("status = %d", resp.StatusCode())
	}
	if string(resp.Body()) != `[{"name":"SA"}]` {
		t.Fatalf("body = %s", resp.Body())
	}
	if resp.Header().Get("X-Reply") != "ok" {
		t.Fatalf("response header missing")
	}
}

func TestRestyClientExecutePostsBody(t *testing.T) {
	var gotBody, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewRestyClient(0)
	resp, err := client.Execute(context.Background(), http.MethodPost, srv.URL+"/user?id=1",
		map[string]string{"Content-Type": "application/json"}, []byte(`{"name":"SA"}`))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if gotMethod != http.MethodPost || gotBody != `{"name":"SA"}` {
		t.Fatalf("server saw %s %q", gotMethod, gotBody)
	}
	if resp.IsSuccess() || resp.StatusCode() != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode())
	}
}

type recordingTransport struct {
	hits int
}

func (r *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r.hits++
	return &http.Response{
		StatusCode: http.StatusNoContent,
		Header:     make(http.Header),
		Body:       http.NoBody,
		Request:    req,
	}, nil
}

func TestWithTransportOverridesNetwork(t *testing.T) {
	rt := &recordingTransport{}
	client := NewRestyClient(time.Second, WithTransport(rt))
	resp, err := client.Get(context.Background(), "https://api.myapp.com/users", nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rt.hits != 1 || resp.StatusCode() != http.StatusNoContent {
		t.Fatalf("transport hits=%d status=%d", rt.hits, resp.StatusCode())
	}
}
