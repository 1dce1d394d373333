package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHandler struct {
	name string
}

func (s stubHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Handler", s.name)
	w.Header().Set("X-User-ID", chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusTeapot)
}

type h struct{}

func (h) GetUsers(w http.ResponseWriter, r *http.Request) {
	stubHandler{name: "get_users"}.ServeHTTP(w, r)
}
func (h) GetUser(w http.ResponseWriter, r *http.Request) {
	stubHandler{name: "get_user"}.ServeHTTP(w, r)
}
func (h) CreateUser(w http.ResponseWriter, r *http.Request) {
	stubHandler{name: "create_user"}.ServeHTTP(w, r)
}
func (h) DeleteUser(w http.ResponseWriter, r *http.Request) {
	stubHandler{name: "delete_user"}.ServeHTTP(w, r)
}
func (h) VerifyPassword(w http.ResponseWriter, r *http.Request) {
	stubHandler{name: "verify_password"}.ServeHTTP(w, r)
}
func (h) Ping(w http.ResponseWriter, r *http.Request) {
	stubHandler{name: "ping"}.ServeHTTP(w, r)
}

type panicHandler struct {
	h
}

func (panicHandler) Ping(http.ResponseWriter, *http.Request) {
	panic("boom")
}

func TestCustomRouter_Route_happyTests(t *testing.T) {
	r := New(nil)
	r.SetRouter(h{})
	srv := httptest.NewServer(r.GetRouter())
	defer srv.Close()

	tests := []struct {
		method   string
		path     string
		wantName string
		wantID   string
		wantCode int
	}{
		{http.MethodGet, "/users", "get_users", "", http.StatusTeapot},
		{http.MethodPost, "/users", "create_user", "", http.StatusTeapot},
		{http.MethodGet, "/users/42", "get_user", "42", http.StatusTeapot},
		{http.MethodDelete, "/users/42", "delete_user", "42", http.StatusTeapot},
		{http.MethodPost, "/users/abc-def/verify", "verify_password", "abc-def", http.StatusTeapot},
		{http.MethodGet, "/ping", "ping", "", http.StatusTeapot},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, srv.URL+tt.path, http.NoBody)
			require.NoError(t, err)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			err = resp.Body.Close()
			require.NoError(t, err)

			assert.Equal(t, tt.wantCode, resp.StatusCode)
			assert.Equal(t, tt.wantName, resp.Header.Get("X-Handler"))
			assert.Equal(t, tt.wantID, resp.Header.Get("X-User-ID"))
			assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
		})
	}
}

func TestCustomRouter_Route_wrong_routes(t *testing.T) {
	r := New(nil)
	r.SetRouter(h{})
	srv := httptest.NewServer(r.GetRouter())
	defer srv.Close()

	tests := []struct {
		method   string
		path     string
		wantCode int
	}{
		{http.MethodGet, "/", http.StatusNotFound},
		{http.MethodGet, "/user", http.StatusNotFound},
		{http.MethodGet, "/users/42/unknown", http.StatusNotFound},
		{http.MethodPost, "/users/42/verify/extra", http.StatusNotFound},
		{http.MethodGet, "/ping/", http.StatusNotFound},

		{http.MethodPut, "/users", http.StatusMethodNotAllowed},
		{http.MethodDelete, "/users", http.StatusMethodNotAllowed},
		{http.MethodPatch, "/users/42", http.StatusMethodNotAllowed},
		{http.MethodPost, "/users/42", http.StatusMethodNotAllowed},
		{http.MethodGet, "/users/42/verify", http.StatusMethodNotAllowed},
		{http.MethodPost, "/ping?x=true", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, srv.URL+tt.path, http.NoBody)
			require.NoError(t, err)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			err = resp.Body.Close()
			require.NoError(t, err)

			assert.Equal(t, tt.wantCode, resp.StatusCode)
		})
	}
}

func TestCustomRouter_content_type(t *testing.T) {
	r := New(nil)
	r.SetRouter(h{})
	srv := httptest.NewServer(r.GetRouter())
	defer srv.Close()

	tests := []struct {
		name        string
		path        string
		contentType string
		wantCode    int
	}{
		{"create json", "/users", "application/json", http.StatusTeapot},
		{"create json with charset", "/users", "application/json; charset=utf-8", http.StatusTeapot},
		{"create text", "/users", "text/plain", http.StatusUnsupportedMediaType},
		{"verify json", "/users/1/verify", "application/json", http.StatusTeapot},
		{"verify form", "/users/1/verify", "application/x-www-form-urlencoded",
			http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+tt.path, tt.contentType,
				strings.NewReader(`{"password":"test"}`))
			require.NoError(t, err)
			require.NoError(t, resp.Body.Close())

			assert.Equal(t, tt.wantCode, resp.StatusCode)
		})
	}
}

func TestCustomRouter_recovers(t *testing.T) {
	r := New(nil)
	r.SetRouter(panicHandler{})
	srv := httptest.NewServer(r.GetRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/ping")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
