package testsupport

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"
)

// APIPrefix is the path prefix the fake API serves under, matching the real
// deployment's "/api".
const APIPrefix = "/api"

// RecordedRequest is a request received by a FakeAPI.
type RecordedRequest struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	RequestID     string
	ContentType   string
	Body          []byte
}

// FakeAPI is an httptest server with a gorilla/mux router standing in for
// the portfolio API. Routes are registered relative to APIPrefix.
type FakeAPI struct {
	server *httptest.Server
	router *mux.Router
	api    *mux.Router

	mu       sync.Mutex
	requests []RecordedRequest
}

func NewFakeAPI(t testing.TB) *FakeAPI {
	t.Helper()

	f := &FakeAPI{router: mux.NewRouter()}
	f.router.Use(f.record)
	f.api = f.router.PathPrefix(APIPrefix).Subrouter()
	f.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusNotFound, ErrorBody(http.StatusNotFound, "HTTP_404", "The requested URL was not found on the server."))
	})

	f.server = httptest.NewServer(f.router)
	t.Cleanup(f.server.Close)
	return f
}

// BaseURL is the value to configure as the client base URL.
func (f *FakeAPI) BaseURL() string {
	return f.server.URL + APIPrefix
}

// Handle registers h for method and a mux path template such as "/skills/{id}".
func (f *FakeAPI) Handle(method, path string, h http.HandlerFunc) {
	f.api.HandleFunc(path, h).Methods(method)
}

// Reply registers a fixed response.
func (f *FakeAPI) Reply(method, path string, status int, body any) {
	f.Handle(method, path, func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, status, body)
	})
}

// ReplyData registers a 200 response wrapping data in the success envelope.
func (f *FakeAPI) ReplyData(method, path string, data any) {
	f.Reply(method, path, http.StatusOK, Envelope(data))
}

// ReplyFixture serves the raw contents of a fixture file.
func (f *FakeAPI) ReplyFixture(t testing.TB, method, path string, status int, fixture string) {
	t.Helper()
	data := LoadFixture(t, fixture)
	f.Handle(method, path, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write(data)
	})
}

// Calls counts the received requests matching method and the concrete path
// (without APIPrefix), e.g. Calls("GET", "/skills/").
func (f *FakeAPI) Calls(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, r := range f.requests {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (f *FakeAPI) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RecordedRequest(nil), f.requests...)
}

// LastRequest returns the most recent request to method and path.
func (f *FakeAPI) LastRequest(method, path string) (RecordedRequest, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := len(f.requests) - 1; i >= 0; i-- {
		r := f.requests[i]
		if r.Method == method && r.Path == path {
			return r, true
		}
	}
	return RecordedRequest{}, false
}

func (f *FakeAPI) Reset() {
	f.mu.Lock()
	f.requests = nil
	f.mu.Unlock()
}

func (f *FakeAPI) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		f.mu.Lock()
		f.requests = append(f.requests, RecordedRequest{
			Method:        r.Method,
			Path:          strings.TrimPrefix(r.URL.Path, APIPrefix),
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
			ContentType:   r.Header.Get("Content-Type"),
			Body:          body,
		})
		f.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

// WriteJSON writes v as a JSON response.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Envelope wraps data the way successful API responses are wrapped.
func Envelope(data any) map[string]any {
	return map[string]any{
		"success": true,
		"data":    data,
		"message": "Operation completed successfully",
	}
}

// ErrorBody builds the structured error payload of the API.
func ErrorBody(status int, code, message string) map[string]any {
	return map[string]any{
		"error": map[string]any{
			"message":     message,
			"code":        code,
			"status_code": status,
		},
	}
}

// ExpiredTokenBody is the payload the API returns for an expired JWT.
func ExpiredTokenBody() map[string]any {
	return map[string]any{
		"success": false,
		"error":   "Token has expired",
		"message": "Please log in again",
	}
}

// BearerToken extracts the token of an Authorization header.
func BearerToken(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}
