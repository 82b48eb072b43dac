package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-chi-calculator/internal/handlers"
)

func ExecuteRequest(req *http.Request, handler http.Handler) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// Get issues a GET for path against handler.
func Get(handler http.Handler, path string) *httptest.ResponseRecorder {
	return ExecuteRequest(httptest.NewRequest(http.MethodGet, path, nil), handler)
}

func CheckResponseCode(t testing.TB, expected, actual int) {
	t.Helper()
	if expected != actual {
		t.Fatalf("expected status %d, got %d", expected, actual)
	}
}

func DecodeJSONBody(t testing.TB, body io.Reader, dst any) {
	t.Helper()
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		t.Fatalf("decoding JSON response: %v", err)
	}
}

// Envelope is handlers.Response with data kept raw so callers can decode
// it into whatever shape they expect.
type Envelope struct {
	handlers.Response
	Data json.RawMessage `json:"data,omitempty"`
}

// DecodeEnvelope decodes a response envelope and checks that errors and
// data are never both present.
func DecodeEnvelope(t testing.TB, body io.Reader) Envelope {
	t.Helper()
	var env Envelope
	DecodeJSONBody(t, body, &env)
	if len(env.Errors) > 0 && len(env.Data) > 0 {
		t.Fatalf("envelope carries both errors %v and data %s", env.Errors, env.Data)
	}
	return env
}
