package testkit

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// RunFile runs every scenario in path, in order, as subtests of t. tokens
// maps the scenarios' "as" names to bearer tokens.
func RunFile(t *testing.T, handler http.Handler, path string, tokens map[string]string) {
	t.Helper()

	scenarios, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			Run(t, handler, s, tokens)
		})
	}
}

// Run fires one scenario and asserts on the response.
func Run(t *testing.T, handler http.Handler, s Scenario, tokens map[string]string) {
	t.Helper()

	var body io.Reader
	if len(s.Body) > 0 {
		body = bytes.NewReader(s.Body)
	}
	method := strings.ToUpper(s.Method)
	if method == "" {
		method = http.MethodGet
	}

	req := httptest.NewRequest(method, s.URL, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if s.As != "" {
		token, ok := tokens[s.As]
		if !ok {
			t.Fatalf("[%s] no token for %q", s.Name, s.As)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range s.Headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	AssertStatusCode(t, s, rec.Code, rec.Body.Bytes())
	AssertJSONSubset(t, s, rec.Body.Bytes())
}
