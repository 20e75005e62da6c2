package testkit

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) any {
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestDiffJSONIsSubset(t *testing.T) {
	actual := decode(t, `{"status":409,"code":"OutOfStock","data":{"items":[{"id":1},{"id":2}]}}`)

	assert.Empty(t, DiffJSON("", decode(t, `{"code":"OutOfStock"}`), actual))
	assert.Empty(t, DiffJSON("", decode(t, `{"data":{"items":[{"id":1},{}]}}`), actual))

	diffs := DiffJSON("", decode(t, `{"code":"EmptyCart","redirect":"/login","data":{"items":[{"id":1}]}}`), actual)
	assert.Len(t, diffs, 3)
	assert.Contains(t, diffs, "  root.redirect: missing in actual")
}

func TestRunFile(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"status":401,"redirect":"/login"}`))
			return
		}
		w.Write([]byte(`{"status":200,"data":{"path":"` + r.URL.Path + `"}}`))
	})

	path := filepath.Join(t.TempDir(), "scenarios.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"name": "anonymous", "url": "/x", "expectedStatus": 401, "expect": {"redirect": "/login"}},
		{"name": "signed in", "as": "me", "method": "post", "url": "/y", "body": {"a": 1},
		 "expectedStatus": 200, "expect": {"data": {"path": "/y"}}}
	]`), 0o600))

	RunFile(t, handler, path, map[string]string{"me": "tok"})
}

func TestLoadRejectsUnnamedScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"url": "/x"}]`), 0o600))
	_, err := Load(path)
	assert.ErrorContains(t, err, "has no name")
}
