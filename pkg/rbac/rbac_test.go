package rbac

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/krishi/internal/access"
	"github.com/shashiranjanraj/krishi/pkg/response"
	"github.com/shashiranjanraj/krishi/pkg/session"
)

func serve(mw func(http.Handler) http.Handler, sess *access.Session) (*httptest.ResponseRecorder, response.Envelope) {
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodPut, "/admin/products/1/approve", nil)
	if sess != nil {
		req = req.WithContext(session.WithContext(req.Context(), sess))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env response.Envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func TestRequire(t *testing.T) {
	mw := Require(access.RoleAdmin)

	rec, env := serve(mw, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "/login", env.Redirect)

	rec, env = serve(mw, &access.Session{UserID: 5, Role: access.RoleFarmer, Status: "active"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "/farmer", env.Redirect)
	assert.Equal(t, "NotAuthorized", env.Code)

	rec, _ = serve(mw, &access.Session{UserID: 1, Role: access.RoleAdmin, Status: "active"})
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireActive(t *testing.T) {
	mw := RequireActive(access.RoleFarmer)

	rec, env := serve(mw, &access.Session{UserID: 5, Role: access.RoleFarmer, Status: "pending"})
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "AccountInactive", env.Code)
	assert.Equal(t, "/farmer", env.Redirect)

	rec, env = serve(mw, &access.Session{UserID: 6, Role: access.RoleCustomer, Status: "active"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "NotAuthorized", env.Code)

	rec, _ = serve(mw, &access.Session{UserID: 5, Role: access.RoleFarmer, Status: "active"})
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
