package ctx_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/krishi/internal/access"
	"github.com/shashiranjanraj/krishi/pkg/apperr"
	appctx "github.com/shashiranjanraj/krishi/pkg/ctx"
	"github.com/shashiranjanraj/krishi/pkg/response"
	"github.com/shashiranjanraj/krishi/pkg/session"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	appctx.Wrap(func(c *appctx.Context) {
		c.Success(map[string]any{"id": 1})
	})(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":200,"data":{"id":1}}`, rec.Body.String())
}

func TestBindJSON(t *testing.T) {
	type input struct {
		ProductID uint `json:"product_id" validate:"required"`
		Quantity  int  `json:"quantity"   validate:"gte=1"`
	}

	t.Run("valid", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"product_id":4,"quantity":2}`))
		appctx.Wrap(func(c *appctx.Context) {
			var in input
			require.True(t, c.BindJSON(&in))
			assert.Equal(t, 2, in.Quantity)
			c.Created(in)
		})(rec, req)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("invalid", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"product_id":4,"quantity":0}`))
		appctx.Wrap(func(c *appctx.Context) {
			var in input
			assert.False(t, c.BindJSON(&in))
		})(rec, req)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, decode(t, rec).Errors, "quantity")
	})

	t.Run("malformed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"product_id":`))
		appctx.Wrap(func(c *appctx.Context) {
			var in input
			assert.False(t, c.BindJSON(&in))
		})(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestFailMapsTaxonomy(t *testing.T) {
	rec := httptest.NewRecorder()
	appctx.Wrap(func(c *appctx.Context) {
		c.Fail(apperr.Conflict(apperr.CodeOutOfStock, "only 1 left of Basmati"))
	})(rec, httptest.NewRequest(http.MethodPost, "/orders", nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "OutOfStock", env.Code)
	assert.Equal(t, "only 1 left of Basmati", env.Message)
}

func TestFailHidesInternalErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	appctx.Wrap(func(c *appctx.Context) {
		c.Fail(assert.AnError)
	})(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
}

func TestParamUintAndSession(t *testing.T) {
	r := chi.NewRouter()
	sess := &access.Session{UserID: 8, Role: access.RoleCustomer}
	r.Get("/orders/{id}", appctx.Wrap(func(c *appctx.Context) {
		id, ok := c.ParamUint("id")
		if !ok {
			return
		}
		assert.Same(t, sess, c.Session())
		c.Success(id)
	}))

	req := httptest.NewRequest(http.MethodGet, "/orders/12", nil)
	req = req.WithContext(session.WithContext(req.Context(), sess))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.JSONEq(t, `{"status":200,"data":12}`, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/abc", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=3&per_page=500", nil)
	appctx.Wrap(func(c *appctx.Context) {
		p := c.Page()
		assert.Equal(t, 3, p.Number)
		assert.Equal(t, 100, p.PerPage)
		c.Success(nil)
	})(httptest.NewRecorder(), req)
}

func TestDefaultQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=&entity=land", nil)
	appctx.Wrap(func(c *appctx.Context) {
		assert.Equal(t, "50", c.DefaultQuery("limit", "50"))
		assert.Equal(t, "land", c.DefaultQuery("entity", "product"))
		c.Success(nil)
	})(httptest.NewRecorder(), req)
}
