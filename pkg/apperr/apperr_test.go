package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesCodeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("checkout: %w", Conflict(CodeOutOfStock, "only %d left", 2))

	assert.True(t, errors.Is(err, ErrOutOfStock))
	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrProductUnavailable))
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, CodeOutOfStock, CodeOf(err))
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{ErrNotAuthorized, http.StatusForbidden},
		{ErrInvalidTransition, http.StatusUnprocessableEntity},
		{NotFound("order"), http.StatusNotFound},
		{ErrOutOfStock, http.StatusConflict},
		{Server(errors.New("x")), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.err.Status(), c.err.Error())
	}
}

func TestFromStatus(t *testing.T) {
	assert.Equal(t, KindAuth, FromStatus(401, "", "expired").Kind)
	assert.Equal(t, KindConflict, FromStatus(409, CodeOutOfStock, "gone").Kind)
	assert.True(t, errors.Is(FromStatus(409, CodeOutOfStock, "gone"), ErrOutOfStock))

	v := FromStatus(422, "", "quantity must be at least 1")
	assert.Equal(t, KindValidation, v.Kind)
	assert.Equal(t, "quantity must be at least 1", v.Message)

	assert.Equal(t, KindServer, FromStatus(503, "", "down").Kind)
}

func TestNotAuthorizedKind(t *testing.T) {
	assert.Equal(t, KindAuth, NotAuthorized("/login", true).Kind)
	forbidden := NotAuthorized("/farmer", false)
	assert.Equal(t, KindForbidden, forbidden.Kind)
	assert.Equal(t, "/farmer", forbidden.Redirect)
	assert.True(t, errors.Is(forbidden, ErrNotAuthorized))
}

func TestUnclassifiedIsServer(t *testing.T) {
	assert.Equal(t, KindServer, KindOf(errors.New("boom")))
	assert.Equal(t, Code(""), CodeOf(errors.New("boom")))
}
