package http

import (
	"context"
	"errors"
	"io"
	gohttp "net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/krishi/pkg/reqid"
)

func TestSendJSONWithBearerAndRequestID(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "rid-1", r.Header.Get(reqid.Header))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"quantity":2}`, string(body))
		w.WriteHeader(gohttp.StatusConflict)
		_, _ = w.Write([]byte(`{"status":409,"code":"OutOfStock"}`))
	}))
	defer srv.Close()

	ctx := reqid.WithValue(context.Background(), "rid-1")
	resp, err := Post(srv.URL).Bearer("tok").Body(map[string]int{"quantity": 2}).WithContext(ctx).Send()
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Equal(t, gohttp.StatusConflict, resp.StatusCode)

	var env struct {
		Code string `json:"code"`
	}
	require.NoError(t, resp.JSON(&env))
	assert.Equal(t, "OutOfStock", env.Code)
}

func TestTransportErrorIsTyped(t *testing.T) {
	srv := httptest.NewServer(gohttp.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := Get(url).Timeout(time.Second).Send()
	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, gohttp.MethodGet, te.Method)
}

func TestHTTPErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, _ *gohttp.Request) {
		calls.Add(1)
		w.WriteHeader(gohttp.StatusInternalServerError)
	}))
	defer srv.Close()

	resp, err := Get(srv.URL).Retry(3, time.Millisecond).Send()
	require.NoError(t, err)
	assert.Equal(t, gohttp.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestResponseTextAndHeader(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, _ *gohttp.Request) {
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(gohttp.StatusTooManyRequests)
		_, _ = w.Write([]byte("slow down"))
	}))
	defer srv.Close()

	resp, err := Get(srv.URL).Send()
	require.NoError(t, err)
	assert.Equal(t, "slow down", resp.Text())
	assert.Equal(t, "1", resp.Header("Retry-After"))
	assert.Error(t, resp.JSON(&struct{}{}))
}
