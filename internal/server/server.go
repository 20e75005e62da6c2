// Package server binds the HTTP listener and shuts it down gracefully.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shashiranjanraj/krishi/pkg/logger"
)

// ShutdownTimeout bounds how long in-flight requests may take to finish.
var ShutdownTimeout = 15 * time.Second

// New returns a server for handler with conservative timeouts.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// Run serves handler on addr until ctx is cancelled, then drains in-flight
// requests.
func Run(ctx context.Context, addr string, handler http.Handler) error {
	srv := New(addr, handler)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server: listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
