// Package bind decodes and validates an HTTP request body into a struct.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/shashiranjanraj/krishi/config"
	"github.com/shashiranjanraj/krishi/pkg/validate"
)

func maxBodyBytes() int64 {
	n := config.GetInt("MAX_BODY_BYTES", 1<<20)
	if n <= 0 {
		return 1 << 20
	}
	return int64(n)
}

// JSON decodes r.Body into dest and validates it.
// Returns (errs, nil) on validation failures and (nil, err) when the body is
// malformed, too large, or carries unknown fields. An empty body decodes to
// the zero value.
func JSON(r *http.Request, dest any) (map[string]string, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes())

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil && !errors.Is(err, io.EOF) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("request body too large (max %d bytes)", maxErr.Limit)
		}
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	if errs := validate.Struct(dest); validate.HasErrors(errs) {
		return errs, nil
	}
	return nil, nil
}
