// Package testkit runs JSON-described REST scenarios against an
// http.Handler.
//
// A scenario file holds an array of steps run in order, so later steps see
// the state earlier ones left behind:
//
//	[
//	  {
//	    "name": "anonymous cart is sent to login",
//	    "method": "GET",
//	    "url": "/api/cart",
//	    "expectedStatus": 401,
//	    "expect": {"code": "NotAuthorized", "redirect": "/login"}
//	  },
//	  {
//	    "name": "customer adds raisins",
//	    "as": "customer",
//	    "method": "POST",
//	    "url": "/api/cart/items",
//	    "body": {"product_id": 3, "quantity": 1},
//	    "expectedStatus": 200
//	  }
//	]
//
// "as" names a bearer token from the map given to RunFile. "expect" is
// matched as a subset of the response body: every key it lists must be
// present with an equal value; anything else in the response is ignored.
package testkit

import (
	"encoding/json"
	"fmt"
	"os"
)

// ─── Schema ───────────────────────────────────────────────────────────────────

// Scenario is one request and what its response must look like.
type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// Request
	As      string            `json:"as,omitempty"`
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    json.RawMessage   `json:"body,omitempty"`

	// Response assertions
	ExpectedStatus int             `json:"expectedStatus"`
	Expect         json.RawMessage `json:"expect,omitempty"`
}

// ─── Loading ──────────────────────────────────────────────────────────────────

// Load reads an array of scenarios from path.
func Load(path string) ([]Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %q: %w", path, err)
	}
	var out []Scenario
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", path, err)
	}
	for i, s := range out {
		if s.Name == "" {
			return nil, fmt.Errorf("testkit: %q: scenario %d has no name", path, i)
		}
		if s.URL == "" {
			return nil, fmt.Errorf("testkit: %q: scenario %q has no url", path, s.Name)
		}
	}
	return out, nil
}
