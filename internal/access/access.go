// Package access decides whether a session may perform an operation.
//
// Authorize is the single gate consulted by routes, services and the client
// SDK before any state-mutating call. It is pure: no I/O, no clock.
package access

import "time"

// Role is the marketplace role carried by a session.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleFarmer   Role = "farmer"
	RoleAdmin    Role = "admin"
)

// LoginRoute is where unauthenticated callers are sent.
const LoginRoute = "/login"

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleFarmer, RoleAdmin:
		return true
	}
	return false
}

// Home returns the landing route for a role; unknown roles go to "/".
func (r Role) Home() string {
	switch r {
	case RoleCustomer:
		return "/customer"
	case RoleFarmer:
		return "/farmer"
	case RoleAdmin:
		return "/admin"
	default:
		return "/"
	}
}

// Session is the authenticated context of one user. A nil *Session is
// anonymous.
type Session struct {
	UserID    uint
	Role      Role
	Status    string // account status; only farmers are ever non-active
	ExpiresAt time.Time
}

// Authenticated reports whether s identifies a user.
func (s *Session) Authenticated() bool {
	return s != nil && s.UserID != 0
}

// Is reports whether s is authenticated with role r.
func (s *Session) Is(r Role) bool {
	return s.Authenticated() && s.Role == r
}

// Decision is the outcome of Authorize. The zero value is a redirect to "/".
type Decision struct {
	Allowed  bool
	Redirect string
}

// Allow is the permitting decision.
var Allow = Decision{Allowed: true}

// NeedsLogin reports whether the decision sends the caller to the login route.
func (d Decision) NeedsLogin() bool {
	return !d.Allowed && d.Redirect == LoginRoute
}

// Authorize maps (session, allowed roles) to Allow or a redirect target.
// An empty allowed set admits any authenticated session.
func Authorize(s *Session, allowed ...Role) Decision {
	if !s.Authenticated() {
		return Decision{Redirect: LoginRoute}
	}
	if len(allowed) == 0 {
		return Allow
	}
	for _, r := range allowed {
		if s.Role == r {
			return Allow
		}
	}
	return Decision{Redirect: s.Role.Home()}
}

// StatusActive is the account status that may create and edit listings.
const StatusActive = "active"

// Active reports whether the session's account is active.
func (s *Session) Active() bool {
	return s.Authenticated() && s.Status == StatusActive
}

// RequireActive is Authorize plus the active-account check applied to farmer
// listing operations. Inactive accounts are sent to their home route.
func RequireActive(s *Session, allowed ...Role) Decision {
	d := Authorize(s, allowed...)
	if d.Allowed && !s.Active() {
		return Decision{Redirect: s.Role.Home()}
	}
	return d
}
