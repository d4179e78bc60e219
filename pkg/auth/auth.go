// Package auth defines the pluggable authorization boundary between the
// HTTP transport and the versioning engine. The engine itself never
// parses or verifies a user_token; it only requires one to be present
// and bounded, per spec §6's note that token verification is an
// external collaborator's concern.
package auth

import (
	"net/http"

	"github.com/cuemby/vss/pkg/types"
	"github.com/cuemby/vss/pkg/vsserr"
)

// Authorizer extracts an authenticated user_token from an inbound
// request, or fails with a vsserr.Auth error. Implementations must
// return a non-empty token no longer than types.MaxUserTokenLength.
type Authorizer interface {
	Authorize(r *http.Request) (userToken string, err error)
}

// NullAuthorizer is the trusted-deployment authorizer: every request is
// attributed to the same fixed identity. It exists for local
// development and single-tenant deployments that terminate auth
// upstream (e.g. at a service mesh sidecar).
type NullAuthorizer struct{}

// UnauthUser is the fixed identity NullAuthorizer assigns to every
// request.
const UnauthUser = "unauth-user"

// Authorize always succeeds and returns UnauthUser.
func (NullAuthorizer) Authorize(*http.Request) (string, error) {
	return UnauthUser, nil
}

// HeaderAuthorizer reads the user_token directly from a request header.
// It performs no signature or claim verification — it is meant for
// deployments where an upstream proxy has already authenticated the
// caller and forwards the verified identity in a header, a pattern
// common to internal service-to-service calls.
type HeaderAuthorizer struct {
	// HeaderName is the header carrying the user token, e.g.
	// "X-VSS-User-Token".
	HeaderName string
}

// NewHeaderAuthorizer returns a HeaderAuthorizer reading headerName.
func NewHeaderAuthorizer(headerName string) HeaderAuthorizer {
	return HeaderAuthorizer{HeaderName: headerName}
}

// Authorize validates presence and length of the configured header.
func (a HeaderAuthorizer) Authorize(r *http.Request) (string, error) {
	const op = "auth.HeaderAuthorizer.Authorize"

	token := r.Header.Get(a.HeaderName)
	if token == "" {
		return "", vsserr.Authf(op, "missing %s header", a.HeaderName)
	}
	if len(token) > types.MaxUserTokenLength {
		return "", vsserr.Authf(op, "%s exceeds %d characters", a.HeaderName, types.MaxUserTokenLength)
	}
	return token, nil
}
