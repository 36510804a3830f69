package auth

import (
	"context"
	"errors"
)

// ErrNoCredentials is returned by a Verifier when the request carries no
// token at all, as opposed to an invalid one.
var ErrNoCredentials = errors.New("auth: no credentials")

// Caller is the verified identity of whoever issued a request.
//
// Subject is the stable identifier assigned by the identity provider
// (e.g. "github_1234567"). Name and Nickname are display hints and may be
// empty. Nothing in a Caller ever comes from a request body: it is decoded
// from a signed token by a Verifier.
type Caller struct {
	Subject  string
	Name     string
	Nickname string
}

// DisplayName picks the best human-readable name for the caller:
// Name, then Nickname, then "Anonymous".
func (c Caller) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	if c.Nickname != "" {
		return c.Nickname
	}
	return "Anonymous"
}

// Verifier turns a raw credential into a verified Caller.
//
// The policy layer never talks to an identity provider directly. It only sees
// the Caller a Verifier placed on the request context, so swapping the
// provider (our own HS256 sessions, an external OIDC issuer, ...) means
// writing another Verifier.
type Verifier interface {
	Verify(ctx context.Context, token string) (Caller, error)
}

// contextKey is an unexported type used for context keys in this package.
// Only this package can create a key of this type, so no other package can
// read or shadow the caller stored under it.
type contextKey string

const callerKey contextKey = "caller"

// WithCaller returns a copy of ctx carrying c. Middleware calls this after
// verification; tests call it to simulate an authenticated request.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey, c)
}

// CallerFromContext returns the verified caller, or (Caller{}, false) when
// the request is anonymous.
func CallerFromContext(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerKey).(Caller)
	return c, ok && c.Subject != ""
}
