package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/brightprep/brightprep-be/internal/auth"
	"github.com/brightprep/brightprep-be/internal/http/respond"
	"github.com/brightprep/brightprep-be/internal/models"
)

// TokenVerifier validates a bearer credential and resolves the caller.
type TokenVerifier interface {
	Verify(token string) (*auth.Principal, error)
}

type contextKey string

const principalKey contextKey = "principal"

var (
	// ErrNoPrincipal indicates the request carries no verified identity.
	ErrNoPrincipal = errors.New("no principal in context")
	// ErrInvalidPrincipal indicates the context value is not a Principal.
	ErrInvalidPrincipal = errors.New("invalid principal in context")
)

// WithPrincipal attaches a verified principal to the context.
func WithPrincipal(ctx context.Context, p *auth.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom extracts the verified principal. Absence and shape errors
// are distinguished so gates can fail closed with the right status.
func PrincipalFrom(ctx context.Context) (*auth.Principal, error) {
	value := ctx.Value(principalKey)
	if value == nil {
		return nil, ErrNoPrincipal
	}
	principal, ok := value.(*auth.Principal)
	if !ok || principal == nil {
		return nil, ErrInvalidPrincipal
	}
	return principal, nil
}

// Authenticate validates the Authorization bearer credential and attaches
// the resulting principal to the request context. Missing, malformed, or
// invalid credentials halt the request with 401; the downstream handler is
// never invoked without a verified identity.
func Authenticate(verifier TokenVerifier, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			respond.Unauthorized(w)
			return
		}

		principal, err := verifier.Verify(token)
		if err != nil || principal == nil || principal.ID == "" {
			respond.Unauthorized(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
	})
}

// RequireRole allows the request through only when the caller's role is in
// the required set. A missing principal is a 401, never an implicit allow;
// an unexpected principal shape is a 500 so clients can tell "not allowed"
// from "could not decide".
func RequireRole(required []models.Role, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := guard(w, r)
		if !ok {
			return
		}
		if !principal.Role.In(required) {
			respond.InsufficientRole(w, required, principal.Role)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireOwner gates a route to the owner role.
func RequireOwner(next http.Handler) http.Handler {
	return RequireRole(models.OwnerOnly, next)
}

// RequireOwnerOrAdmin gates a route to privileged roles.
func RequireOwnerOrAdmin(next http.Handler) http.Handler {
	return RequireRole(models.OwnerOrAdmin, next)
}

// RequireOwnership allows privileged roles through unconditionally and
// otherwise requires the caller's id to match the owner id carried in the
// named path segment. Evaluated as one short-circuit condition: ownership
// is irrelevant once a privileged role is established.
func RequireOwnership(pathParam string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := guard(w, r)
		if !ok {
			return
		}
		ownerID := r.PathValue(pathParam)
		if principal.Role.Privileged() || (ownerID != "" && principal.ID == ownerID) {
			next.ServeHTTP(w, r)
			return
		}
		respond.NotOwner(w)
	})
}

// guard is the shared fail-closed precondition for every gate: absence of a
// verified identity must never be treated as implicit permission.
func guard(w http.ResponseWriter, r *http.Request) (*auth.Principal, bool) {
	principal, err := PrincipalFrom(r.Context())
	if err != nil {
		if errors.Is(err, ErrNoPrincipal) {
			respond.Unauthorized(w)
		} else {
			respond.Error(w, http.StatusInternalServerError, "Failed to verify role")
		}
		return nil, false
	}
	return principal, true
}

func bearerToken(header string) string {
	const scheme = "bearer "
	if len(header) > len(scheme) && strings.EqualFold(header[:len(scheme)], scheme) {
		return strings.TrimSpace(header[len(scheme):])
	}
	return ""
}
