package middleware

import (
	"net/http"
	"strings"
)

const (
	corsAllowMethods = "GET,POST,PATCH,DELETE,OPTIONS"
	corsAllowHeaders = "Content-Type, Authorization, X-Request-ID"
)

// originPolicy resolves which Origin values receive CORS headers.
type originPolicy struct {
	allowAll bool
	allowed  map[string]struct{}
}

func newOriginPolicy(origins []string) originPolicy {
	policy := originPolicy{allowed: make(map[string]struct{}, len(origins))}
	for _, origin := range origins {
		if origin == "*" {
			return originPolicy{allowAll: true}
		}
		policy.allowed[strings.ToLower(origin)] = struct{}{}
	}
	return policy
}

func (p originPolicy) allow(origin string) (string, bool) {
	if p.allowAll {
		return "*", true
	}
	if _, ok := p.allowed[strings.ToLower(origin)]; ok {
		return origin, true
	}
	return "", false
}

// CORS grants browser callers from allowed origins access to the API,
// advertising the bearer-auth and request-id headers the rest of the
// middleware chain expects, and answers preflight requests itself.
func CORS(allowedOrigins []string, next http.Handler) http.Handler {
	policy := newOriginPolicy(allowedOrigins)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			if value, ok := policy.allow(origin); ok {
				header := w.Header()
				header.Set("Access-Control-Allow-Origin", value)
				header.Set("Vary", "Origin")
				header.Set("Access-Control-Allow-Credentials", "true")
				header.Set("Access-Control-Allow-Headers", corsAllowHeaders)
				header.Set("Access-Control-Allow-Methods", corsAllowMethods)
				header.Set("Access-Control-Expose-Headers", "X-Request-ID")
			}
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
