package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/brightprep/brightprep-be/internal/models"
)

// ErrNoSubject indicates a valid token that did not resolve to a user id.
var ErrNoSubject = errors.New("token resolved no user id")

// Verifier validates bearer tokens minted by the identity provider and
// produces a Principal from their claims.
type Verifier struct {
	secret []byte
	issuer string
}

// NewVerifier creates a verifier for HS256 tokens signed with secret.
// An empty issuer disables the issuer check.
func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer}
}

// Verify validates the token signature and registered claims and builds the
// Principal. The role is read from the metadata.role claim and defaults to
// user when absent or unrecognized.
func (v *Verifier) Verify(tokenString string) (*Principal, error) {
	claims := jwt.MapClaims{}

	options := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		options = append(options, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, options...)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}

	subject, _ := claims["sub"].(string)
	if subject == "" {
		subject, _ = claims["user_id"].(string)
	}
	if subject == "" {
		return nil, ErrNoSubject
	}

	role := models.RoleUser
	if metadata, ok := claims["metadata"].(map[string]any); ok {
		if raw, ok := metadata["role"].(string); ok {
			role = models.ParseRole(raw)
		}
	}

	return &Principal{ID: subject, Role: role, Claims: claims}, nil
}
