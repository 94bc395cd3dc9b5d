package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMissingSubject is returned for tokens without a user id.
	ErrMissingSubject = errors.New("token has no subject")
	// ErrNoVerificationKey is returned when no public key is configured and
	// unverified tokens were not explicitly allowed.
	ErrNoVerificationKey = errors.New("identity public key is required")
)

// IdentityClaims are the claims issued by the identity provider. The backend
// keys every record by Subject and OrgID.
type IdentityClaims struct {
	OrgID string `json:"org_id,omitempty"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the subject of the token.
func (c *IdentityClaims) UserID() string {
	return c.Subject
}

// IIdentityVerifier turns a bearer token into identity claims.
type IIdentityVerifier interface {
	Verify(tokenString string) (*IdentityClaims, error)
}

type identityVerifier struct {
	parser *jwt.Parser
	key    interface{}
}

// NewIdentityVerifier creates a verifier for RS256 tokens signed by the key in
// publicKeyPEM. An empty key is refused unless allowUnverified is set, in
// which case tokens are only decoded and the caller must confirm them some
// other way (see NewConfirmingVerifier).
func NewIdentityVerifier(publicKeyPEM string, allowUnverified bool) (IIdentityVerifier, error) {
	v := &identityVerifier{
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}), jwt.WithExpirationRequired()),
	}
	if strings.TrimSpace(publicKeyPEM) == "" {
		if !allowUnverified {
			return nil, ErrNoVerificationKey
		}
		v.parser = jwt.NewParser()
		return v, nil
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(publicKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("failed to parse identity public key: %w", err)
	}
	v.key = key
	return v, nil
}

// Verify parses tokenString and returns its claims.
func (v *identityVerifier) Verify(tokenString string) (*IdentityClaims, error) {
	claims := &IdentityClaims{}
	if v.key == nil {
		if _, _, err := v.parser.ParseUnverified(tokenString, claims); err != nil {
			return nil, fmt.Errorf("failed to decode token: %w", err)
		}
		if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
			return nil, fmt.Errorf("failed to decode token: %w", jwt.ErrTokenExpired)
		}
	} else {
		token, err := v.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return v.key, nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to parse token: %w", err)
		}
		if !token.Valid {
			return nil, fmt.Errorf("invalid token")
		}
	}
	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}
	return claims, nil
}
