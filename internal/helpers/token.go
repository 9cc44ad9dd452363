package helpers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// TokenVerifier checks bearer tokens issued by the identity provider. Tokens
// are verified against a remote JWKS when one is configured, otherwise
// against a shared HS256 secret.
type TokenVerifier struct {
	secret []byte
	jwks   *keyfunc.JWKS
}

func NewTokenVerifier(ctx context.Context, secret, jwksURL string, logger *slog.Logger) (*TokenVerifier, error) {
	if jwksURL == "" {
		if secret == "" {
			return nil, errors.New("either a JWT secret or a JWKS URL is required")
		}
		return &TokenVerifier{secret: []byte(secret)}, nil
	}

	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			logger.Error("JWKS refresh failed", "url", jwksURL, "error", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load JWKS from %s: %w", jwksURL, err)
	}
	return &TokenVerifier{jwks: jwks}, nil
}

func (v *TokenVerifier) Verify(tokenStr string) (*CustomClaims, error) {
	var (
		keyFunc jwt.Keyfunc
		methods []string
	)
	if v.jwks != nil {
		keyFunc = v.jwks.Keyfunc
		methods = []string{"RS256", "ES256", "EdDSA"}
	} else {
		keyFunc = func(*jwt.Token) (interface{}, error) { return v.secret, nil }
		methods = []string{"HS256"}
	}

	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, keyFunc, jwt.WithValidMethods(methods))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Identity() == "" {
		return nil, fmt.Errorf("%w: token carries no identity", ErrInvalidToken)
	}
	return claims, nil
}

func (v *TokenVerifier) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}
