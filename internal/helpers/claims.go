package helpers

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type CustomClaims struct {
	Role        string `json:"role"`
	Email       string `json:"email"`
	AppMetadata struct {
		Provider string   `json:"provider"`
		Roles    []string `json:"roles,omitempty"`
	} `json:"app_metadata"`
	jwt.RegisteredClaims
}

// Identity is the caller identity used for ownership and roster membership:
// the lower-cased email claim, falling back to the subject as issued.
func (c *CustomClaims) Identity() string {
	if email := NormalizeEmail(c.Email); email != "" {
		return email
	}
	return strings.TrimSpace(c.Subject)
}

func (c *CustomClaims) GetSafeRole() string {
	if c.Role == "" {
		return "user"
	}
	return c.Role
}
