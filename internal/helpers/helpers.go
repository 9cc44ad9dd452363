package helpers

import (
	"strings"
)

func StringTrim(s string) string {
	s = strings.TrimSpace(s)
	return strings.Trim(s, "\"'")
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeIdentity trims a caller identity and otherwise keeps it as given.
// Email claims are already lower-cased by CustomClaims.Identity.
func NormalizeIdentity(identity string) string {
	return strings.TrimSpace(identity)
}

// NormalizeVoucherCode accepts codes typed in any case and with stray spaces.
func NormalizeVoucherCode(code string) string {
	return strings.ToUpper(StringTrim(code))
}
