package auth

import "time"

// Identity represents an authenticated principal.
type Identity struct {
	// Principal is the token subject.
	Principal string

	// Issuer is the token issuer.
	Issuer string

	// Claims contains the raw claims from the token.
	Claims map[string]any

	// ExpiresAt is when the token expires.
	ExpiresAt time.Time
}

// IsWarmUp reports whether the token was minted for a warm-up call.
// Handlers can use it to skip side effects such as writes or notifications.
func (id *Identity) IsWarmUp() bool {
	if id == nil {
		return false
	}
	v, _ := id.Claims[WarmUpClaim].(bool)
	return v
}
