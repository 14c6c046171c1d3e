package app

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"

	"github.com/google/uuid"
)

// generateID produces a random entity identifier.
// Isolated here so the ID strategy can evolve independently.
func generateID() string {
	return uuid.NewString()
}

// crockford is Crockford's base32 alphabet: no I, L, O or U.
var crockford = base32.NewEncoding("0123456789ABCDEFGHJKMNPQRSTVWXYZ").WithPadding(base32.NoPadding)

// codeBytes of randomness encode to exactly eight base32 characters.
const codeBytes = 5

// generateDiscountCode returns prefix + "-" + 40 random bits in Crockford base32.
func generateDiscountCode(prefix string) (string, error) {
	b := make([]byte, codeBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	return prefix + "-" + crockford.EncodeToString(b), nil
}
