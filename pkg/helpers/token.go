package helpers

import (
	"crypto/rand"
	"encoding/hex"
)

// resetTokenBytes gives 256 bits of entropy, rendered as 64 hex chars.
const resetTokenBytes = 32

// NewResetToken generates a random single-use token for the password
// reset flow. It draws from crypto/rand; a predictable token here is
// an account-takeover vector.
func NewResetToken() (string, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
