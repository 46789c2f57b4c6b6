package helpers

import "golang.org/x/crypto/bcrypt"

// bcryptCost is the work factor for password hashes. bcrypt embeds the
// cost and salt in the hash, so it can be raised later without
// invalidating stored credentials.
const bcryptCost = bcrypt.DefaultCost

// HashPassword hashes the plain text password using bcrypt. Each call
// uses a fresh salt, so equal inputs produce different hashes.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CompareHashAndPassword compares a bcrypt hash with a plain password.
// Malformed hashes simply fail the comparison.
func CompareHashAndPassword(hash string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
