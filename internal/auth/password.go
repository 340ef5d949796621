package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// passwordHashCost is the fixed bcrypt work factor. Raising it only affects
// hashes created after a redeploy; existing hashes verify with the cost
// embedded in them.
const passwordHashCost = bcrypt.DefaultCost

// HashPassword applies a salted adaptive hash. A fresh salt is drawn per
// call, so hashing the same password twice yields different outputs.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword recomputes with the salt embedded in hash and compares in
// constant time. Mismatch is not an error condition, only a false result.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
