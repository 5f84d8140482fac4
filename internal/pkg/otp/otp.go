package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	lowest  = 100000
	highest = 999999
)

// Generate returns a 6-digit code drawn uniformly from [100000, 999999].
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(highest-lowest+1))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+lowest), nil
}

// Expired reports whether a code with the given expiry is stale at now.
// A nil expiry is treated as expired.
func Expired(expiresAt *time.Time, now time.Time) bool {
	if expiresAt == nil {
		return true
	}
	return now.After(*expiresAt)
}
