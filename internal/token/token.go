// Package token generates QR record identifiers: UUIDs for static records
// and short random tokens for dynamic ones.
package token

import (
	"crypto/rand"
	"fmt"

	"github.com/google/uuid"
)

const (
	shortLen      = 8
	shortAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

// NewStaticID returns the identifier for a static record.
func NewStaticID() string {
	return uuid.NewString()
}

// NewShortToken returns the public short identifier for a dynamic record.
// Collisions are possible and accepted; the store's primary-key constraint
// rejects the rare duplicate and the caller retries.
func NewShortToken() (string, error) {
	buf := make([]byte, shortLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	for i, b := range buf {
		buf[i] = shortAlphabet[int(b)%len(shortAlphabet)]
	}
	return string(buf), nil
}
