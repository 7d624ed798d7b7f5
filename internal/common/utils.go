package common

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// MakeRandHexString generates a random hexadecimal string from size random
// bytes. The resulting string is twice as long as size.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("rand read error: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// MakeNumericCode generates a short random digit string, used for sign-up
// and password-reset confirmation codes sent by mail.
func MakeNumericCode(digits int) (string, error) {
	b := make([]byte, digits)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("rand read error: %w", err)
	}
	out := make([]byte, digits)
	for i, v := range b {
		out[i] = '0' + v%10
	}
	return string(out), nil
}
