package common

import (
	"crypto/rand"
	"encoding/base64"
)

// RandomString returns size characters of URL-safe base64 drawn from
// crypto/rand. It returns an error if the random source fails.
func RandomString(size int) (string, error) {
	if size <= 0 {
		return "", nil
	}
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:size], nil
}

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// It is used to drop passwords read from the terminal once they are hashed.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
