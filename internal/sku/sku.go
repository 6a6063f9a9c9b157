// Package sku generates the dash-grouped identifiers assigned to products
// at creation time.
package sku

import (
	"crypto/rand"
	"fmt"
	"strings"
)

const alphanum = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

const (
	// maxSeedSize bounds a single random draw.
	maxSeedSize = 30

	seedSize  = 16
	groupSize = 4
)

// New returns a fresh sku: a 16-character alphanumeric seed grouped into
// dash-separated blocks of 4 (XXXX-XXXX-XXXX-XXXX). A failing random source
// is returned as an error, never a panic.
func New() (string, error) {
	seed, err := randomAlphanum(seedSize)
	if err != nil {
		return "", err
	}
	return splitIntoParts(seed, groupSize), nil
}

// randomAlphanum generates size random alphanumeric characters. Random
// bytes above the largest multiple of the alphabet size are discarded, so
// every character is equally likely.
func randomAlphanum(size int) (string, error) {
	if size > maxSeedSize {
		return "", fmt.Errorf("size must not be greater than %d", maxSeedSize)
	}

	const limit = 256 - 256%len(alphanum)

	out := make([]byte, 0, size)
	buf := make([]byte, maxSeedSize)
	for len(out) < size {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, alphanum[int(b)%len(alphanum)])
			if len(out) == size {
				break
			}
		}
	}
	return string(out), nil
}

// splitIntoParts splits a string into dash-separated parts of a given size.
func splitIntoParts(s string, size int) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if i%size == 0 && i != 0 {
			b.WriteByte('-')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
