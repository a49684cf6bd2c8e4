// Package refcode generates and normalizes the short reference codes
// handed to patients so staff can look up a pending appointment without
// authentication.
package refcode

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// Length is the fixed length of a reference code.
const Length = 8

// Codes avoid 0/O and 1/I to survive being read over the phone.
const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// New returns a new uppercase alphanumeric reference code.
func New() (string, error) {
	buf := make([]byte, Length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate reference code: %w", err)
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(buf), nil
}

// Normalize canonicalizes user-supplied input for lookup: uppercase with
// anything that is not a letter or digit stripped out.
func Normalize(code string) string {
	var b strings.Builder
	b.Grow(len(code))
	for _, r := range strings.ToUpper(strings.TrimSpace(code)) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
