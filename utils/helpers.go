package utils

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"
)

const (
	slugAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	// RandomSlugLength matches the legacy platform's short codes (e.g. "MMXdXcr").
	RandomSlugLength = 7
)

var slugPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// reservedPaths are first path segments that never resolve as legacy slugs.
var reservedPaths = map[string]struct{}{
	"admin":       {},
	"participant": {},
	"sign-in":     {},
	"sign-up":     {},
	"api":         {},
	"c":           {},
	"a":           {},
	"_next":       {},
	"favicon.ico": {},
	"favicon.svg": {},
	"health":      {},
}

// IsValidSlug reports whether s is a usable custom slug. Slugs are case sensitive.
func IsValidSlug(s string) bool {
	return len(s) <= 64 && slugPattern.MatchString(s)
}

func IsReservedPath(segment string) bool {
	_, ok := reservedPaths[strings.ToLower(segment)]
	return ok
}

// GenerateSlug returns a random, non-guessable slug.
func GenerateSlug() (string, error) {
	b := make([]byte, RandomSlugLength)
	max := big.NewInt(int64(len(slugAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = slugAlphabet[n.Int64()]
	}
	return string(b), nil
}
