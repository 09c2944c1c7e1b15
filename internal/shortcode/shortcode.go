// Package shortcode generates the random identifiers short links are
// addressed by.
package shortcode

import (
	"fmt"
	"regexp"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Alphabet is the unreserved URL-safe character set codes are drawn from.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// DefaultLength is the length of generated codes.
const DefaultLength = 8

// Short codes and custom aliases share one format: 3-20 characters from
// the unreserved alphabet.
const (
	MinLength = 3
	MaxLength = 20
)

var codePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Generate produces a code of the given length drawn uniformly from
// Alphabet using a secure random source.
func Generate(length int) (string, error) {
	const op = "shortcode.Generate"

	code, err := gonanoid.Generate(Alphabet, length)
	if err != nil {
		return "", fmt.Errorf("%s: failed to generate short code: %w", op, err)
	}

	return code, nil
}

// Valid reports whether s is a well-formed short code or custom alias.
func Valid(s string) bool {
	return len(s) >= MinLength && len(s) <= MaxLength && codePattern.MatchString(s)
}
