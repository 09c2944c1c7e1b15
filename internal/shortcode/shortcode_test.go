package shortcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	code, err := Generate(DefaultLength)
	require.NoError(t, err)
	assert.Len(t, code, DefaultLength)
	assert.Regexp(t, "^[A-Za-z0-9_-]{8}$", code)
}

func TestGenerateUniqueness(t *testing.T) {
	const iterations = 1000

	seen := make(map[string]bool, iterations)

	for i := 0; i < iterations; i++ {
		code, err := Generate(DefaultLength)
		require.NoError(t, err)
		assert.False(t, seen[code], "generated duplicate code: %s", code)
		seen[code] = true
	}

	assert.Len(t, seen, iterations)
}

func TestGenerateCharacterDistribution(t *testing.T) {
	const iterations = 10000

	charCounts := make(map[rune]int)

	for i := 0; i < iterations; i++ {
		code, err := Generate(DefaultLength)
		require.NoError(t, err)

		for _, ch := range code {
			charCounts[ch]++
		}
	}

	assert.GreaterOrEqual(t, len(charCounts), 60,
		"expected most of the alphabet to appear, got %d unique chars", len(charCounts))
}

func TestValid(t *testing.T) {
	tests := []struct {
		name string
		code string
		want bool
	}{
		{"generated code", "aB3_x-9Z", true},
		{"min length", "abc", true},
		{"max length", "a1234567890123456789", true},
		{"too short", "ab", false},
		{"too long", "a12345678901234567890", false},
		{"reserved char", "my link", false},
		{"unicode", "абвгд", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Valid(tt.code))
		})
	}
}

func BenchmarkGenerate(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = Generate(DefaultLength)
	}
}
