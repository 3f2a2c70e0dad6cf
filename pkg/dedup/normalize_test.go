package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "lowercases", input: "PARIS", want: "paris"},
		{name: "strips diacritics", input: "São Paulo", want: "sao paulo"},
		{name: "umlauts", input: "Zürich", want: "zurich"},
		{name: "polish accents", input: "Kraków", want: "krakow"},
		{name: "collapses whitespace", input: "  Café   de  Flore ", want: "cafe de flore"},
		{name: "empty", input: "", want: ""},
		{name: "whitespace only", input: "   ", want: ""},
		{name: "already normalized", input: "eiffel tower", want: "eiffel tower"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeName(tt.input))
		})
	}
}

func TestNormalizeName_EquivalentSpellings(t *testing.T) {
	// The whole point: these must collide.
	assert.Equal(t, NormalizeName("São Paulo"), NormalizeName("SAO  PAULO"))
	assert.Equal(t, NormalizeName("Čakovec"), NormalizeName("cakovec"))
}
