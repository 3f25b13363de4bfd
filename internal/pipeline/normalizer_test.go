package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "collapses repeated spaces and tabs",
			input:    "HOA   DON\t\tGTGT",
			expected: "HOA DON GTGT",
		},
		{
			name:     "trims line ends and outer whitespace",
			input:    "  line one  \n  line two  ",
			expected: "line one\nline two",
		},
		{
			name:     "keeps newlines between lines",
			input:    "a\nb\nc",
			expected: "a\nb\nc",
		},
		{
			name:     "strips carriage returns",
			input:    "a\r\nb",
			expected: "a\nb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeText(tt.input))
		})
	}
}

func TestSplitBlocks(t *testing.T) {
	t.Run("empty input yields nil", func(t *testing.T) {
		assert.Nil(t, SplitBlocks(""))
	})

	t.Run("splits on paragraph breaks", func(t *testing.T) {
		blocks := SplitBlocks("first paragraph\n\nsecond paragraph")
		assert.Equal(t, []string{"first paragraph", "second paragraph"}, blocks)
	})

	t.Run("splits on newlines and drops empties", func(t *testing.T) {
		blocks := SplitBlocks("one\ntwo\n\n\nthree")
		assert.Equal(t, []string{"one", "two", "three"}, blocks)
	})

	t.Run("preserves order", func(t *testing.T) {
		blocks := SplitBlocks("z\na\nm")
		assert.Equal(t, []string{"z", "a", "m"}, blocks)
	})
}
