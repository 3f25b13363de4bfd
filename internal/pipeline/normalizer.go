package pipeline

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`[ \t\r\f\v]+`)
	blockSplitRe = regexp.MustCompile(`\n{2,}|[.!?。]\s+|\n`)
)

// NormalizeText collapses repeated whitespace to single spaces and trims the
// ends. A nil-equivalent (empty) input yields an empty string.
func NormalizeText(raw string) string {
	if raw == "" {
		return ""
	}
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(whitespaceRe.ReplaceAllString(line, " "))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// SplitBlocks segments normalized text into an ordered sequence of non-empty
// logical blocks, splitting on paragraph breaks and sentence-like boundaries.
func SplitBlocks(normalized string) []string {
	if normalized == "" {
		return nil
	}
	parts := blockSplitRe.Split(normalized, -1)
	blocks := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			blocks = append(blocks, p)
		}
	}
	return blocks
}
