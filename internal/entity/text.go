package entity

import "strings"

const (
	previewLimit = 14
	previewKeep  = 11
	maxLines     = 3
)

// Preview shortens text for the in-world bubble: anything longer than 14
// characters keeps its first 11 followed by "...".
func Preview(text string) string {
	r := []rune(text)
	if len(r) > previewLimit {
		return string(r[:previewKeep]) + "..."
	}
	return text
}

// Wrap breaks text on whitespace into at most three lines of width columns.
// Words wider than a line are split by character.
func Wrap(text string, width int) []string {
	if width < 1 {
		width = 1
	}
	var lines []string
	cur := ""
	for _, word := range strings.Fields(text) {
		w := []rune(word)
		if len(w) > width {
			if cur != "" {
				lines = append(lines, cur)
			}
			for len(w) > width {
				lines = append(lines, string(w[:width]))
				w = w[width:]
			}
			cur = string(w)
			continue
		}
		test := word
		if cur != "" {
			test = cur + " " + word
		}
		if len([]rune(test)) <= width {
			cur = test
		} else {
			lines = append(lines, cur)
			cur = word
		}
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return lines
}

// lineWidth approximates how many characters fit a bubble line; short
// messages use a larger font.
func lineWidth(text string) int {
	if len([]rune(text)) < 12 {
		return 8
	}
	return 10
}
