package ui

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Description display limits used by get-issue.
const (
	DefaultMaxLines     = 15
	DefaultContextLines = 5
)

// TruncateLines keeps the first and last contextLines of text when it has
// more than maxLines lines, replacing the middle with a muted marker that
// points at --full. Shorter text is returned as is.
func TruncateLines(text string, maxLines, contextLines int) string {
	lines := strings.Split(text, "\n")
	if text == "" || len(lines) <= maxLines {
		return text
	}
	if contextLines < 1 {
		contextLines = DefaultContextLines
	}
	if 2*contextLines >= maxLines {
		return strings.Join(lines[:maxLines], "\n") + "\n" + RenderMuted("...")
	}

	rule := RenderMuted(strings.Repeat("─", 40))
	marker := RenderMuted(fmt.Sprintf("... %d lines hidden (use --full to see complete text) ...", len(lines)-2*contextLines))

	out := make([]string, 0, 2*contextLines+3)
	out = append(out, lines[:contextLines]...)
	out = append(out, rule, marker, rule)
	out = append(out, lines[len(lines)-contextLines:]...)
	return strings.Join(out, "\n")
}

// TruncateSimple shortens text to maxLen runes, ending in "...".
func TruncateSimple(text string, maxLen int) string {
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return "..."
	}
	return string([]rune(text)[:maxLen-3]) + "..."
}

// WrapText wraps each line of text at word boundaries so it fits in width
// runes. Words longer than width get a line of their own.
func WrapText(text string, width int) string {
	if width <= 0 {
		width = 80
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = wrapLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func wrapLine(line string, width int) string {
	if utf8.RuneCountInString(line) <= width {
		return line
	}
	var b strings.Builder
	col := 0
	for _, word := range strings.Fields(line) {
		n := utf8.RuneCountInString(word)
		switch {
		case col == 0:
		case col+1+n <= width:
			b.WriteByte(' ')
			col++
		default:
			b.WriteByte('\n')
			col = 0
		}
		b.WriteString(word)
		col += n
	}
	return b.String()
}
