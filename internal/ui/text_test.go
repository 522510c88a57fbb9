package ui

import (
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func numberedLines(n int) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("step %d", i+1)
	}
	return strings.Join(lines, "\n")
}

func TestTruncateLinesDescription(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	got := TruncateLines(numberedLines(40), DefaultMaxLines, DefaultContextLines)
	rule := strings.Repeat("─", 40)
	want := strings.Join([]string{
		"step 1", "step 2", "step 3", "step 4", "step 5",
		rule,
		"... 30 lines hidden (use --full to see complete text) ...",
		rule,
		"step 36", "step 37", "step 38", "step 39", "step 40",
	}, "\n")
	if got != want {
		t.Errorf("TruncateLines() =\n%s\nwant:\n%s", got, want)
	}
}

func TestTruncateLinesLeavesShortText(t *testing.T) {
	for _, text := range []string{"", "one line", numberedLines(DefaultMaxLines)} {
		if got := TruncateLines(text, DefaultMaxLines, DefaultContextLines); got != text {
			t.Errorf("TruncateLines(%d lines) changed the text", strings.Count(text, "\n")+1)
		}
	}
}

func TestTruncateLinesHeadOnlyWhenContextDoesNotFit(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	got := TruncateLines(numberedLines(10), 4, 2)
	want := "step 1\nstep 2\nstep 3\nstep 4\n..."
	if got != want {
		t.Errorf("TruncateLines() = %q, want %q", got, want)
	}
}

func TestTruncateSimpleSummaries(t *testing.T) {
	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"C1.5 Search", 60, "C1.5 Search"},
		{"C1 Reliability", 14, "C1 Reliability"},
		{"C1.5.2 Rework ranking pipeline", 16, "C1.5.2 Rework..."},
		{"Überarbeitung der Suche", 10, "Überarb..."},
		{"anything", 2, "..."},
	}

	for _, tt := range tests {
		if got := TruncateSimple(tt.input, tt.maxLen); got != tt.want {
			t.Errorf("TruncateSimple(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
		}
	}
}

func TestWrapTextDescription(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  string
	}{
		{"fits", "Ship the ranking fix", 40, "Ship the ranking fix"},
		{"wraps at words", "Ship the ranking fix before the freeze", 20, "Ship the ranking fix\nbefore the freeze"},
		{"keeps paragraphs", "Goal\n\nShip it", 40, "Goal\n\nShip it"},
		{"long word alone", "see https://acme.atlassian.net/browse/DBX-1 now", 12, "see\nhttps://acme.atlassian.net/browse/DBX-1\nnow"},
		{"default width", strings.Repeat("a ", 50), 0, strings.TrimSpace(strings.Repeat("a ", 40)) + "\n" + strings.TrimSpace(strings.Repeat("a ", 10))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WrapText(tt.text, tt.width); got != tt.want {
				t.Errorf("WrapText() = %q, want %q", got, tt.want)
			}
		})
	}
}
