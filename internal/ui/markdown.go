package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// RenderMarkdown renders an issue description with glamour.
// Returns the original text if rendering fails or styling is off.
// Word wraps at terminal width (or 80 columns if width can't be detected).
func RenderMarkdown(markdown string) string {
	// Agents parse the raw text
	if IsAgentMode() {
		return markdown
	}

	// Wider lines are hard to read in a terminal
	const maxReadableWidth = 100
	wrapWidth := min(TerminalWidth(80), maxReadableWidth)

	if !ShouldUseColor() {
		if IsTerminal() {
			return WrapText(markdown, wrapWidth)
		}
		return markdown
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrapWidth),
	)
	if err != nil {
		return markdown
	}

	rendered, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}

	return strings.TrimRight(rendered, "\n") + "\n"
}
