package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsTerminal reports whether stdout is attached to a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// IsInputTerminal reports whether stdin is attached to a terminal.
// Interactive prompts are only shown when both ends are terminals.
func IsInputTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// IsAgentMode reports whether output is being consumed by a coding agent
// (SK_AGENT_MODE=1). Agent mode keeps output free of styling and wrapping.
func IsAgentMode() bool {
	v := os.Getenv("SK_AGENT_MODE")
	return v != "" && v != "0" && v != "false"
}

// ShouldUseColor follows the NO_COLOR and CLICOLOR conventions:
//   - NO_COLOR set: never
//   - CLICOLOR=0: never
//   - CLICOLOR_FORCE set: always, even when piped
//   - otherwise: only when stdout is a terminal
func ShouldUseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("CLICOLOR") == "0" {
		return false
	}
	if f := os.Getenv("CLICOLOR_FORCE"); f != "" && f != "0" {
		return true
	}
	if IsAgentMode() {
		return false
	}
	return IsTerminal()
}

// ColorProfile returns the termenv profile sk renders with.
func ColorProfile() termenv.Profile {
	if !ShouldUseColor() {
		return termenv.Ascii
	}
	p := termenv.NewOutput(os.Stdout).EnvColorProfile()
	if p == termenv.Ascii {
		// CLICOLOR_FORCE on a pipe: fall back to the basic palette.
		return termenv.ANSI
	}
	return p
}

// InitColor applies ColorProfile to lipgloss. Call once after flags are parsed.
func InitColor() {
	lipgloss.SetColorProfile(ColorProfile())
}

// TerminalWidth returns the stdout width, or fallback when unknown.
func TerminalWidth(fallback int) int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return fallback
}
