// Package ui provides terminal styling for planvote CLI output.
// Uses the Ayu color theme with adaptive light/dark mode support.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/planvote/planvote/internal/lifecycle"
	"github.com/planvote/planvote/internal/types"
)

// Ayu theme color palette
// Dark: https://terminalcolors.com/themes/ayu/dark/
// Light: https://terminalcolors.com/themes/ayu/light/
var (
	ColorGreen = lipgloss.AdaptiveColor{
		Light: "#86b300", // ayu light bright green
		Dark:  "#c2d94c", // ayu dark bright green
	}
	ColorYellow = lipgloss.AdaptiveColor{
		Light: "#f2ae49", // ayu light bright yellow
		Dark:  "#ffb454", // ayu dark bright yellow
	}
	ColorRed = lipgloss.AdaptiveColor{
		Light: "#f07171", // ayu light bright red
		Dark:  "#f07178", // ayu dark bright red
	}
	ColorGray = lipgloss.AdaptiveColor{
		Light: "#828c99", // ayu light muted
		Dark:  "#6c7680", // ayu dark muted
	}
	ColorBlue = lipgloss.AdaptiveColor{
		Light: "#399ee6", // ayu light bright blue
		Dark:  "#59c2ff", // ayu dark bright blue
	}
	ColorPurple = lipgloss.AdaptiveColor{
		Light: "#a37acc", // ayu light purple
		Dark:  "#d2a6ff", // ayu dark purple
	}
)

// statusStyles maps lifecycle color tags to terminal styles. Unknown
// tags render gray, matching the lifecycle fallback for unknown states.
var statusStyles = map[string]lipgloss.Style{
	"blue":   lipgloss.NewStyle().Foreground(ColorBlue),
	"green":  lipgloss.NewStyle().Foreground(ColorGreen),
	"red":    lipgloss.NewStyle().Foreground(ColorRed),
	"purple": lipgloss.NewStyle().Foreground(ColorPurple),
	"yellow": lipgloss.NewStyle().Foreground(ColorYellow),
	"gray":   lipgloss.NewStyle().Foreground(ColorGray),
}

var (
	MutedStyle  = lipgloss.NewStyle().Foreground(ColorGray)
	AccentStyle = lipgloss.NewStyle().Foreground(ColorBlue)
	ErrorStyle  = lipgloss.NewStyle().Foreground(ColorRed)
)

// HeaderStyle for section headers - bold with accent color
var HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorBlue)

const SeparatorLight = "──────────────────────────────────────────"

// ColorEnabled reports whether the terminal supports color output at
// all. Callers fall back to plain text when it does not.
func ColorEnabled() bool {
	return termenv.EnvColorProfile() != termenv.Ascii
}

// RenderStatus renders a status token with its lifecycle label and
// color. Unknown values get the humanized-gray fallback, never an
// error.
func RenderStatus(kind types.EntityKind, status types.Status) string {
	d := lifecycle.Details(kind, status)
	if !ColorEnabled() {
		return d.Label
	}
	style, ok := statusStyles[d.Color]
	if !ok {
		style = statusStyles["gray"]
	}
	return style.Render(d.Label)
}

// RenderHeader renders a section header in uppercase.
func RenderHeader(s string) string {
	return HeaderStyle.Render(strings.ToUpper(s))
}

// RenderMuted renders text with muted (gray) styling.
func RenderMuted(s string) string {
	return MutedStyle.Render(s)
}

// RenderAccent renders text with accent (blue) styling.
func RenderAccent(s string) string {
	return AccentStyle.Render(s)
}

// RenderError renders text with error (red) styling.
func RenderError(s string) string {
	return ErrorStyle.Render(s)
}

// RenderSeparator renders the light separator line in muted color.
func RenderSeparator() string {
	return MutedStyle.Render(SeparatorLight)
}
