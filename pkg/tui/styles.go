// Package tui implements the interactive chat interview as a Bubble Tea app.
// It renders the session transcript as a conversation, drives one input
// control per step kind, and feeds service call outcomes back into the
// session controller through generation-guarded messages.
package tui

import "github.com/charmbracelet/lipgloss"

// Choice glyphs — convey selection state without relying on color alone.
const (
	GlyphCursor    = "▸"
	GlyphChecked   = "☑"
	GlyphUnchecked = "☐"
)

// Palette adapts to terminal capabilities via lipgloss.
var (
	colorGreen  = lipgloss.Color("42")
	colorRed    = lipgloss.Color("196")
	colorYellow = lipgloss.Color("214")
	colorCyan   = lipgloss.Color("51")
	colorDim    = lipgloss.Color("240")
	colorWhite  = lipgloss.Color("255")
)

// --- Header styles ---

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorCyan).
	Padding(0, 1)

var progressStyle = lipgloss.NewStyle().
	Foreground(colorDim).
	Padding(0, 1)

// --- Transcript styles ---

var (
	assistantStyle = lipgloss.NewStyle().
			Foreground(colorWhite)

	participantStyle = lipgloss.NewStyle().
				Foreground(colorGreen).
				Bold(true)

	participantPrefix = lipgloss.NewStyle().
				Foreground(colorDim)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorCyan).
			Padding(0, 1)
)

// --- Input control styles ---

var (
	optionNormal = lipgloss.NewStyle().
			Foreground(colorWhite)

	optionCurrent = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorYellow)

	optionSelected = lipgloss.NewStyle().
			Foreground(colorGreen)

	fieldLabelStyle = lipgloss.NewStyle().
			Foreground(colorWhite)

	groupHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorCyan)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	previewStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Italic(true)
)

// --- Status styles ---

var (
	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	captionStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	keyStyle = lipgloss.NewStyle().
			Foreground(colorCyan).
			Bold(true)

	keyDescStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	keyBarStyle = lipgloss.NewStyle().
			Padding(0, 1)
)
