package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Colorize applies the given color to the text using lipgloss.
// color is a 24-bit RGB integer.
func Colorize(text string, color int) string {
	hexColor := fmt.Sprintf("#%06x", color)
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(hexColor))
	return style.Render(text)
}

// Loader brand colors.
const (
	colorVanilla = 0x7fb238
	colorForge   = 0xdf8e3c
	colorFabric  = 0xdbd0b4
)

// LoaderColor returns the color used to render a loader name.
func LoaderColor(loader string) int {
	switch loader {
	case "forge":
		return colorForge
	case "fabric":
		return colorFabric
	default:
		return colorVanilla
	}
}

var (
	Title   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	Muted   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	Success = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	Warning = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	Failure = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Level renders a console log level tag.
func Level(level string) string {
	tag := fmt.Sprintf("[%-5s]", level)
	switch level {
	case "WARN":
		return Warning.Render(tag)
	case "ERROR":
		return Failure.Render(tag)
	case "DEBUG":
		return Muted.Render(tag)
	default:
		return Success.Render(tag)
	}
}
