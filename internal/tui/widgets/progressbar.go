// ABOUTME: Lesson progress bar for enrolled courses
// ABOUTME: Colors the filled portion by how far along the course is

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ProgressBarConfig holds configuration for the progress bar
type ProgressBarConfig struct {
	Width        int
	StartedColor lipgloss.Color
	HalfwayColor lipgloss.Color // at or past 50%
	DoneColor    lipgloss.Color // at 100%
	EmptyColor   lipgloss.Color
}

// DefaultProgressBarConfig returns the browser's colors at width 20
func DefaultProgressBarConfig() ProgressBarConfig {
	return ProgressBarConfig{
		Width:        20,
		StartedColor: lipgloss.Color("#3B82F6"), // Blue
		HalfwayColor: lipgloss.Color("#8B5CF6"), // Purple
		DoneColor:    lipgloss.Color("#10B981"), // Green
		EmptyColor:   lipgloss.Color("#374151"), // Dark gray
	}
}

// Filled returns how many of width cells a percentage fills
func Filled(percent, width int) int {
	percent = min(max(percent, 0), 100)
	return percent * width / 100
}

// ProgressBar renders percent (clamped to 0..100) as a bracketed bar
func ProgressBar(percent int, config ProgressBarConfig) string {
	if config.Width <= 0 {
		config.Width = 20
	}
	filled := Filled(percent, config.Width)

	color := config.StartedColor
	switch {
	case percent >= 100:
		color = config.DoneColor
	case percent >= 50:
		color = config.HalfwayColor
	}

	var bar strings.Builder
	bar.WriteString("[")
	bar.WriteString(lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)))
	bar.WriteString(lipgloss.NewStyle().Foreground(config.EmptyColor).Render(strings.Repeat("░", config.Width-filled)))
	bar.WriteString("]")
	return bar.String()
}

// ProgressBarWithLabel renders the bar followed by the percentage
func ProgressBarWithLabel(percent int, config ProgressBarConfig) string {
	label := fmt.Sprintf("%3d%%", min(max(percent, 0), 100))
	if percent >= 100 {
		label = lipgloss.NewStyle().Foreground(config.DoneColor).Bold(true).Render(label)
	}
	return ProgressBar(percent, config) + " " + label
}

// CompactProgressBar renders a minimal bar for list rows
func CompactProgressBar(percent, width int, color lipgloss.Color) string {
	if width <= 0 {
		width = 10
	}
	filled := Filled(percent, width)
	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("▓", filled)) +
		lipgloss.NewStyle().Foreground(lipgloss.Color("#374151")).Render(strings.Repeat("░", width-filled))
}
