package main

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#B48EAD"))

	positiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	negativeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	boldStyle = lipgloss.NewStyle().Bold(true)
)
