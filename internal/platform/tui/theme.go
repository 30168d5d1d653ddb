package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/AppIemon/umm-sub002/internal/core"
)

// Preview glyphs. Each glyph maps to one style in the theme.
const (
	GlyphEmpty      = core.Blank
	GlyphTerrain    = '#'
	GlyphHazard     = '^'
	GlyphMoving     = '*'
	GlyphDecoration = 'o'
	GlyphPortal     = '|'
	GlyphPath       = '.'
	GlyphFailure    = 'X'
)

// Theme contains all configurable visual styles.
type Theme struct {
	// Preview cells
	Terrain    lipgloss.Style
	Hazard     lipgloss.Style
	Moving     lipgloss.Style
	Decoration lipgloss.Style
	Portal     lipgloss.Style
	Path       lipgloss.Style
	Failure    lipgloss.Style
	Empty      lipgloss.Style

	// HUD styles
	HUDTitle     lipgloss.Style
	HUDValue     lipgloss.Style
	HUDSeparator lipgloss.Style
	HUDControls  lipgloss.Style

	// Status lines
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

// DefaultTheme returns the default visual theme.
func DefaultTheme() Theme {
	return Theme{
		Terrain:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")), // Dim gray
		Hazard:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")), // Red
		Moving:     lipgloss.NewStyle().Foreground(lipgloss.Color("208")), // Orange
		Decoration: lipgloss.NewStyle().Foreground(lipgloss.Color("226")), // Bright yellow
		Portal:     lipgloss.NewStyle().Foreground(lipgloss.Color("135")).Bold(true),
		Path:       lipgloss.NewStyle().Foreground(lipgloss.Color("51")), // Bright cyan
		Failure:    lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true),
		Empty:      lipgloss.NewStyle(),

		HUDTitle:     lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true),
		HUDValue:     lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
		HUDSeparator: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		HUDControls:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),

		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
}

// Style returns the style for a preview glyph.
func (t Theme) Style(glyph rune) lipgloss.Style {
	switch glyph {
	case GlyphTerrain:
		return t.Terrain
	case GlyphHazard:
		return t.Hazard
	case GlyphMoving:
		return t.Moving
	case GlyphDecoration:
		return t.Decoration
	case GlyphPortal:
		return t.Portal
	case GlyphPath:
		return t.Path
	case GlyphFailure:
		return t.Failure
	default:
		return t.Empty
	}
}
