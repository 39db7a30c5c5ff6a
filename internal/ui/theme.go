package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// MagicTheme wraps the default fyne theme with the app accent palette and
// slightly tighter spacing for the two-tab form layout.
type MagicTheme struct {
	base fyne.Theme
}

var (
	accentColor  = color.NRGBA{R: 123, G: 31, B: 162, A: 255}
	successColor = color.NRGBA{R: 46, G: 160, B: 67, A: 255}
	errorColor   = color.NRGBA{R: 183, G: 28, B: 28, A: 255}
)

// Sizes overridden relative to the default theme
var magicSizes = map[fyne.ThemeSizeName]float32{
	theme.SizeNamePadding:      3,
	theme.SizeNameInnerPadding: 6,
	theme.SizeNameLineSpacing:  2,
	theme.SizeNameText:         13,
	theme.SizeNameHeadingText:  16,
	theme.SizeNameInputRadius:  3,
}

// NewMagicTheme creates the application theme
func NewMagicTheme() fyne.Theme {
	return &MagicTheme{base: theme.DefaultTheme()}
}

// Color returns the accent palette for status and primary colours
func (t *MagicTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary, theme.ColorNameFocus:
		return accentColor
	case theme.ColorNameSuccess:
		return successColor
	case theme.ColorNameError:
		return errorColor
	}
	return t.base.Color(name, variant)
}

func (t *MagicTheme) Font(style fyne.TextStyle) fyne.Resource {
	return t.base.Font(style)
}

func (t *MagicTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return t.base.Icon(name)
}

// Size returns the compact sizes, falling back to the base theme
func (t *MagicTheme) Size(name fyne.ThemeSizeName) float32 {
	if size, ok := magicSizes[name]; ok {
		return size
	}
	return t.base.Size(name)
}
