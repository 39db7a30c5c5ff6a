package ui

import (
	"testing"

	"fyne.io/fyne/v2/theme"
)

func TestMagicTheme(t *testing.T) {
	th := NewMagicTheme()

	if got := th.Color(theme.ColorNamePrimary, theme.VariantLight); got != accentColor {
		t.Errorf("primary colour = %v, want %v", got, accentColor)
	}
	if got := th.Size(theme.SizeNamePadding); got != 3 {
		t.Errorf("padding = %v, want 3", got)
	}
	want := theme.DefaultTheme().Size(theme.SizeNameScrollBar)
	if got := th.Size(theme.SizeNameScrollBar); got != want {
		t.Errorf("scroll bar = %v, want default %v", got, want)
	}
}
