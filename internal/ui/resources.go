package ui

import (
	"fyne.io/fyne/v2"
)

const (
	AppIcon = "media-magic.png"
)

// LoadLogoResource loads the application icon next to the binary
func LoadLogoResource() (fyne.Resource, error) {
	return fyne.LoadResourceFromPath(AppIcon)
}
