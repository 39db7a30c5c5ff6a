package ui

import "time"

// UI-wide constants to avoid magic numbers/strings scattered across the codebase.

// Icons (emojis/symbols)
const (
	IconSettings = "⚙"
	IconFolder   = "📁"
	IconMusic    = "🎵"
	IconVideo    = "🎬"
)

// Window sizing
const (
	WindowWidth  float32 = 640
	WindowHeight float32 = 420
)

// Layout sizing
const (
	TimeFieldWidth    float32 = 56
	SettingsDialogW   float32 = 520
	SettingsDialogH   float32 = 480
	StatusLabelMinLen         = 40
)

// Delays
const (
	StatusResetDelay = 3 * time.Second
)
