package ui

// Package ui contains the Fyne-based desktop user interface. It has a video
// tab and an audio tab, submits transcription commands to the worker
// executor, and renders executor events. All UI strings are localized via
// Localization.
