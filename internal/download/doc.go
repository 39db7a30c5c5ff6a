package download

// Package download implements the YouTube download service used by the video
// transcription flow and the CLI. It tracks tasks, reports progress through a
// callback and bounds parallel downloads.
