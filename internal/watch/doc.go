// Package watch transcribes audio files as they appear in a directory.
package watch
