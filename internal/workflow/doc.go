// Package workflow wires media processing, video download and batch
// transcription into the commands run by the GUI, the CLI and the folder
// watcher.
package workflow
