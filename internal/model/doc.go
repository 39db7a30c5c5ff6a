package model

// Package model defines domain data structures shared across the app: task
// and batch status enums, remote transcription job payloads, audio chunks,
// download tasks and playlist entities.
