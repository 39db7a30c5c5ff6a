package model

import (
	"fmt"
	"time"
)

// AudioChunk is one contiguous slice of a source audio file
type AudioChunk struct {
	Index int           // zero-based position in the source
	Start time.Duration // inclusive
	End   time.Duration // exclusive
	Path  string        // exported file, empty until written
}

// Duration returns the chunk length
func (c AudioChunk) Duration() time.Duration {
	return c.End - c.Start
}

// String renders the chunk as "#n [start-end)"
func (c AudioChunk) String() string {
	return fmt.Sprintf("#%d [%s-%s)", c.Index+1, c.Start, c.End)
}
