package bluraysup

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Failure kinds reported by the encoder. All of them abort the whole stream,
// match them with errors.Is.
var (
	ErrPaletteOverflow = errors.New("palette overflow")
	ErrObjectTooLarge  = errors.New("object too large")
	ErrMalformedInput  = errors.New("malformed input")
	ErrIOFailure       = errors.New("i/o failure")
)

// CueError ties a failure to the zero-based position of the cue in the input.
type CueError struct {
	Index int
	Err   error
}

func (c *CueError) Error() string {
	return fmt.Sprintf("subtitle %d: %v", c.Index+1, c.Err)
}

func (c *CueError) Unwrap() error {
	return c.Err
}
