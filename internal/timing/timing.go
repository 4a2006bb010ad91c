// Package timing prints startup checkpoints when STACKWRAP_DEBUG_TIMING=1.
package timing

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Env enables checkpoint output.
const Env = "STACKWRAP_DEBUG_TIMING"

// Clock prints the time since the previous and the first checkpoint. A nil
// Clock is disabled.
type Clock struct {
	w     io.Writer
	now   func() time.Time
	start time.Time
	last  time.Time
}

// FromEnv returns a clock writing to w, or nil unless Env is "1".
func FromEnv(w io.Writer) *Clock {
	if os.Getenv(Env) != "1" {
		return nil
	}
	return New(w, time.Now)
}

// New returns a clock started now.
func New(w io.Writer, now func() time.Time) *Clock {
	t := now()
	return &Clock{w: w, now: now, start: t, last: t}
}

// Mark prints a checkpoint.
func (c *Clock) Mark(label string) {
	if c == nil {
		return
	}
	t := c.now()
	fmt.Fprintf(c.w, "[TIMING] %s: +%dms (total: %dms)\n", label, t.Sub(c.last).Milliseconds(), t.Sub(c.start).Milliseconds())
	c.last = t
}
