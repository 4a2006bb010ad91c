package runner

import (
	"context"
	"sync"
)

// Recorder is a Runner that records commands instead of running them.
// Tests use it in place of ExecRunner.
type Recorder struct {
	mu       sync.Mutex
	Commands []Command
	// Err, when set, is returned by every Run call.
	Err error
	// Hook, when set, runs for every command and its error is returned.
	Hook func(Command) error
}

func (r *Recorder) Run(_ context.Context, c Command) error {
	r.mu.Lock()
	r.Commands = append(r.Commands, c)
	r.mu.Unlock()
	if r.Hook != nil {
		return r.Hook(c)
	}
	return r.Err
}

// Last returns the most recent command, or false if none ran.
func (r *Recorder) Last() (Command, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Commands) == 0 {
		return Command{}, false
	}
	return r.Commands[len(r.Commands)-1], true
}
