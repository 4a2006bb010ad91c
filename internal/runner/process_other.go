//go:build windows

package runner

import (
	"fmt"
	"os/exec"
	"sync"
)

// processCleanup stops the child on cancellation. Windows has no Unix
// process groups, so only the direct process is killed.
type processCleanup struct {
	cmd  *exec.Cmd
	done chan struct{}
	once sync.Once
	err  error
}

func setupProcessGroup(_ *exec.Cmd) {}

func newProcessCleanup(cmd *exec.Cmd, _ bool, cancelCh <-chan struct{}) *processCleanup {
	pc := &processCleanup{
		cmd:  cmd,
		done: make(chan struct{}),
	}
	go pc.watchForCancel(cancelCh)
	return pc
}

func (pc *processCleanup) watchForCancel(cancelCh <-chan struct{}) {
	select {
	case <-cancelCh:
		pc.kill()
	case <-pc.done:
	}
}

func (pc *processCleanup) kill() {
	if pc.cmd.Process == nil {
		return
	}
	_ = pc.cmd.Process.Kill()
}

// Wait waits for the command to complete.
func (pc *processCleanup) Wait() error {
	pc.once.Do(func() {
		pc.err = pc.cmd.Wait()
		close(pc.done)
		if pc.err != nil {
			pc.err = fmt.Errorf("command wait: %w", pc.err)
		}
	})
	return pc.err
}
