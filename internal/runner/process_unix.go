//go:build !windows

package runner

import (
	"fmt"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
)

// gracefulShutdownDelay is the time to wait between SIGTERM and SIGKILL.
const gracefulShutdownDelay = 100 * time.Millisecond

// processCleanup stops the child when the context is cancelled and waits
// for it exactly once.
type processCleanup struct {
	cmd     *exec.Cmd
	grouped bool
	done    chan struct{}
	once    sync.Once
	err     error
}

// setupProcessGroup configures command to run in its own process group.
func setupProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// newProcessCleanup must be called after cmd.Start.
func newProcessCleanup(cmd *exec.Cmd, grouped bool, cancelCh <-chan struct{}) *processCleanup {
	pc := &processCleanup{
		cmd:     cmd,
		grouped: grouped,
		done:    make(chan struct{}),
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
	process := pc.cmd.Process
	if process == nil {
		return
	}

	pid := process.Pid
	if pid <= 0 {
		log.Warn("invalid PID, skipping kill", "pid", pid)
		return
	}

	target := pid
	if pc.grouped {
		target = -pid
	}

	if err := syscall.Kill(target, syscall.SIGTERM); err != nil && err != syscall.ESRCH {
		log.Warn("SIGTERM failed", "pid", target, "err", err)
	}

	time.Sleep(gracefulShutdownDelay)

	if err := syscall.Kill(target, syscall.SIGKILL); err != nil && err != syscall.ESRCH {
		log.Warn("SIGKILL failed", "pid", target, "err", err)
	}
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
