//go:build windows

package daemon

import (
	"fmt"
	"os"
	"syscall"
)

// IsRunning reports the recorded server and whether its process is alive.
// FindProcess always succeeds on Windows, so liveness is probed with a
// zero signal.
func (p *PIDFile) IsRunning() (Info, bool) {
	info, err := p.Read()
	if err != nil {
		return Info{}, false
	}
	pid := info.PID
	proc, err := os.FindProcess(pid)
	if err != nil {
		return info, false
	}
	return info, proc.Signal(syscall.Signal(0)) == nil
}

// Signal sends the given signal to the process in the PID file.
// On Windows, only SIGKILL (os.Kill) is reliably supported.
func (p *PIDFile) Signal(sig syscall.Signal) error {
	info, err := p.Read()
	if err != nil {
		return fmt.Errorf("read PID file: %w", err)
	}
	pid := info.PID
	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find process %d: %w", pid, err)
	}
	return proc.Signal(sig)
}
