//go:build !windows

package daemon

import (
	"fmt"
	"syscall"
)

// IsRunning reports the recorded server and whether its process is alive.
func (p *PIDFile) IsRunning() (Info, bool) {
	info, err := p.Read()
	if err != nil {
		return Info{}, false
	}
	// Signal 0 tests if the process exists without sending a signal.
	return info, syscall.Kill(info.PID, 0) == nil
}

// Signal sends the given signal to the process in the PID file.
func (p *PIDFile) Signal(sig syscall.Signal) error {
	info, err := p.Read()
	if err != nil {
		return fmt.Errorf("read PID file: %w", err)
	}
	return syscall.Kill(info.PID, sig)
}
