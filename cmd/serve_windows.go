//go:build windows

package cmd

import (
	"os"
	"os/exec"
	"syscall"
)

// setDaemonAttrs is a no-op on Windows (no Setsid equivalent).
func setDaemonAttrs(_ *exec.Cmd) {}

// shutdownSignals are the signals that stop a foreground server gracefully.
func shutdownSignals() []os.Signal {
	return []os.Signal{os.Interrupt}
}

// sigTERM returns the termination signal for the platform. Windows can only
// deliver a kill, so it terminates the process like sigKILL.
func sigTERM() syscall.Signal { return syscall.SIGTERM }

// sigKILL returns the kill signal for the platform.
func sigKILL() syscall.Signal { return syscall.SIGKILL }
