//go:build !windows

package cmd

import (
	"os"
	"os/exec"
	"syscall"
)

// setDaemonAttrs puts the background server in its own session so it
// survives the terminal that started it.
func setDaemonAttrs(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}

// shutdownSignals are the signals that stop a foreground server gracefully.
func shutdownSignals() []os.Signal {
	return []os.Signal{syscall.SIGINT, syscall.SIGTERM}
}

// sigTERM returns the termination signal for the platform.
func sigTERM() syscall.Signal { return syscall.SIGTERM }

// sigKILL returns the kill signal for the platform.
func sigKILL() syscall.Signal { return syscall.SIGKILL }
