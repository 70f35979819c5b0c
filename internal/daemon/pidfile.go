// Package daemon tracks a background API server through a PID file that
// also records the address the server listens on.
package daemon

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Info is the content of a PID file.
type Info struct {
	PID  int
	Addr string
}

// PIDFile manages a PID file for daemon process tracking.
type PIDFile struct {
	Path string
}

// NewPIDFile creates a PIDFile manager for the given path.
func NewPIDFile(path string) *PIDFile {
	return &PIDFile{Path: path}
}

// Write records the current process and its listen address.
func (p *PIDFile) Write(addr string) error {
	return p.WriteInfo(Info{PID: os.Getpid(), Addr: addr})
}

// WriteInfo writes the PID on the first line and the address on the second.
func (p *PIDFile) WriteInfo(info Info) error {
	content := strconv.Itoa(info.PID) + "\n"
	if info.Addr != "" {
		content += info.Addr + "\n"
	}
	return os.WriteFile(p.Path, []byte(content), 0o644)
}

// Read reads the PID file. Files without an address line are accepted.
func (p *PIDFile) Read() (Info, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return Info{}, err
	}
	lines := strings.SplitN(strings.TrimSpace(string(data)), "\n", 2)
	pid, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil {
		return Info{}, fmt.Errorf("invalid PID file content: %w", err)
	}
	info := Info{PID: pid}
	if len(lines) == 2 {
		info.Addr = strings.TrimSpace(lines[1])
	}
	return info, nil
}

// Remove deletes the PID file.
func (p *PIDFile) Remove() error {
	return os.Remove(p.Path)
}
