package daemon

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIDFile_WriteAndRead(t *testing.T) {
	pf := NewPIDFile(filepath.Join(t.TempDir(), "serve.pid"))

	require.NoError(t, pf.WriteInfo(Info{PID: 12345, Addr: "127.0.0.1:8484"}))

	info, err := pf.Read()
	require.NoError(t, err)
	assert.Equal(t, Info{PID: 12345, Addr: "127.0.0.1:8484"}, info)
}

func TestPIDFile_Write_CurrentPID(t *testing.T) {
	pf := NewPIDFile(filepath.Join(t.TempDir(), "serve.pid"))

	require.NoError(t, pf.Write(":8484"))

	info, err := pf.Read()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), info.PID)
	assert.Equal(t, ":8484", info.Addr)
}

func TestPIDFile_Read_PIDOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serve.pid")
	require.NoError(t, os.WriteFile(path, []byte("42\n"), 0o644))

	info, err := NewPIDFile(path).Read()
	require.NoError(t, err)
	assert.Equal(t, 42, info.PID)
	assert.Empty(t, info.Addr)
}

func TestPIDFile_Read_MissingFile(t *testing.T) {
	pf := NewPIDFile(filepath.Join(t.TempDir(), "nonexistent.pid"))

	_, err := pf.Read()
	assert.Error(t, err)
}

func TestPIDFile_Read_InvalidContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.pid")
	require.NoError(t, os.WriteFile(path, []byte("not-a-number\n:8484\n"), 0o644))

	_, err := NewPIDFile(path).Read()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid PID file content")
}

func TestPIDFile_Remove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serve.pid")
	pf := NewPIDFile(path)
	require.NoError(t, pf.WriteInfo(Info{PID: 1}))

	require.NoError(t, pf.Remove())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	assert.Error(t, pf.Remove())
}

func TestPIDFile_IsRunning(t *testing.T) {
	pf := NewPIDFile(filepath.Join(t.TempDir(), "serve.pid"))

	info, running := pf.IsRunning()
	assert.False(t, running)
	assert.Zero(t, info.PID)

	require.NoError(t, pf.Write(":8484"))
	info, running = pf.IsRunning()
	assert.True(t, running)
	assert.Equal(t, os.Getpid(), info.PID)

	// A very high PID that almost certainly doesn't exist.
	require.NoError(t, pf.WriteInfo(Info{PID: 999999}))
	info, running = pf.IsRunning()
	assert.Equal(t, 999999, info.PID)
	assert.False(t, running)
}

func TestPIDFile_Signal(t *testing.T) {
	pf := NewPIDFile(filepath.Join(t.TempDir(), "serve.pid"))

	err := pf.Signal(syscall.Signal(0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read PID file")

	require.NoError(t, pf.Write(""))
	// Signal 0 just checks if process exists, doesn't actually send a signal.
	assert.NoError(t, pf.Signal(syscall.Signal(0)))
}
