package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/rutina/internal/daemon"
)

func TestPidFile_Path(t *testing.T) {
	dir := testEnv(t)

	assert.Equal(t, filepath.Join(dir, "rutina-serve.pid"), pidFile().Path)
}

func TestServeLogPath(t *testing.T) {
	dir := testEnv(t)

	assert.Equal(t, filepath.Join(dir, "rutina-serve.log"), serveLogPath())
}

func TestServeAddr(t *testing.T) {
	testEnv(t)

	assert.Equal(t, "127.0.0.1:8484", serveAddr())
	viper.Set("serve.port", 9000)
	assert.Equal(t, "127.0.0.1:9000", serveAddr())
}

func TestServeStatusRun_NotRunning(t *testing.T) {
	testEnv(t)

	// No PID file exists, so status should show "not running" without error.
	require.NoError(t, serveStatusRun())
	assert.Contains(t, outString(), "not running")
}

func TestServeStopRun_NotRunning(t *testing.T) {
	testEnv(t)

	err := serveStopRun()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not running")
}

func TestServeStartRun_AlreadyRunning(t *testing.T) {
	dir := testEnv(t)

	// Write a PID file for the current process (which is alive).
	pf := daemon.NewPIDFile(filepath.Join(dir, "rutina-serve.pid"))
	require.NoError(t, pf.Write("127.0.0.1:8484"))
	t.Cleanup(func() { _ = os.Remove(pf.Path) })

	err := serveStartRun()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")

	require.NoError(t, serveStatusRun())
	assert.Contains(t, outString(), "127.0.0.1:8484")
}
