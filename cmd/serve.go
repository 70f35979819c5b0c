package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/rutina/internal/api"
	"github.com/joescharf/rutina/internal/daemon"
	"github.com/joescharf/rutina/internal/timer"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local REST API server",
	Long: `Start an HTTP server exposing the checklist, history, stats and timer
as a JSON API under /api/v1. It listens on 127.0.0.1:8484 by default; use
--port to change it. 'rutina serve start' runs it in the background.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveRun()
	},
}

var serveStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the API server in the background",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveStartRun()
	},
}

var serveStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the background API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveStopRun()
	},
}

var serveStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the background API server is running",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveStatusRun()
	},
}

func init() {
	serveCmd.PersistentFlags().IntP("port", "p", 8484, "port to listen on")
	_ = viper.BindPFlag("serve.port", serveCmd.PersistentFlags().Lookup("port"))

	serveCmd.AddCommand(serveStartCmd)
	serveCmd.AddCommand(serveStopCmd)
	serveCmd.AddCommand(serveStatusCmd)
	rootCmd.AddCommand(serveCmd)
}

func serveAddr() string {
	return net.JoinHostPort(viper.GetString("serve.host"), strconv.Itoa(viper.GetInt("serve.port")))
}

func pidFile() *daemon.PIDFile {
	return daemon.NewPIDFile(filepath.Join(viper.GetString("state_dir"), "rutina-serve.pid"))
}

func serveLogPath() string {
	return filepath.Join(viper.GetString("state_dir"), "rutina-serve.log")
}

func serveRun() error {
	pf := pidFile()
	if info, running := pf.IsRunning(); running && info.PID != os.Getpid() {
		return fmt.Errorf("server already running (pid %d at %s)", info.PID, info.Addr)
	}

	s, err := getStore()
	if err != nil {
		return err
	}
	d, err := newAppDeps(s, api.LogNotifier{})
	if err != nil {
		return err
	}
	deps = d

	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals()...)
	defer stop()

	if _, err := d.engine.WeeklyReset(ctx); err != nil {
		slog.Warn("weekly reset failed", "error", err)
	}
	clock, err := timer.Load(ctx, d.state, time.Now())
	if err != nil {
		return err
	}

	addr := serveAddr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewServer(d.engine, d.catalog, d.history, d.state, clock, d.loc).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if err := pf.Write(addr); err != nil {
		return fmt.Errorf("write PID file: %w", err)
	}
	defer func() { _ = pf.Remove() }()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	ui.Info("Serving API at http://%s/api/v1", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	slog.Info("shutting down API server")
	return srv.Shutdown(shutdownCtx)
}

func serveStartRun() error {
	pf := pidFile()
	if info, running := pf.IsRunning(); running {
		return fmt.Errorf("server already running (pid %d at %s)", info.PID, info.Addr)
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("find executable: %w", err)
	}
	args := []string{"serve", "--port", strconv.Itoa(viper.GetInt("serve.port"))}
	if cfg, _ := rootCmd.PersistentFlags().GetString("config"); cfg != "" {
		args = append(args, "--config", cfg)
	}

	if dryRun {
		ui.DryRunMsg("Would start %s %v (log: %s)", exe, args, serveLogPath())
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(serveLogPath()), 0o755); err != nil {
		return err
	}
	logFile, err := os.OpenFile(serveLogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	child := exec.Command(exe, args...)
	child.Stdout = logFile
	child.Stderr = logFile
	setDaemonAttrs(child)
	if err := child.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	addr := serveAddr()
	if err := pf.WriteInfo(daemon.Info{PID: child.Process.Pid, Addr: addr}); err != nil {
		return fmt.Errorf("write PID file: %w", err)
	}
	_ = child.Process.Release()

	ui.Success("API server started (pid %d) at http://%s/api/v1", child.Process.Pid, addr)
	ui.VerboseLog("Logging to %s", serveLogPath())
	return nil
}

func serveStopRun() error {
	pf := pidFile()
	info, running := pf.IsRunning()
	if !running {
		_ = pf.Remove()
		return fmt.Errorf("server is not running")
	}

	if dryRun {
		ui.DryRunMsg("Would stop server (pid %d)", info.PID)
		return nil
	}

	if err := pf.Signal(sigTERM()); err != nil {
		return fmt.Errorf("signal server: %w", err)
	}
	deadline := time.Now().Add(shutdownTimeout)
	for time.Now().Before(deadline) {
		if _, running := pf.IsRunning(); !running {
			_ = pf.Remove()
			ui.Success("API server stopped")
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}

	slog.Warn("server did not stop in time, killing", "pid", info.PID)
	if err := pf.Signal(sigKILL()); err != nil {
		return fmt.Errorf("kill server: %w", err)
	}
	_ = pf.Remove()
	ui.Warning("API server killed (pid %d)", info.PID)
	return nil
}

func serveStatusRun() error {
	info, running := pidFile().IsRunning()
	if !running {
		ui.Info("API server is not running")
		return nil
	}
	ui.Success("API server running (pid %d) at http://%s/api/v1", info.PID, info.Addr)
	return nil
}
