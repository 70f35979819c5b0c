package cmd

import (
	"context"
	"log/slog"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/joescharf/rutina/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP stdio server",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This lets an assistant read your routines and work through the checklist
for you. Configure it in your MCP client with:

  {
    "mcpServers": {
      "rutina": { "command": "rutina", "args": ["mcp"] }
    }
  }

Available tools: rutina_list_routines, rutina_day_status,
rutina_toggle_exercise, rutina_complete_day, rutina_undo_completion,
rutina_uncomplete_day, rutina_history

A completed day can be undone with rutina_undo_completion for a short
window (undo_window) while the server keeps running.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return mcpRun()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func mcpRun() error {
	s, err := getStore()
	if err != nil {
		return err
	}
	// stdout carries the protocol, so the engine gets no terminal notifier.
	d, err := newAppDeps(s, nil)
	if err != nil {
		return err
	}
	deps = d

	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals()...)
	defer stop()

	if _, err := d.engine.WeeklyReset(ctx); err != nil {
		slog.Warn("weekly reset failed", "error", err)
	}

	srv := mcp.NewServer(d.engine, d.catalog, d.history, d.state, buildVersion)
	return srv.ServeStdio(ctx)
}
