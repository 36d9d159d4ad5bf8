package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tokenscope/tokenscope/internal/monitor"
)

var monitorPort int

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Serve health and Prometheus metrics over HTTP",
	Long: `Serve the operational endpoints until interrupted:

  GET /health   provider circuit states and uptime
  GET /metrics  Prometheus metrics`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().IntVar(&monitorPort, "port", 0, "Listen port (config value if unset)")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}

	port := a.cfg.Monitor.Port
	if monitorPort > 0 {
		port = monitorPort
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := monitor.New(a.nansenHTTP, a.cgHTTP)
	if err := srv.ListenAndServe(ctx, port); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
