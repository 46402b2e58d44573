package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mrz1836/janitor/internal/server"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var serveListen string

// serveCmd runs the read-only HTTP API.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve scan results over a read-only HTTP API",
	Long: `Run an HTTP server exposing holdings, approvals and rescans of any wallet.

Routes:
  GET  /v1/{chain}/{address}/holdings   classified holdings (?show_hidden=true)
  GET  /v1/{chain}/{address}/approvals  active approvals and delegates
  POST /v1/{chain}/{address}/scan       run a fresh scan
  GET  /healthz                         liveness
  GET  /metrics                         Prometheus metrics

The server never signs. It stops cleanly on SIGINT or SIGTERM.`,
	Example: `  janitor serve
  janitor serve --listen 0.0.0.0:9090`,
	RunE: runServe,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.GroupID = "config"

	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (default: server.listen from config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	addr := serveListen
	if addr == "" {
		addr = cc.Cfg.Server.Listen
	}

	scans, err := cc.Factory.ScanService()
	if err != nil {
		return err
	}
	reporter, err := cc.Factory.Reporter()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(scans, reporter, cc.Log.Zap()).ListenAndServe(ctx, addr)
}
