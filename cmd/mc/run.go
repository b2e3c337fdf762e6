package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/openclaw/missionctl/internal/api"
	"github.com/openclaw/missionctl/internal/db"
	"github.com/openclaw/missionctl/internal/ingestd"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var (
		configPath string
		serveAPI   bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the ingestion daemon",
		Long:  "Tails the gateway, watchdog, and session logs into the store and keeps the roster, task queue, and cron schedule mirrors in sync. Runs until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd, configPath, serveAPI)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "missionctl.yaml", "path to config file")
	cmd.Flags().BoolVar(&serveAPI, "api", false, "also serve the HTTP ingest API")
	return cmd
}

func runDaemon(cmd *cobra.Command, configPath string, serveAPI bool) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(cmd.OutOrStdout(), "\nReceived %s, shutting down...\n", sig)
		cancel()
	}()

	return ingestd.Run(ctx, ingestd.Opts{
		DB:       gormDB,
		Cfg:      cfg,
		ServeAPI: serveAPI,
		Out:      cmd.OutOrStdout(),
	})
}

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP ingest API",
		Long:  "Serves POST /api/ingest (bearer-token authenticated) and GET /api/health without running the tailers. Use `run --api` for both.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "missionctl.yaml", "path to config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (default: ingest.port from config)")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}
	if port == 0 {
		port = cfg.Ingest.Port
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(cmd.OutOrStdout(), "\nReceived %s, shutting down...\n", sig)
		cancel()
	}()

	return api.Start(ctx, api.StartOpts{
		DB:     gormDB,
		Port:   port,
		APIKey: cfg.Ingest.APIKey,
		Out:    cmd.OutOrStdout(),
	})
}

func newSyncCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run every one-shot sync once",
		Long:  "Syncs the agent roster, cron jobs, and task queue markdown into the store, then exits. Useful after editing the openclaw config by hand.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			if err := db.AutoMigrate(gormDB); err != nil {
				return err
			}
			return ingestd.SyncAll(gormDB, cfg, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "missionctl.yaml", "path to config file")
	return cmd
}
