package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"botlynx/internal/api"
	"botlynx/internal/database"
	"botlynx/internal/database/repositories"
	"botlynx/internal/ingestion"

	"github.com/spf13/cobra"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve stored reports and run analyses on server-local log files over HTTP.
The bot patterns file, when configured, is reloaded whenever it changes.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "Listen address (default from config, :8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()
	printBanner()

	an, err := a.newAnalyzer()
	if err != nil {
		return err
	}

	db, err := a.openStore()
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	cleanup := database.NewCleanupService(db, a.logger, a.cfg.Database.RetentionDays, time.Hour, a.cfg.Database.CleanupTime, a.cfg.Database.VacuumEnabled)
	cleanup.Start()
	defer cleanup.Stop()

	if a.cfg.PatternsFile != "" {
		watcher, err := ingestion.NewPatternWatcher(a.cfg.PatternsFile, a.classifier, a.logger)
		if err != nil {
			a.logger.Warn("Bot patterns will not be reloaded", a.logger.Args("error", err))
		} else {
			defer watcher.Close()
		}
	}

	addr := a.cfg.Server.Addr
	if listenAddr != "" {
		addr = listenAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := api.NewServer(addr, api.Deps{
		Config:     a.cfg,
		Analyzer:   an,
		Classifier: a.classifier,
		Reports:    repositories.NewReportRepository(db),
		Cleanup:    cleanup,
		Logger:     a.logger,
	})
	return server.Run(ctx)
}
