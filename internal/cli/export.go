package cli

import (
	"context"
	"fmt"

	"botlynx/internal/database/repositories"
	"botlynx/internal/export"
	"botlynx/internal/report"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	reportID  uint
	projectID int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export reports to other systems",
}

var exportMySQLCmd = &cobra.Command{
	Use:   "mysql [report.json]",
	Short: "Write per-bot, per-method and per-status aggregates to MySQL",
	Long: `Write a report's aggregates to MySQL, replacing the rows of its month.
The report comes from a JSON file or, with --id, from the report store.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExportMySQL,
}

func init() {
	exportMySQLCmd.Flags().UintVar(&reportID, "id", 0, "Stored report id")
	exportMySQLCmd.Flags().IntVar(&projectID, "project-id", 0, "Project id (default from config)")
	exportCmd.AddCommand(exportMySQLCmd)
}

func runExportMySQL(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}

	rep, err := a.loadReport(args)
	if err != nil {
		return err
	}

	if projectID > 0 {
		a.cfg.MySQL.ProjectID = projectID
	}

	ctx := context.Background()
	db, err := export.OpenMySQL(ctx, a.cfg.MySQL)
	if err != nil {
		return err
	}
	defer db.Close()

	exporter := export.NewMySQLExporter(db, a.cfg.MySQL.ProjectID, a.logger)
	if err := exporter.EnsureTables(ctx); err != nil {
		return err
	}
	if err := exporter.Export(ctx, rep); err != nil {
		return err
	}

	pterm.Success.Printfln("Exported %d bots to %s (project %d)", len(rep.BotStatistics), a.cfg.MySQL.Database, a.cfg.MySQL.ProjectID)
	return nil
}

func (a *app) loadReport(args []string) (*report.Report, error) {
	switch {
	case reportID > 0 && len(args) > 0:
		return nil, fmt.Errorf("give either a report file or --id, not both")
	case len(args) == 1:
		return export.ReadJSON(args[0])
	case reportID == 0:
		return nil, fmt.Errorf("a report file or --id is required")
	}

	db, err := a.openStore()
	if err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	stored, err := repositories.NewReportRepository(db).FindByID(reportID)
	if err != nil {
		return nil, err
	}
	return repositories.DecodeReport(stored)
}
