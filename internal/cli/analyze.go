package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"botlynx/internal/analyzer"
	"botlynx/internal/database/repositories"
	"botlynx/internal/discovery"
	"botlynx/internal/export"
	"botlynx/internal/report"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	jsonOutput bool
	outputFile string
	storeFlag  bool
	formatFlag string
	topURLs    int
	discover   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [log file...]",
	Short: "Analyze AI crawler traffic in access logs",
	Long: `Analyze one or more access logs (plain or .gz) and report AI crawler activity.
Several files are merged into one report. With --discover and no files, well-known
nginx, Apache, Caddy and Traefik log locations are searched.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the report as JSON instead of tables")
	analyzeCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write the JSON report to a file (.gz compresses)")
	analyzeCmd.Flags().BoolVar(&storeFlag, "store", false, "Save the report in the report store")
	analyzeCmd.Flags().StringVar(&formatFlag, "format", "", "Log format (auto, combined, caddy, traefik)")
	analyzeCmd.Flags().IntVar(&topURLs, "top", 0, "Number of top and failed URLs to list")
	analyzeCmd.Flags().BoolVar(&discover, "discover", false, "Find access logs on this host when no file is given")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	if len(args) == 0 {
		if !discover {
			return fmt.Errorf("no log file given (pass files or --discover)")
		}
		for _, s := range discovery.NewEngine(a.logger).Run() {
			args = append(args, s.Path)
		}
		if len(args) == 0 {
			return fmt.Errorf("no access logs found")
		}
	}

	if formatFlag != "" {
		a.cfg.LogFormat = formatFlag
	}
	if topURLs > 0 {
		a.cfg.TopURLsCount = topURLs
		a.cfg.TopFailedURLsCount = topURLs
	}
	if !jsonOutput {
		printBanner()
	}

	an, err := a.newAnalyzer()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var progress analyzer.ProgressFunc
	var spinner *pterm.SpinnerPrinter
	if !jsonOutput {
		spinner, _ = pterm.DefaultSpinner.Start(fmt.Sprintf("Analyzing %d file(s)...", len(args)))
		progress = func(linesRead, botRequests int) {
			spinner.UpdateText(fmt.Sprintf("Read %d lines, %d bot requests", linesRead, botRequests))
		}
	}

	rep, err := an.AnalyzeFiles(ctx, args, progress)
	if spinner != nil {
		switch {
		case err == nil:
			spinner.Success(fmt.Sprintf("Analysis complete: %d AI bot requests found", rep.TotalRequests))
		case errors.Is(err, report.ErrNoData):
			spinner.Warning("Analysis complete")
		default:
			spinner.Fail("Analysis stopped")
		}
	}

	if errors.Is(err, report.ErrNoData) {
		return writeNoData()
	}
	if err != nil {
		return err
	}

	if outputFile != "" {
		if err := export.WriteJSON(outputFile, rep); err != nil {
			return err
		}
		a.logger.Info("Report written", a.logger.Args("path", outputFile))
	}

	if storeFlag {
		if err := a.store(rep, args); err != nil {
			return err
		}
	}

	if jsonOutput {
		return export.EncodeJSON(os.Stdout, rep)
	}
	printSummary(rep)
	return nil
}

// writeNoData emits the "no data" body wherever a report would have gone.
func writeNoData() error {
	if outputFile != "" {
		if err := export.WriteJSON(outputFile, report.NewNoData()); err != nil {
			return err
		}
	}
	if jsonOutput {
		return export.EncodeJSON(os.Stdout, report.NewNoData())
	}
	pterm.Warning.Println(report.NoDataMessage)
	return nil
}

func (a *app) store(rep *report.Report, sources []string) error {
	db, err := a.openStore()
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	source := sources[0]
	if len(sources) > 1 {
		source = fmt.Sprintf("%s (+%d more)", sources[0], len(sources)-1)
	}

	stored, err := repositories.NewReportRepository(db).Create(rep, source)
	if err != nil {
		return fmt.Errorf("failed to store report: %w", err)
	}
	a.logger.Info("Report stored", a.logger.Args("id", stored.ID, "db", a.cfg.Database.Path))
	return nil
}
