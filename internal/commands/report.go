package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agewise-dev/agewise/internal/bucket"
	"github.com/agewise-dev/agewise/internal/config"
	"github.com/agewise-dev/agewise/internal/connections"
	"github.com/agewise-dev/agewise/internal/export"
	"github.com/agewise-dev/agewise/internal/report"
	"github.com/agewise-dev/agewise/internal/source"
)

type reportFlags struct {
	configPath  string
	reportDate  string
	connIDs     string
	periods     int
	periodOf    int
	periodType  string
	showCurrent bool
	format      string
	output      string
	snapshot    string
	dev         bool
}

func newReportCommand() *cobra.Command {
	var flags reportFlags

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate an aged receivables report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.configPath, "config", "agewise.yaml", "config file path")
	cmd.Flags().StringVar(&flags.reportDate, "report-date", "", "report date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&flags.connIDs, "connections", "", "comma-separated connection or tenant ids (default all active)")
	cmd.Flags().IntVar(&flags.periods, "periods", 4, "number of aging periods")
	cmd.Flags().IntVar(&flags.periodOf, "period-of", 1, "duration of each period")
	cmd.Flags().StringVar(&flags.periodType, "period-type", "Month", "period type (Day, Week, Month)")
	cmd.Flags().BoolVar(&flags.showCurrent, "show-current", true, "show the Current bucket separately")
	cmd.Flags().StringVar(&flags.format, "format", "csv", "output format (csv, json, excel)")
	cmd.Flags().StringVar(&flags.output, "output", "", "output file for csv, directory for excel (default stdout / config output dir)")
	cmd.Flags().StringVar(&flags.snapshot, "snapshot", "", "run offline from a snapshot file instead of the provider")
	cmd.Flags().BoolVar(&flags.dev, "dev", false, "use human-readable console logging")

	return cmd
}

func runReport(ctx context.Context, flags reportFlags) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}

	log, err := buildLogger(flags.dev)
	if err != nil {
		return err
	}
	defer log.Sync()

	periodType, err := bucket.ParsePeriodType(flags.periodType)
	if err != nil {
		return err
	}

	src, store, cleanup, err := buildSource(cfg, flags, log)
	if err != nil {
		return err
	}
	defer cleanup()

	gen := report.NewGenerator(src, store, log)
	res, err := gen.Generate(ctx, report.Params{
		ReportDate:    flags.reportDate,
		ConnectionIDs: flags.connIDs,
		Scheme: bucket.Scheme{
			Periods:     flags.periods,
			PeriodOf:    flags.periodOf,
			PeriodType:  periodType,
			ShowCurrent: flags.showCurrent,
		},
	})
	if err != nil {
		return err
	}

	table := export.BuildTable(res)
	return writeOutput(cfg, flags, res, table)
}

func buildSource(cfg *config.Config, flags reportFlags, log *zap.Logger) (report.Source, report.ConnectionStore, func(), error) {
	if flags.snapshot != "" {
		src, err := source.LoadSnapshot(flags.snapshot)
		if err != nil {
			return nil, nil, nil, err
		}
		store := connections.NewMemoryStore(src.Connections()...)
		return src, store, func() {}, nil
	}

	store, err := connections.Open(cfg.Database.DSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connecting to database: %w", err)
	}
	src := source.NewClient(cfg.Provider.BaseURL, time.Duration(cfg.Provider.Timeout), log)
	return src, store, func() { store.Close() }, nil
}

func writeOutput(cfg *config.Config, flags reportFlags, res *report.Result, table *export.Table) error {
	switch flags.format {
	case "csv":
		out := os.Stdout
		if flags.output != "" {
			f, err := os.Create(flags.output)
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			defer f.Close()
			out = f
		}
		return export.WriteCSV(out, table)

	case "json":
		resp := export.NewTableResponse(res, table)
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)

	case "excel":
		dir := cfg.Report.OutputDir
		if flags.output != "" {
			dir = flags.output
		}
		path, err := export.WriteExcel(res, table, dir)
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	}
	return fmt.Errorf("unknown format %q", flags.format)
}
