package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/renjie/prism-stops/pkg/adapters/ingest"
	"github.com/renjie/prism-stops/pkg/adapters/metrics"
	"github.com/renjie/prism-stops/pkg/adapters/storage"
	"github.com/renjie/prism-stops/pkg/config"
	"github.com/renjie/prism-stops/pkg/core/domain"
	"github.com/renjie/prism-stops/pkg/core/services"
)

var (
	jsonOutput bool
	strict     bool
	initOut    string
)

var recodeCmd = &cobra.Command{
	Use:   "recode",
	Short: "Ingest every configured year, recode it and store the table",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			_, err := a.recode(ctx)
			return err
		})
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the stored table and save the report",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			return a.validate(ctx, cmd.OutOrStdout())
		})
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Recode then validate",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if _, err := a.recode(ctx); err != nil {
				return err
			}
			return a.validate(ctx, cmd.OutOrStdout())
		})
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.DefaultConfig().Save(initOut); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", initOut)
		return nil
	},
}

// app wires configuration, storage and metrics for one command.
type app struct {
	cfg       *config.Config
	store     *storage.SQLiteStore
	collector *metrics.Collector
	logger    *zap.Logger
}

func withApp(cmd *cobra.Command, fn func(context.Context, *app) error) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if dbPath != "" {
		cfg.Storage.Path = dbPath
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	store, err := storage.NewSQLiteStore(cfg.Storage.Path, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	info := domain.NewRunInfo(os.Getenv("USER"), cfg.DataDir)
	ctx = domain.NewContext(ctx, info)

	a := &app{
		cfg:       cfg,
		store:     store,
		collector: metrics.NewCollector(),
		logger:    logger.With(zap.String("run_id", info.RunID)),
	}
	if err := fn(ctx, a); err != nil {
		return err
	}

	if cfg.Metrics.Textfile != "" {
		if err := a.collector.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

func (a *app) recode(ctx context.Context) ([]domain.StandardRecord, error) {
	loader := ingest.NewPartitionLoader(a.cfg.DataDir, a.cfg.FilePattern,
		ingest.WithNAValues(a.cfg.NAValues...),
		ingest.WithLogger(a.logger))
	partitions, _, err := loader.Load(ctx, a.cfg.Years)
	if err != nil {
		return nil, err
	}

	policy, err := a.cfg.FormatPolicy()
	if err != nil {
		return nil, err
	}
	pipeline := services.NewRecodingPipeline(
		services.WithPipelineFormatPolicy(policy),
		services.WithRecoderOptions(
			services.WithRawFieldNames(a.cfg.Fields),
			services.WithForcePrefix(a.cfg.ForcePrefix),
		),
		services.WithConcurrencyLimit(a.cfg.Concurrency),
		services.WithLogger(a.logger),
		services.WithObserver(a.collector),
	)
	records, err := pipeline.Run(ctx, partitions)
	if err != nil {
		return nil, err
	}

	strategy, err := a.cfg.UpsertStrategy()
	if err != nil {
		return nil, err
	}
	if err := a.store.SaveBatch(ctx, records, strategy); err != nil {
		return nil, err
	}
	return records, nil
}

func (a *app) validate(ctx context.Context, out io.Writer) error {
	table, err := a.store.LoadTable(ctx)
	if err != nil {
		return err
	}

	opts := []services.ValidatorOption{
		services.WithValidatorLogger(a.logger),
		services.WithValidatorObserver(a.collector),
	}
	if len(a.cfg.Validation.Checks) > 0 {
		opts = append(opts, services.WithCheckSpecs(a.cfg.Validation.Checks...))
	}
	report, err := services.NewValidator(opts...).Validate(ctx, table)
	if err != nil {
		return err
	}
	if err := a.store.SaveReport(ctx, report); err != nil {
		return err
	}

	if err := printReport(out, report, jsonOutput); err != nil {
		return err
	}
	if strict && !report.Passed {
		return fmt.Errorf("validation failed with %d issues", len(report.Issues))
	}
	return nil
}

func printReport(w io.Writer, report *domain.ValidationReport, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	status := "PASSED"
	if !report.Passed {
		status = "FAILED"
	}
	fmt.Fprintf(w, "validation %s (run %s)\n", status, report.RunID)
	fmt.Fprintf(w, "rows: %d, columns: %d\n", report.RowCount, report.ColumnCount)

	years := make([]int, 0, len(report.YearCounts))
	for y := range report.YearCounts {
		years = append(years, y)
	}
	sort.Ints(years)
	for _, y := range years {
		fmt.Fprintf(w, "  %d: %d rows\n", y, report.YearCounts[y])
	}

	names := report.IssueNames()
	sort.Strings(names)
	for _, name := range names {
		issue := report.Issues[name]
		fmt.Fprintf(w, "  ! %s (%d): %s\n", name, issue.Count, issue.Description)
	}
	return nil
}
