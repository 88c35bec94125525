package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rsbsa-tools/registry-triage/pkg/audit"
	"github.com/rsbsa-tools/registry-triage/pkg/config"
	"github.com/rsbsa-tools/registry-triage/pkg/ingest"
	"github.com/rsbsa-tools/registry-triage/pkg/model"
	"github.com/rsbsa-tools/registry-triage/pkg/pipeline"
	"github.com/rsbsa-tools/registry-triage/pkg/progress"
)

var (
	cfg    *config.Config
	logger *zap.Logger
	store  *audit.Store
)

func main() {
	// .env is optional; environment variables win either way.
	_ = godotenv.Load()

	var err error
	cfg, err = config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err = newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	store, err = openStore(cfg)
	if err != nil {
		logger.Warn("Audit store unavailable, continuing without persistence", zap.Error(err))
	}
	if store != nil {
		defer store.Close()
	}

	rootCmd := &cobra.Command{
		Use:   "rsbsa-toolbelt",
		Short: "RSBSA registry triage toolbelt",
		Long:  `Batch utilities for triaging, enriching, and summarizing RSBSA farmer-registry exports`,
	}

	rootCmd.AddCommand(createTriageCmd())
	rootCmd.AddCommand(createEnrichCmd())
	rootCmd.AddCommand(createSummaryCmd())
	rootCmd.AddCommand(createStackCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// createTriageCmd creates the masterlist triage subcommand
func createTriageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "triage [masterlist.csv] [parcel.csv]",
		Short: "Triage a masterlist against the parcel list",
		Long:  `Flags strict duplicates, fuzzy identity conflicts, and bio-data mismatches, then splits the masterlist into clean and erroneous partitions`,
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			masterlist, parcel := loadTwo(args[0], args[1])

			p := newPipeline()
			spinner := progress.NewSpinner(os.Stderr, "triaging masterlist")
			spinner.Start()
			result, err := p.RunTriage(masterlist, parcel)
			spinner.Stop()
			if err != nil {
				logger.Fatal("Triage run failed", zap.Error(err))
			}

			writeOutput("clean_with_reference.csv", result.CleanWithReference)
			writeOutput("clean_without_reference.csv", result.CleanWithoutReference)
			writeOutput("erroneous.csv", result.Erroneous)

			fmt.Printf("Triage complete: %d clean with reference, %d clean without, %d erroneous (%.1f%%)\n",
				result.CleanWithReference.Len(),
				result.CleanWithoutReference.Len(),
				result.Erroneous.Len(),
				result.ErrorRate())
		},
	}
}

// createEnrichCmd creates the geotag enrichment subcommand
func createEnrichCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enrich [geotag.csv] [parcel.csv]",
		Short: "Enrich geotag records with parcel areas and findings",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			geotag, parcel := loadTwo(args[0], args[1])

			p := newPipeline()
			spinner := progress.NewSpinner(os.Stderr, "enriching geotag records")
			spinner.Start()
			result, err := p.RunEnrichment(geotag, parcel)
			spinner.Stop()
			if err != nil {
				logger.Fatal("Enrichment run failed", zap.Error(err))
			}

			writeOutput("enriched.csv", result.Enriched)

			fmt.Printf("Enrichment complete: %d rows, %d tie-break discards\n",
				result.Enriched.Len(), len(result.Discards))
			for verdict, count := range result.VerdictCounts {
				fmt.Printf("  %s: %d\n", verdict, count)
			}
		},
	}
}

// createSummaryCmd creates the regional summary subcommand
func createSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary [geotag.csv]",
		Short: "Aggregate records into the per-barangay regional report",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ds, err := ingest.ReadCSV(args[0])
			if err != nil {
				logger.Fatal("Failed to read input", zap.Error(err))
			}

			p := newPipeline()
			spinner := progress.NewSpinner(os.Stderr, "building regional summary")
			spinner.Start()
			result, err := p.RunSummary(ds)
			spinner.Stop()
			if err != nil {
				logger.Fatal("Summary run failed", zap.Error(err))
			}

			writeOutput("summary.csv", result.Report)

			fmt.Printf("Summary complete: %d rows across %d barangay groups\n",
				result.InputRows, len(result.Summaries))
		},
	}
}

// createStackCmd creates the file stacking subcommand
func createStackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stack [output.csv] [inputs...]",
		Short: "Stack per-municipality exports into one file",
		Long:  `Combines input CSVs sharing an identical column layout into one output with a source-file column; inputs are deleted only after the combined file is written`,
		Args:  cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			output := filepath.Join(cfg.OutputDir, args[0])
			result, err := ingest.NewStacker(logger).Stack(args[1:], output)
			if err != nil {
				logger.Fatal("Stack failed", zap.Error(err))
			}

			fmt.Printf("Stacked %d files (%d rows) into %s\n",
				result.Files, result.Rows, result.Output)
		},
	}
}

func newPipeline() *pipeline.Pipeline {
	p, err := pipeline.New(cfg, store, logger)
	if err != nil {
		logger.Fatal("Failed to build pipeline", zap.Error(err))
	}
	return p
}

func loadTwo(primaryPath, referencePath string) (*model.Dataset, *model.Dataset) {
	primary, err := ingest.ReadCSV(primaryPath)
	if err != nil {
		logger.Fatal("Failed to read primary input", zap.Error(err))
	}
	reference, err := ingest.ReadCSV(referencePath)
	if err != nil {
		logger.Fatal("Failed to read reference input", zap.Error(err))
	}
	return primary, reference
}

func writeOutput(name string, ds *model.Dataset) {
	path := filepath.Join(cfg.OutputDir, name)
	if err := ingest.WriteCSV(path, ds); err != nil {
		logger.Fatal("Failed to write output", zap.String("path", path), zap.Error(err))
	}
	logger.Info("Wrote output", zap.String("path", path), zap.Int("rows", ds.Len()))
}

func openStore(cfg *config.Config) (*audit.Store, error) {
	if cfg.AuditDBPath == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.AuditDBPath), 0o755); err != nil {
		return nil, err
	}
	return audit.Open(cfg.AuditDBPath, logger)
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.LogFormat == "console" {
		zcfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	return zcfg.Build()
}
