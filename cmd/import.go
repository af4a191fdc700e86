package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/safety-index/internal/fetcher"
	"github.com/sells-group/safety-index/internal/ingest"
	"github.com/sells-group/safety-index/internal/store"
)

var importSkipMigrate bool

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load OSHA ITA filings or the NAICS taxonomy into the store",
}

var importITACmd = &cobra.Command{
	Use:   "ita <path-or-url>",
	Short: "Import an OSHA ITA 300A summary export (.csv, .xlsx or .zip)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd.Context(), func(ctx context.Context, st store.Store, f fetcher.Fetcher) (*ingest.Result, error) {
			l := &ingest.ITALoader{
				Sink:      st,
				Fetcher:   f,
				BatchSize: cfg.Import.BatchSize,
				TempDir:   cfg.Import.TempDir,
			}
			return l.Load(ctx, args[0])
		})
	},
}

var importNAICSCmd = &cobra.Command{
	Use:   "naics <file.yaml|file.csv|builtin>",
	Short: "Seed the NAICS taxonomy table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd.Context(), func(ctx context.Context, st store.Store, f fetcher.Fetcher) (*ingest.Result, error) {
			l := &ingest.NAICSLoader{Sink: st, Fetcher: f, TempDir: cfg.Import.TempDir}
			return l.Load(ctx, args[0])
		})
	},
}

func runImport(ctx context.Context, load func(context.Context, store.Store, fetcher.Fetcher) (*ingest.Result, error)) error {
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	if !importSkipMigrate {
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "import: migrate")
		}
	}

	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent: cfg.Import.UserAgent,
		Retry:     cfg.Resilience.Policy(),
	})
	res, err := load(ctx, guard(st), f)
	if err != nil {
		return eris.Wrap(err, "import")
	}

	zap.L().Info("import complete",
		zap.String("batch_id", res.BatchID.String()),
		zap.Int64("rows", res.Rows),
		zap.Int("skipped", res.Skipped),
	)
	fmt.Printf("imported %d rows (%d skipped) in %s\n", res.Rows, res.Skipped, res.Duration.Round(time.Millisecond))
	return nil
}

func init() {
	importCmd.PersistentFlags().BoolVar(&importSkipMigrate, "skip-migrate", false, "do not apply migrations before importing")
	importCmd.AddCommand(importITACmd, importNAICSCmd)
}
