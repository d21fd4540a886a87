// Command import_ingredients loads a supplier price sheet (CSV, YAML or PDF)
// into the ingredient catalog.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"backoffice/internal/config"
	"backoffice/internal/db"
	"backoffice/internal/db/mock"
	applog "backoffice/internal/log"
	"backoffice/internal/pricesheet"
)

var (
	loadConfigFunc = config.Load
	openDatabase   = func(ctx context.Context, cfg config.DatabaseConfig) (*gorm.DB, error) {
		if cfg.UseMock {
			return mock.New(ctx)
		}
		return db.Configure(cfg)
	}
)

type importOptions struct {
	DryRun bool
}

func newRootCmd() *cobra.Command {
	var opts importOptions
	cmd := &cobra.Command{
		Use:   "import_ingredients <price-sheet>",
		Short: "Upsert the ingredient catalog from a CSV, YAML or PDF price sheet",
		Long: `import_ingredients reads a supplier price sheet and upserts each row into
the ingredient catalog, matching existing ingredients by name.

Rows need a name, a unit and a cost per unit. Rows that cannot be read are
reported and left out.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args[0], opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "parse the sheet and print the rows without touching the database")
	return cmd
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, path string, opts importOptions, out io.Writer) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("price sheet path must not be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("locate price sheet: %w", err)
	}
	if info.Size() > pricesheet.MaxUploadSize {
		return fmt.Errorf("price sheet exceeds %d bytes", pricesheet.MaxUploadSize)
	}

	cfg, err := loadConfigFunc()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := applog.SetLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("set log level: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read price sheet: %w", err)
	}

	rows, skipped, err := pricesheet.Parse(filepath.Base(path), "", data)
	if err != nil {
		return fmt.Errorf("parse price sheet: %w", err)
	}

	if opts.DryRun {
		for _, row := range rows {
			fmt.Fprintf(out, "%s\t%s\t%s\n", row.Name, row.UnitSymbol, row.CostPerUnit.String())
		}
		reportSkipped(out, skipped)
		return nil
	}

	database, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	result, err := pricesheet.Store(ctx, database, rows)
	if err != nil {
		return fmt.Errorf("store catalog: %w", err)
	}

	applog.Info(ctx, "price sheet imported", "path", path, "created", result.Created, "updated", result.Updated, "skipped", len(skipped))
	fmt.Fprintf(out, "Imported %d ingredients (%d created, %d updated).\n", result.Created+result.Updated, result.Created, result.Updated)
	reportSkipped(out, skipped)
	return nil
}

func reportSkipped(out io.Writer, skipped []string) {
	for _, row := range skipped {
		fmt.Fprintf(out, "skipped: %s\n", row)
	}
}
