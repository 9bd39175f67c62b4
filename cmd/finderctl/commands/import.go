package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/laptopfinder/backend/config"
	"github.com/laptopfinder/backend/internal/domain"
	"github.com/laptopfinder/backend/internal/infrastructure/catalog"
)

var (
	importDriver string
	importDSN    string
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Load a CSV or parquet catalog export into the SQL catalog",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	importCmd.Flags().StringVar(&importDriver, "driver", "", "sqlite or postgres (defaults to catalog.driver)")
	importCmd.Flags().StringVar(&importDSN, "dsn", "", "database DSN (defaults to catalog.dsn)")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx, cancel, err := commandContext(cmd)
	if err != nil {
		return err
	}
	defer cancel()

	driver, dsn := importDriver, importDSN
	if driver == "" || dsn == "" {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if driver == "" {
			driver = cfg.Catalog.Driver
		}
		if dsn == "" {
			dsn = cfg.Catalog.DSN
		}
	}
	if driver != catalog.DriverSQLite && driver != catalog.DriverPostgres {
		return fmt.Errorf("import needs a sqlite or postgres catalog, got driver %q", driver)
	}

	products, err := catalog.LoadFile(args[0])
	if err != nil {
		return err
	}

	store, err := catalog.OpenSQL(driver, dsn)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Upsert(ctx, products); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	total, err := store.Count(ctx, domain.All())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d laptops into %s (catalog now holds %d)\n", len(products), driver, total)
	return nil
}
