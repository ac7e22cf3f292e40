package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"texture-manager/core/catalog"
	"texture-manager/core/database"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	catalogPrefix      string
	catalogPreloadOnly bool
	catalogLimit       int
)

// catalogCmd groups the catalog database commands
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the texture catalog database",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog rows",
	Run: func(cmd *cobra.Command, args []string) {
		runCatalogList(cmd.Context())
	},
}

var catalogVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the catalog table schema",
	Long:  `Compares the live texture_assets table with the columns the service expects.`,
	Run: func(cmd *cobra.Command, args []string) {
		runCatalogVerify(cmd.Context())
	},
}

var catalogMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the catalog table",
	Run: func(cmd *cobra.Command, args []string) {
		repo := openCatalog()
		if err := repo.Migrate(cmd.Context()); err != nil {
			zap.L().Fatal("Catalog migration failed", zap.Error(err))
		}
		zap.L().Info("Catalog table migrated")
	},
}

func init() {
	catalogListCmd.Flags().StringVar(&catalogPrefix, "prefix", "", "Object name prefix")
	catalogListCmd.Flags().BoolVar(&catalogPreloadOnly, "preload", false, "Only rows flagged for preload")
	catalogListCmd.Flags().IntVar(&catalogLimit, "limit", 0, "Maximum rows")

	catalogCmd.AddCommand(catalogListCmd, catalogVerifyCmd, catalogMigrateCmd)
	RootCmd.AddCommand(catalogCmd)
}

// openCatalog connects to the catalog database. Unlike the server, these commands
// require it.
func openCatalog() *catalog.Repository {
	cfg, logg := bootstrap()
	zap.ReplaceGlobals(logg)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logg.Fatal("Catalog database connection failed", zap.Error(err))
	}
	return catalog.NewRepository(db)
}

func runCatalogList(ctx context.Context) {
	repo := openCatalog()

	assets, err := repo.List(ctx, catalog.Filter{Prefix: catalogPrefix, PreloadOnly: catalogPreloadOnly, Limit: catalogLimit})
	if err != nil {
		zap.L().Fatal("Catalog list failed", zap.Error(err))
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tOBJECT\tSPACE\tSIZE\tMIPS\tPRIORITY\tPRELOAD")
	for _, a := range assets {
		fmt.Fprintf(w, "%d\t%s\t%s\t%dx%d\t%d\t%d\t%v\n",
			a.ID, a.Object, a.ColorSpace, a.Width, a.Height, a.Descriptor().MipLevels(), a.Priority, a.Preload)
	}
	_ = w.Flush()
}

func runCatalogVerify(ctx context.Context) {
	repo := openCatalog()

	mismatches, err := repo.VerifySchema(ctx)
	if err != nil {
		zap.L().Fatal("Catalog schema check failed", zap.Error(err))
	}
	if len(mismatches) == 0 {
		fmt.Println("\033[32mCatalog schema OK\033[0m")
		return
	}

	fmt.Println("\033[31mCatalog schema mismatches:\033[0m")
	for _, m := range mismatches {
		if m.Missing {
			fmt.Printf("- %s: missing (expected %s)\n", m.Column, m.Expected)
			continue
		}
		fmt.Printf("- %s: %s (expected %s)\n", m.Column, m.Actual, m.Expected)
	}
	os.Exit(1)
}
