package cmd

import (
	"context"

	"texture-manager/core/catalog"
	"texture-manager/core/database"
	"texture-manager/core/storage"
	"texture-manager/feature/integrity"
	"texture-manager/feature/integrity/checks"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fixFlag bool

var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Perform integrity checks on storage and the catalog",
	Long:  `Checks that the storage bucket holds the configured folders and that the catalog table matches the model.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) > 0 {
			cmd.Help()
			return
		}
		runIntegrityChecks(cmd.Context(), true, true)
	},
}

var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Check and fix folder structure",
	Run: func(cmd *cobra.Command, args []string) {
		runIntegrityChecks(cmd.Context(), true, false)
	},
}

var catalogSchemaCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Check the catalog table schema",
	Run: func(cmd *cobra.Command, args []string) {
		runIntegrityChecks(cmd.Context(), false, true)
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(structureCmd, catalogSchemaCmd)

	structureCmd.Flags().BoolVar(&fixFlag, "fix", false, "Fix missing folders")
}

func runIntegrityChecks(ctx context.Context, runStructure, runCatalog bool) {
	cfg, logg := bootstrap()
	defer logg.Sync()

	store, err := storage.NewClient(cfg.Storage)
	if err != nil {
		logg.Fatal("Failed to create storage client", zap.Error(err))
	}

	var schema checks.SchemaVerifier
	if db, err := database.Connect(cfg.Database); err != nil {
		logg.Warn("Optional catalog database connection failed", zap.Error(err))
	} else {
		schema = catalog.NewRepository(db)
	}

	svc := integrity.NewService(store, cfg.Storage.Bucket, cfg.Storage.Folders, schema, nil, logg)

	if runStructure {
		fix := fixFlag && !runCatalog
		status, err := svc.Structure(ctx, fix)
		switch {
		case err != nil:
			logg.Fatal("Structure check failed", zap.String("bucket", cfg.Storage.Bucket), zap.Error(err))
		case len(status.Fixed) > 0:
			logg.Info("Created missing folders", zap.Strings("fixed", status.Fixed))
		case len(status.Missing) == 0:
			logg.Info("Bucket structure intact", zap.String("bucket", cfg.Storage.Bucket))
		default:
			logg.Warn("Missing folders detected; run integrity structure --fix to create them",
				zap.Strings("missing", status.Missing))
		}
	}

	if runCatalog {
		logg.Info("Checking catalog schema...", zap.String("driver", cfg.Database.Driver))
		report, err := svc.CheckCatalog(ctx)
		switch {
		case err != nil:
			logg.Error("Catalog schema check failed", zap.Error(err))
		case !report.Configured:
			logg.Info("No catalog database; schema check skipped.")
		case report.Matched:
			logg.Info("Catalog schema matches the model.")
		default:
			for _, m := range report.Mismatches {
				logg.Warn("Catalog column mismatch",
					zap.String("column", m.Column),
					zap.String("expected", m.Expected),
					zap.String("actual", m.Actual),
					zap.Bool("missing", m.Missing))
			}
		}
	}
}
