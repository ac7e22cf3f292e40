package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"texture-manager/core/reconcile"
	catalogFeature "texture-manager/feature/catalog"
	"texture-manager/feature/residency"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the reconcile command
	reconcilePurge  bool
	reconcileSync   bool
	reconcileDryRun bool
	yesConfirm      bool
)

// reconcileCmd compares the catalog with the bucket and the texture registry.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile the texture catalog with storage (report + optionally purge/sync)",
	Long: `Reconcile catalog rows, storage objects and registered textures.

Reports objects missing from storage or the catalog, preload rows that are not
registered, and catalog fields the registry disagrees with.
Optionally purge rows whose object left storage, or sync new objects into the catalog.

Examples:
  # Report only
  reconcile

  # Purge missing objects (with interactive confirmation)
  reconcile --purge

  # Sync new objects and preload rows with auto-confirm
  reconcile --sync --yes

  # Both purge and sync
  reconcile --purge --sync --yes`,
	Run: runReconcile,
}

func init() {
	reconcileCmd.Flags().BoolVar(&reconcilePurge, "purge", false, "Delete catalog rows and release textures whose object left storage")
	reconcileCmd.Flags().BoolVar(&reconcileSync, "sync", false, "Add catalog rows for new objects and preload unregistered preload rows")
	reconcileCmd.Flags().BoolVar(&reconcileDryRun, "dry-run", false, "Force dry-run (no mutations even with --yes)")
	reconcileCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")

	RootCmd.AddCommand(reconcileCmd)
}

// newReconciler builds the reconciler over the engine's catalog and res. It returns nil
// without a catalog database.
func newReconciler(eng *engine, res catalogFeature.Residency) *catalogFeature.Reconciler {
	if eng.repo == nil {
		return nil
	}
	return catalogFeature.NewReconciler(eng.repo, res, eng.store, eng.cfg.Storage.Bucket, reconcile.Spec{
		StoragePrefix: eng.cfg.Catalog.ReconcilePrefix,
		CacheTTL:      eng.cfg.Catalog.ReconcileCacheTTL,
	}, eng.logger.Named("reconcile"))
}

func runReconcile(cmd *cobra.Command, args []string) {
	cfg, logg := bootstrap()
	defer logg.Sync()

	eng, err := newEngine(cmd.Context(), cfg, logg)
	if err != nil {
		logg.Fatal("Failed to initialize texture pipeline", zap.Error(err))
	}
	defer eng.Close()
	eng.manager.Start()

	svc := residency.NewService(eng.manager, eng.provider, eng.host, eng.host, logg)
	defer svc.Close()

	r := newReconciler(eng, svc)
	if r == nil {
		logg.Fatal("Reconciliation needs the catalog database")
	}

	opts := reconcile.Options{
		DoPurge: reconcilePurge,
		DoSync:  reconcileSync,
		DryRun:  true,
	}

	logg.Info("Planning reconciliation...")
	report, err := r.Run(cmd.Context(), opts)
	if err != nil {
		logg.Fatal("Failed to plan reconciliation", zap.Error(err))
	}
	printReconcileReport(logg, report.Plan)

	if !reconcilePurge && !reconcileSync {
		logg.Info("No actions requested. Use --purge to drop objects gone from storage or --sync to catalog new ones.")
		return
	}
	if reconcileDryRun {
		logg.Info("Dry-run mode: No changes were made.")
		return
	}
	if len(report.Actions) == 0 {
		logg.Info("No actions required based on current flags.")
		return
	}
	if !confirmDestructiveAction() {
		logg.Warn("Operation cancelled by user. No changes were made.")
		return
	}

	opts.DryRun = false
	opts.Confirmed = true

	// Planning again keeps the applied actions in step with any change since the report.
	logg.Info("Applying actions...")
	report, err = r.Run(cmd.Context(), opts)
	if err != nil {
		executed := 0
		if report != nil {
			executed = report.Executed
		}
		logg.Fatal("Failed to apply plan", zap.Int("executed", executed), zap.Error(err))
	}
	// Preloads queued by sync finish before the process exits.
	svc.Synchronize(false)
	logg.Info("Successfully executed actions", zap.Int("count", report.Executed))
}

// printReconcileReport prints a formatted reconciliation report using logger.
func printReconcileReport(l *zap.Logger, plan *reconcile.Plan) {
	s := plan.Summary

	l.Info("Reconciliation report",
		zap.Int("total_objects", s.TotalObjects),
		zap.Int("missing_storage", s.MissingStorage),
		zap.Int("missing_catalog", s.MissingCatalog),
		zap.Int("unregistered", s.Unregistered),
		zap.Int("mismatches", s.Mismatches),
	)

	for _, result := range plan.Results {
		if len(result.Mismatch) == 0 {
			continue
		}
		l.Warn("Mismatch",
			zap.String("object", result.Object),
			zap.Strings("details", result.Mismatch))
	}

	if len(plan.Actions) == 0 {
		return
	}
	l.Info("Planned actions",
		zap.Int("purge_actions", s.PurgeActions),
		zap.Int("sync_actions", s.SyncActions),
		zap.Int("total_actions", len(plan.Actions)),
	)

	maxShow := min(5, len(plan.Actions))
	for _, action := range plan.Actions[:maxShow] {
		l.Info("Sample action",
			zap.String("type", string(action.Type)),
			zap.String("object", action.Object),
			zap.String("reason", action.Reason),
		)
	}
	if len(plan.Actions) > maxShow {
		l.Info("Additional actions not shown", zap.Int("count", len(plan.Actions)-maxShow))
	}
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction() bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\n⚠️  Type 'yes' to confirm destructive actions: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	return strings.TrimSpace(response) == "yes"
}
