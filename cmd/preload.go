package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"texture-manager/core/texture"
	"texture-manager/feature/catalog"
	"texture-manager/feature/residency"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	preloadFromCatalog bool
	preloadForce       bool
	preloadColorSpace  string
)

// preloadCmd uploads textures once and reports their residency
var preloadCmd = &cobra.Command{
	Use:   "preload [objects...]",
	Short: "Preload textures and report residency",
	Long: `Decodes and uploads the given storage objects (and, with --catalog, the catalog's
preload set) into the host execution context, then prints the resulting residency table.`,
	Run: func(cmd *cobra.Command, args []string) {
		runPreload(cmd.Context(), args)
	},
}

func init() {
	preloadCmd.Flags().BoolVar(&preloadFromCatalog, "catalog", false, "Also preload the catalog's preload set")
	preloadCmd.Flags().BoolVar(&preloadForce, "force", false, "Upload on the calling goroutine instead of the worker")
	preloadCmd.Flags().StringVar(&preloadColorSpace, "color-space", "srgb", "Color space for objects given as arguments (srgb, linear)")
	RootCmd.AddCommand(preloadCmd)
}

func runPreload(ctx context.Context, objects []string) {
	cfg, logg := bootstrap()
	defer logg.Sync()

	if len(objects) == 0 && !preloadFromCatalog {
		fmt.Println("Nothing to preload: pass objects or --catalog")
		os.Exit(1)
	}

	eng, err := newEngine(ctx, cfg, logg)
	if err != nil {
		logg.Fatal("Failed to initialize texture pipeline", zap.Error(err))
	}
	defer eng.Close()
	eng.manager.Start()

	svc := residency.NewService(eng.manager, eng.provider, eng.host, eng.host, logg)
	defer svc.Close()

	failed := 0
	for _, object := range objects {
		_, err := svc.Preload(ctx, residency.PreloadRequest{Object: object, ColorSpace: preloadColorSpace, Force: preloadForce})
		if err != nil {
			logg.Error("Preload failed", zap.String("object", object), zap.Error(err))
			failed++
		}
	}

	if preloadFromCatalog {
		if eng.repo == nil {
			logg.Fatal("Catalog preload requested but no catalog database is available")
		}
		report, err := catalog.NewService(eng.repo, svc, logg).PreloadAll(ctx, preloadForce)
		if err != nil {
			logg.Fatal("Catalog preload failed", zap.Error(err))
		}
		for _, f := range report.Failures {
			logg.Error("Preload failed", zap.String("object", f.Object), zap.String("error", f.Error))
		}
		failed += len(report.Failures)
	}

	eng.manager.Synchronize(false)
	printResidency(svc.List(), svc.Stats())

	if failed > 0 {
		os.Exit(1)
	}
}

func printResidency(textures []texture.TextureInfo, stats texture.ManagerStats) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tASSET\tSPACE\tSTATE\tMIP\tBYTES\tERROR")
	for _, t := range textures {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d/%d\t%d\t%s\n",
			t.Key, t.AssetID, t.ColorSpace, t.State, t.ResidentMip, t.MipLevels, t.ResidentBytes, t.Error)
	}
	_ = w.Flush()

	fmt.Println("-----------------------------")
	fmt.Printf("Registered:     %d\n", stats.Registered)
	fmt.Printf("Pending:        %d\n", stats.Pending)
	fmt.Printf("Mip Skip:       %d\n", stats.MinimumMipLevel)
	fmt.Printf("Video Memory:   %d / %d bytes (%.1f%%)\n",
		stats.Memory.UsedBytes, stats.Memory.BudgetBytes, stats.Memory.Utilization()*100)
}
