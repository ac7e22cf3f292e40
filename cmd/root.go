package cmd

import (
	"fmt"
	"os"

	"texture-manager/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// configDir is where bootstrap looks for the .env file.
var configDir string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "texture-manager",
	Short: "Texture residency service",
	Long: `Texture Manager keeps decoded textures resident within a video memory budget.
Source images are read from object storage, decoded into mip chains and uploaded
by a background worker. An optional catalog database lists the textures to preload.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "Directory holding the .env file")
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		l, logErr := logger.New(&logger.Config{Level: "error", Format: "console"})
		if logErr != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		l.Error("Command failed", zap.Error(err))
		_ = l.Sync()
		os.Exit(1)
	}
}
