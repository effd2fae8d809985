package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/config"
	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/telemetry"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "exporo",
	Short: "Export readiness assistant for Indonesian SMEs",
	Long:  "Chats with a business owner to build a profile, then scores its export readiness for a target country.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := telemetry.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		telemetry.Sync()
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
