package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ClickerPilot/internal/calculator"
	"ClickerPilot/internal/config"
	"ClickerPilot/internal/strategy"
)

var cfgPath string

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	rootCmd := &cobra.Command{
		Use:   "bot",
		Short: "ClickerPilot upgrade purchase scheduler",
		Long: `Buys clicker-game upgrades in payback order, waiting until each one is
affordable and off cooldown, and keeps passive income alive with periodic syncs.`,
		SilenceUsage: true,
		RunE:         runBot,
	}

	defaultCfg := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultCfg = v
	}
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", defaultCfg, "Path to YAML config file")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Run the purchase loop (default)",
		RunE:  runBot,
	})
	rootCmd.AddCommand(newListCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("[FATAL] %v", err)
		os.Exit(1)
	}
}

func loadConfig(requireAuth bool) (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if requireAuth {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("config validation: %w", err)
		}
	}
	return cfg, nil
}

func newSelector(cfg *config.Config) *strategy.Selector {
	return strategy.NewSelector(calculator.NewProjector(
		cfg.Strategy.MaxPaybackHours,
		cfg.Strategy.SecondOrderBuffer,
		cfg.Strategy.SafetyFactor,
	))
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
