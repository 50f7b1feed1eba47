package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/tripvault/internal/config"
	"github.com/vijay-prabhu/tripvault/internal/logging"
)

var (
	// Version information (set via ldflags)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// SetVersionInfo sets version information from main package
func SetVersionInfo(version, commit, buildTime string) {
	Version = version
	Commit = commit
	BuildTime = buildTime
}

var (
	configPath     string
	configExplicit bool
	outputFormat   string
	logLevel       string
)

var rootCmd = &cobra.Command{
	Use:   "tripvault",
	Short: "Archive flight confirmations and trip photos",
	Long: `TripVault finds flight-confirmation emails in your mailbox, files each
one into a dated trip folder and records it in a CSV ledger. It can then
download the photos you took during every recorded trip into its folder.

Run 'tripvault emails' first, then 'tripvault photos'.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configExplicit = cmd.Flags().Changed("config")
		if err := config.LoadEnv(".env"); err != nil {
			return err
		}
		return nil
	},
}

// Execute runs the root command, cancelling on SIGINT or SIGTERM
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (default: ~/.config/tripvault/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table, json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides config")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

func initConfig() {
	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error finding home directory:", err)
			os.Exit(1)
		}
		configPath = filepath.Join(home, ".config", "tripvault", "config.toml")
	}
}

// loadConfig reads the config file, applies logging settings and returns it.
// The default path may be absent; an explicit --config path must exist.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configExplicit {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadOptional(configPath)
	}
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	if err := logging.Configure(level, cfg.Log.Format); err != nil {
		return nil, err
	}
	logging.Log.WithField("config", configPath).Debug("Configuration loaded")
	return cfg, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tripvault %s\n", Version)
		fmt.Printf("  commit: %s\n", Commit)
		fmt.Printf("  built:  %s\n", BuildTime)
	},
}
