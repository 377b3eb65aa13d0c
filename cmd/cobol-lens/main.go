// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the cobol-lens CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/cobol-lens/internal/secrets"
	"github.com/pdiddy/cobol-lens/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from the secrets directory at startup.
var loadedSecrets secrets.Secrets

// rootCmd is the base command for the cobol-lens CLI.
var rootCmd = &cobra.Command{
	Use:   "cobol-lens",
	Short: "Upload COBOL sources for conversion and collect the results",
	Long: `cobol-lens submits COBOL programs to a conversion backend, which turns them
into pseudocode, a plain-English explanation, and a flowchart.

Upload a single file with "upload", or point "watch" at a drop directory and
every .cob or .txt file placed there is submitted in turn. Once a conversion
is ready the results location is printed, opened in a browser, or fetched to
disk, depending on --navigate. "serve" runs a local development backend.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(cmd.Context(), dir, nil)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if names := s.Names(); len(names) > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "Loaded secrets: %v\n", names)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := types.DefaultConfig()
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./cobol-lens.yaml or ~/.config/cobol-lens/config.yaml)")
	pf.String("secrets-dir", ".secrets/", "directory of credential files")
	pf.String("endpoint", defaults.Endpoint, "conversion backend base URL")
	pf.Duration("timeout", defaults.Timeout, "per-request timeout (0 = none)")
	pf.String("user-agent", defaults.UserAgent, "User-Agent header sent to the backend")
	pf.Duration("progress-interval", defaults.ProgressInterval, "progress bar tick interval")
	pf.String("navigate", string(defaults.Navigate), "what to do with a finished conversion: print, browser, or fetch")
	pf.String("results-dir", defaults.ResultsDir, "directory for fetched conversions")
	pf.Duration("watch-settle", defaults.WatchSettle, "quiet period before a watched file is submitted")
	pf.String("log-level", defaults.LogLevel, "log level: debug, info, warn, error")

	bindFlag("endpoint", "endpoint")
	bindFlag("timeout", "timeout")
	bindFlag("user_agent", "user-agent")
	bindFlag("progress_interval", "progress-interval")
	bindFlag("navigate", "navigate")
	bindFlag("results_dir", "results-dir")
	bindFlag("watch_settle", "watch-settle")
	bindFlag("log_level", "log-level")
}

func bindFlag(key, flag string) {
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("cobol-lens")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "cobol-lens"))
		}
	}

	viper.SetEnvPrefix("COBOL_LENS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
