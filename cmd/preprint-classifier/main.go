// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the preprint-classifier CLI.
// Each pipeline stage is a subcommand: fetch, merge, build, and train.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/preprint-classifier/internal/logging"
	"github.com/pdiddy/preprint-classifier/internal/secrets"
)

const (
	appName   = "preprint-classifier"
	envPrefix = "PREPRINT_CLASSIFIER"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials from .secrets/ and the environment.
var loadedSecrets = secrets.Store{}

// logger carries diagnostics on stderr; progress output goes to stdout.
var logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Fetch, label, embed, and classify COVID-19 preprints",
	Long: `preprint-classifier builds a supervised classifier for COVID-19 preprints.

The pipeline runs as four subcommands, each reading the previous stage's file:
fetch downloads preprint metadata by DOI, merge joins a label list onto it,
build embeds abstracts and writes a balanced train/test split, and train fits
an SVM and a gradient-boosted tree model and reports their test scores.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(logging.Options{
			Level:  viper.GetString("log.level"),
			Format: viper.GetString("log.format"),
		}, os.Stderr)
		if err != nil {
			return err
		}
		logger = l
		if used := viper.ConfigFileUsed(); used != "" {
			logger.Info("using config file", "path", used)
		}

		if err := secrets.LoadEnv(".env"); err != nil {
			return err
		}
		s, err := secrets.Load(viper.GetString("secrets_dir"), os.Stderr)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug("loaded secrets", "keys", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./preprint-classifier.yaml or ~/.config/preprint-classifier/preprint-classifier.yaml)")
	pf.String("log-level", "info", "diagnostic log level: debug, info, warn, error")
	pf.String("log-format", "text", "diagnostic log format: text or json")
	pf.String("secrets-dir", ".secrets", "directory of credential files")
	_ = viper.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = viper.BindPFlag("log.format", pf.Lookup("log-format"))
	_ = viper.BindPFlag("secrets_dir", pf.Lookup("secrets-dir"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(appName)
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", appName))
		}
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			fmt.Fprintf(os.Stderr, "warning: reading config %s: %v\n", cfgFile, err)
		}
	}
}

// flagKeys maps a command's flag names to config keys. Keys follow the
// YAML layout of types.PipelineConfig, so the output of the config command
// is a valid config file.
type flagKeys map[string]string

// register records each flag's default under its key, for commands that
// read the key without the flag being bound.
func (k flagKeys) register(cmd *cobra.Command) {
	for name, key := range k {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			panic(fmt.Sprintf("%s: no flag %q", cmd.Name(), name))
		}
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			viper.SetDefault(key, sv.GetSlice())
			continue
		}
		viper.SetDefault(key, f.DefValue)
	}
}

// bind makes cmd's flags the flag layer for their keys. It runs only for
// the executing command since build and train share keys.
func (k flagKeys) bind(cmd *cobra.Command) error {
	for name, key := range k {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("binding --%s: %w", name, err)
		}
	}
	return nil
}

// withKeys registers keys on cmd and binds them before it runs.
func withKeys(cmd *cobra.Command, keys ...flagKeys) {
	for _, k := range keys {
		k.register(cmd)
	}
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		for _, k := range keys {
			if err := k.bind(cmd); err != nil {
				return err
			}
		}
		return nil
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
