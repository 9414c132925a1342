// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/preprint-classifier/pkg/types"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective pipeline configuration as YAML",
	Long: `Config resolves every stage's settings from defaults, the config file, and
PREPRINT_CLASSIFIER_* environment variables, and prints them in the layout
the config file accepts. Credentials are masked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := yaml.Marshal(pipelineConfig())
		if err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func pipelineConfig() types.PipelineConfig {
	cfg := types.PipelineConfig{
		Fetch: fetchConfig(),
		Merge: mergeConfig(),
		Build: buildConfig(),
		Train: trainConfig(),
	}
	if cfg.Build.Embed.APIKey != "" {
		cfg.Build.Embed.APIKey = "********"
	}
	return cfg
}
