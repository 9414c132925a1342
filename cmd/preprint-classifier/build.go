// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/preprint-classifier/internal/balance"
	"github.com/pdiddy/preprint-classifier/internal/dataset"
	"github.com/pdiddy/preprint-classifier/internal/secrets"
	"github.com/pdiddy/preprint-classifier/pkg/types"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Embed abstracts and write a balanced train/test split",
	Long: `Build reads the labeled TSV, encodes labels, embeds each abstract, balances
classes by synthetic oversampling, and splits the result into train.tsv and
test.tsv with a dataset.yaml manifest in --out-dir.

Abstracts are embedded with a local word-vector file (--model) by default, or
with an OpenAI-compatible embeddings API (--backend remote). The remote API
key is read from PREPRINT_CLASSIFIER_EMBEDDING_API_KEY, .env, or
.secrets/embedding-api-key.`,
	RunE: runBuild,
}

func init() {
	f := buildCmd.Flags()
	addBuildFlags(f)
	f.String("out-dir", "data/features", "directory for train.tsv, test.tsv, and dataset.yaml")
	withKeys(buildCmd, buildKeys, flagKeys{"out-dir": "build.out_dir"})
	viper.SetDefault("build.embed.user_agent", defaultUserAgent)

	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg := buildConfig()
	res, err := dataset.ProcessFile(cmd.Context(), cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if err := dataset.WriteFeatures(cfg.OutDir, res); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Features saved to %s (%d train, %d test rows, %d dimensions)\n",
		cfg.OutDir, res.Manifest.TrainRows, res.Manifest.TestRows, res.Manifest.Dimension)
	logger.Debug("build manifest", "run_id", res.Manifest.RunID, "embedder", res.Manifest.Embedder, "k_neighbors", res.Manifest.KNeighbors)
	return nil
}

// buildKeys covers the flags build and train share; train builds
// in-process from them when run with --dataset.
var buildKeys = flagKeys{
	"input":          "build.input_file",
	"backend":        "build.embed.backend",
	"model":          "build.embed.model_path",
	"embed-url":      "build.embed.base_url",
	"embed-model":    "build.embed.model",
	"embed-timeout":  "build.embed.timeout",
	"keep-unlabeled": "build.keep_unlabeled",
	"test-size":      "build.test_size",
	"seed":           "build.seed",
}

func buildConfig() types.BuildConfig {
	return types.BuildConfig{
		Embed: types.EmbedConfig{
			Backend:   types.EmbedBackend(viper.GetString("build.embed.backend")),
			ModelPath: viper.GetString("build.embed.model_path"),
			BaseURL:   viper.GetString("build.embed.base_url"),
			Model:     viper.GetString("build.embed.model"),
			APIKey:    loadedSecrets.Get(envPrefix, secrets.EmbeddingAPIKey),
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("build.embed.timeout"),
				UserAgent: viper.GetString("build.embed.user_agent"),
			},
		},
		InputFile:     viper.GetString("build.input_file"),
		OutDir:        viper.GetString("build.out_dir"),
		KeepUnlabeled: viper.GetBool("build.keep_unlabeled"),
		TestSize:      viper.GetFloat64("build.test_size"),
		Seed:          viper.GetUint64("build.seed"),
	}
}

// addBuildFlags registers the flags shared by build and train.
func addBuildFlags(f *pflag.FlagSet) {
	f.String("input", "data/preprints.tsv", "labeled preprints TSV from merge")
	f.String("backend", string(types.EmbedVectors), "embedding backend: vectors or remote")
	f.String("model", "", "word-vector file for the vectors backend (text format, optionally .gz)")
	f.String("embed-url", "", "embeddings API root for the remote backend")
	f.String("embed-model", "", "embeddings model name for the remote backend")
	f.Duration("embed-timeout", defaultTimeout, "remote embeddings request timeout")
	f.Bool("keep-unlabeled", false, "encode empty labels as their own class instead of dropping those rows")
	f.Float64("test-size", dataset.DefaultTestSize, "held-out fraction")
	f.Uint64("seed", balance.DefaultSeed, "seed for oversampling and splitting")
}
