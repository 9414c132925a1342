// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/preprint-classifier/internal/classify"
	"github.com/pdiddy/preprint-classifier/internal/dataset"
	"github.com/pdiddy/preprint-classifier/internal/evaluate"
	"github.com/pdiddy/preprint-classifier/pkg/types"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit the classifiers and report test-set scores",
	Long: `Train fits each model in --models on the training partition written by
build and scores it on the held-out partition, printing accuracy and a
per-class precision/recall/F1 report.

With --dataset, the labeled TSV is embedded, balanced, and split in-process
first (using the same flags as build) instead of reading --features-dir.`,
	RunE: runTrain,
}

func init() {
	f := trainCmd.Flags()
	f.String("features-dir", "data/features", "build output to train on")
	f.StringSlice("models", classify.DefaultModels, "models to fit, in order: svm, gbt")
	f.Bool("dataset", false, "build features in-process from --input instead of reading --features-dir")
	addBuildFlags(f)
	withKeys(trainCmd, trainKeys, buildKeys)

	rootCmd.AddCommand(trainCmd)
}

var trainKeys = flagKeys{
	"features-dir": "train.features_dir",
	"models":       "train.models",
	"dataset":      "train.dataset",
}

func trainConfig() types.TrainConfig {
	return types.TrainConfig{
		FeaturesDir: viper.GetString("train.features_dir"),
		Models:      modelList(viper.GetStringSlice("train.models")),
	}
}

// modelList splits comma-joined entries, as an environment variable or a
// scalar config value arrives as one string.
func modelList(raw []string) []string {
	var out []string
	for _, entry := range raw {
		for _, name := range strings.Split(entry, ",") {
			if name = strings.TrimSpace(name); name != "" {
				out = append(out, name)
			}
		}
	}
	return out
}

func runTrain(cmd *cobra.Command, args []string) error {
	cfg := trainConfig()
	out := cmd.OutOrStdout()

	var split types.Split
	if viper.GetBool("train.dataset") {
		res, err := dataset.ProcessFile(cmd.Context(), buildConfig(), out)
		if err != nil {
			return err
		}
		split = res.Split
	} else {
		s, m, err := dataset.ReadFeatures(cfg.FeaturesDir)
		if err != nil {
			return err
		}
		logger.Debug("loaded features", "dir", cfg.FeaturesDir, "run_id", m.RunID, "train_rows", m.TrainRows, "test_rows", m.TestRows)
		split = s
	}
	return trainModels(out, split, cfg.Models)
}

// trainModels fits and evaluates each named model on split in order.
func trainModels(w io.Writer, split types.Split, names []string) error {
	if len(names) == 0 {
		names = classify.DefaultModels
	}
	models := make([]classify.Classifier, 0, len(names))
	for _, name := range names {
		m, err := classify.New(name)
		if err != nil {
			return err
		}
		models = append(models, m)
	}

	for _, m := range models {
		fmt.Fprintf(w, "Training %s model...\n", m.Name())
		if err := m.Fit(split.XTrain, split.YTrain); err != nil {
			return fmt.Errorf("training %s: %w", m.Name(), err)
		}

		fmt.Fprintf(w, "Evaluating %s model...\n", m.Name())
		pred, err := m.Predict(split.XTest)
		if err != nil {
			return fmt.Errorf("evaluating %s: %w", m.Name(), err)
		}
		report, err := evaluate.Report(split.YTest, pred, split.Classes)
		if err != nil {
			return fmt.Errorf("scoring %s: %w", m.Name(), err)
		}
		fmt.Fprintf(w, "Accuracy: %s\n", strconv.FormatFloat(report.Accuracy, 'g', -1, 64))
		fmt.Fprintln(w, "Classification Report:")
		if err := report.Render(w); err != nil {
			return err
		}
	}
	return nil
}
