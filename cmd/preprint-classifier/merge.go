// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/preprint-classifier/internal/merge"
	"github.com/pdiddy/preprint-classifier/pkg/types"
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Join category labels onto fetched preprints by DOI",
	Long: `Merge left-joins a two-column label file (DOI, label; no header) onto the
preprints TSV. Every preprint row is kept by default; --unmatched selects what
happens to preprints without a label: keep (empty label), drop, or reject.`,
	RunE: runMerge,
}

func init() {
	f := mergeCmd.Flags()
	f.String("preprints", "data/preprints_by_dois.tsv", "preprints TSV from fetch")
	f.String("labels", "data/label_list.txt", "label TSV: DOI and label, no header")
	f.String("output", "data/preprints.tsv", "labeled TSV to write")
	f.String("unmatched", string(types.UnmatchedKeep), "policy for unlabeled preprints: keep, drop, reject")
	withKeys(mergeCmd, mergeKeys)

	rootCmd.AddCommand(mergeCmd)
}

var mergeKeys = flagKeys{
	"preprints": "merge.preprints_file",
	"labels":    "merge.labels_file",
	"output":    "merge.output_file",
	"unmatched": "merge.unmatched",
}

func mergeConfig() types.MergeConfig {
	return types.MergeConfig{
		PreprintsFile: viper.GetString("merge.preprints_file"),
		LabelsFile:    viper.GetString("merge.labels_file"),
		OutputFile:    viper.GetString("merge.output_file"),
		Unmatched:     types.UnmatchedPolicy(viper.GetString("merge.unmatched")),
	}
}

func runMerge(cmd *cobra.Command, args []string) error {
	cfg := mergeConfig()
	s, err := merge.MergeFiles(cmd.Context(), cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	logger.Debug("merge summary", "preprints", s.Preprints, "labels", s.Labels, "rows", s.Rows, "unmatched", s.Unmatched)
	return nil
}
