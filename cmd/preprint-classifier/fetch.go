// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/preprint-classifier/internal/fetch"
	"github.com/pdiddy/preprint-classifier/pkg/types"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultDelay     = 100 * time.Millisecond
	defaultBackoff   = 2 * time.Second
	defaultUserAgent = "preprint-classifier/0.1"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download preprint metadata for a list of DOIs",
	Long: `Fetch reads one DOI per line, queries the preprint details API for each,
and writes title, abstract, authors, publication date, and DOI to a TSV file.
DOIs with no match are skipped. Request failures are reported and the batch
continues; the command exits non-zero if any request failed.`,
	RunE: runFetch,
}

func init() {
	f := fetchCmd.Flags()
	f.String("doi-file", "data/doi_list.txt", "newline-delimited DOI list")
	f.String("output", "data/preprints_by_dois.tsv", "preprints TSV to write")
	f.String("base-url", fetch.DefaultBaseURL, "preprint details API root")
	f.String("server", fetch.DefaultServer, "preprint server: medrxiv or biorxiv")
	f.Duration("timeout", defaultTimeout, "HTTP request timeout")
	f.Duration("delay", defaultDelay, "pause after every request")
	f.Int("max-retries", 3, "retries on HTTP 429 (and 5xx with --retry-server-errors); 0 disables")
	f.Duration("backoff", defaultBackoff, "first retry wait, doubled on each further retry")
	f.Bool("retry-server-errors", false, "also retry 5xx responses")
	withKeys(fetchCmd, fetchKeys)
	viper.SetDefault("fetch.user_agent", defaultUserAgent)

	rootCmd.AddCommand(fetchCmd)
}

var fetchKeys = flagKeys{
	"doi-file":            "fetch.doi_file",
	"output":              "fetch.output_file",
	"base-url":            "fetch.base_url",
	"server":              "fetch.server",
	"timeout":             "fetch.timeout",
	"delay":               "fetch.delay",
	"max-retries":         "fetch.max_retries",
	"backoff":             "fetch.base_backoff",
	"retry-server-errors": "fetch.retry_on_server_error",
}

func fetchConfig() types.FetchConfig {
	return types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("fetch.timeout"),
			UserAgent: viper.GetString("fetch.user_agent"),
		},
		RatePolicy: types.RatePolicy{
			Delay:              viper.GetDuration("fetch.delay"),
			MaxRetries:         viper.GetInt("fetch.max_retries"),
			BaseBackoff:        viper.GetDuration("fetch.base_backoff"),
			RetryOnServerError: viper.GetBool("fetch.retry_on_server_error"),
		},
		BaseURL:    viper.GetString("fetch.base_url"),
		Server:     viper.GetString("fetch.server"),
		DOIFile:    viper.GetString("fetch.doi_file"),
		OutputFile: viper.GetString("fetch.output_file"),
	}
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg := fetchConfig()
	logger.Debug("fetch config", "doi_file", cfg.DOIFile, "server", cfg.Server, "delay", cfg.Delay)

	client := fetch.NewClient(nil, cfg)
	result, err := fetch.FetchToFile(cmd.Context(), client, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Preprints saved to %s (%d rows)\n", cfg.OutputFile, len(result.Records))
	if result.HasFailures() {
		return fmt.Errorf("%d DOI(s) failed to fetch", result.Failed)
	}
	return nil
}
