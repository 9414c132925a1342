// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch retrieves preprint metadata from the bioRxiv/medRxiv details
// API and writes it as a preprints TSV file.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/preprint-classifier/internal/httputil"
	"github.com/pdiddy/preprint-classifier/pkg/types"
)

// DefaultBaseURL is the root of the preprint details API.
const DefaultBaseURL = "https://api.biorxiv.org"

// DefaultServer is the preprint server queried when none is configured.
const DefaultServer = "medrxiv"

// ErrUnexpectedStatus is returned when the API answers with a non-200 status.
var ErrUnexpectedStatus = errors.New("unexpected HTTP status")

// pubsResponse captures the fields we need from a /pubs response.
type pubsResponse struct {
	Collection []pubsEntry `json:"collection"`
}

type pubsEntry struct {
	DOI      string `json:"preprint_doi"`
	Title    string `json:"preprint_title"`
	Abstract string `json:"preprint_abstract"`
	Authors  string `json:"preprint_authors"`
	Date     string `json:"preprint_date"`
}

// Client looks up preprints by DOI.
type Client struct {
	HTTP *http.Client
	cfg  types.FetchConfig
}

// NewClient returns a Client for cfg. A nil httpClient gets one with
// cfg.Timeout.
func NewClient(httpClient *http.Client, cfg types.FetchConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Server == "" {
		cfg.Server = DefaultServer
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{HTTP: httpClient, cfg: cfg}
}

// Config returns the effective configuration.
func (c *Client) Config() types.FetchConfig { return c.cfg }

// FetchByDOI requests the preprint with the given DOI and returns the first
// entry of the response collection as a normalized Record. It returns
// (nil, nil) when the collection is empty.
func (c *Client) FetchByDOI(ctx context.Context, doi string) (*types.Record, error) {
	apiURL := strings.TrimRight(c.cfg.BaseURL, "/") + "/pubs/" + url.PathEscape(c.cfg.Server) + "/" + escapeDOI(doi)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, c.cfg.RatePolicy)
	if err != nil {
		return nil, fmt.Errorf("details API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d for %s", ErrUnexpectedStatus, resp.StatusCode, doi)
	}

	var pr pubsResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("parsing details response: %w", err)
	}
	if len(pr.Collection) == 0 {
		return nil, nil
	}
	return newRecord(pr.Collection[0]), nil
}

func newRecord(e pubsEntry) *types.Record {
	return &types.Record{
		DOI:             cleanField(e.DOI),
		Title:           cleanField(e.Title),
		Abstract:        NormalizeAbstract(e.Abstract),
		Authors:         cleanField(e.Authors),
		PublicationDate: cleanField(e.Date),
	}
}

// escapeDOI escapes each "/"-separated segment of doi so characters such as
// '?' and '#' stay in the path.
func escapeDOI(doi string) string {
	segments := strings.Split(doi, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

// NormalizeAbstract replaces line breaks with spaces and collapses runs of
// whitespace into a single space.
func NormalizeAbstract(s string) string {
	s = strings.NewReplacer("\n", " ", "\r", " ").Replace(s)
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// cleanField keeps a value on one TSV cell: NFC form, no tabs or line breaks.
func cleanField(s string) string {
	s = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ").Replace(s)
	return strings.TrimSpace(norm.NFC.String(s))
}
