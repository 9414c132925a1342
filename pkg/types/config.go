package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "preprint-classifier/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// RatePolicy controls pacing and retry of requests to an external API.
type RatePolicy struct {
	// Delay is the pause after every request (default 100ms).
	Delay time.Duration `json:"delay" yaml:"delay"`

	// MaxRetries is the number of retries on a throttled or failed response.
	// Zero disables retries.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// BaseBackoff is the first retry wait; each further retry doubles it.
	BaseBackoff time.Duration `json:"base_backoff" yaml:"base_backoff"`

	// RetryOnServerError extends retries from HTTP 429 to any 5xx response.
	RetryOnServerError bool `json:"retry_on_server_error" yaml:"retry_on_server_error"`
}

// FetchConfig holds settings for the fetch stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`
	RatePolicy `yaml:",inline"`

	// BaseURL is the root of the preprint details API (default https://api.biorxiv.org).
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Server selects the preprint server: medrxiv or biorxiv.
	Server string `json:"server" yaml:"server"`

	// DOIFile is the newline-delimited list of identifiers to fetch.
	DOIFile string `json:"doi_file" yaml:"doi_file"`

	// OutputFile is the preprints TSV written by the stage.
	OutputFile string `json:"output_file" yaml:"output_file"`
}

// UnmatchedPolicy decides what the merge stage does with preprints that
// have no entry in the label file.
type UnmatchedPolicy string

const (
	UnmatchedKeep   UnmatchedPolicy = "keep"
	UnmatchedDrop   UnmatchedPolicy = "drop"
	UnmatchedReject UnmatchedPolicy = "reject"
)

// MergeConfig holds settings for the merge stage.
type MergeConfig struct {
	PreprintsFile string          `json:"preprints_file" yaml:"preprints_file"`
	LabelsFile    string          `json:"labels_file" yaml:"labels_file"`
	OutputFile    string          `json:"output_file" yaml:"output_file"`
	Unmatched     UnmatchedPolicy `json:"unmatched" yaml:"unmatched"`
}

// EmbedBackend identifies the text embedding implementation.
type EmbedBackend string

const (
	EmbedVectors EmbedBackend = "vectors"
	EmbedRemote  EmbedBackend = "remote"
)

// EmbedConfig holds settings for abstract embedding.
type EmbedConfig struct {
	// Backend selects the embedder: vectors (local word-vector file) or
	// remote (OpenAI-compatible embeddings API).
	Backend EmbedBackend `json:"backend" yaml:"backend"`

	// ModelPath is the word-vector file for the vectors backend.
	ModelPath string `json:"model_path" yaml:"model_path"`

	// BaseURL is the embeddings API root for the remote backend.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Model is the remote model name (e.g. "text-embedding-3-small").
	Model string `json:"model" yaml:"model"`

	// APIKey authenticates against the remote backend.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	HTTPConfig `yaml:",inline"`
}

// BuildConfig holds settings for the feature/dataset build stage.
type BuildConfig struct {
	Embed EmbedConfig `json:"embed" yaml:"embed"`

	// InputFile is the labeled dataset TSV.
	InputFile string `json:"input_file" yaml:"input_file"`

	// OutDir receives train.tsv, test.tsv, and dataset.yaml.
	OutDir string `json:"out_dir" yaml:"out_dir"`

	// KeepUnlabeled encodes empty labels as their own class instead of
	// dropping those rows.
	KeepUnlabeled bool `json:"keep_unlabeled" yaml:"keep_unlabeled"`

	// TestSize is the held-out fraction (default 0.2).
	TestSize float64 `json:"test_size" yaml:"test_size"`

	// Seed drives oversampling and splitting (default 42).
	Seed uint64 `json:"seed" yaml:"seed"`
}

// TrainConfig holds settings for the train/evaluate stage.
type TrainConfig struct {
	// FeaturesDir is the build stage output read by the trainer.
	FeaturesDir string `json:"features_dir" yaml:"features_dir"`

	// Models lists the classifiers to fit, in order (default svm, gbt).
	Models []string `json:"models" yaml:"models"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Fetch FetchConfig `json:"fetch" yaml:"fetch"`
	Merge MergeConfig `json:"merge" yaml:"merge"`
	Build BuildConfig `json:"build" yaml:"build"`
	Train TrainConfig `json:"train" yaml:"train"`
}
