// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package embed turns abstracts into fixed-length vectors.
//
// Two backends implement Embedder: VectorModel averages pretrained word
// vectors loaded from a local file, and RemoteClient calls an
// OpenAI-compatible embeddings API. Both are scoped resources: open once per
// run, embed the batch, then Close.
package embed

import (
	"context"
	"fmt"

	"github.com/pdiddy/preprint-classifier/pkg/types"
)

// Embedder converts free text into a numeric vector representation.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
	Close() error
}

// Open returns the embedder selected by cfg.Backend.
func Open(cfg types.EmbedConfig) (Embedder, error) {
	switch cfg.Backend {
	case types.EmbedVectors, "":
		return Load(cfg.ModelPath)
	case types.EmbedRemote:
		return NewRemoteClient(nil, cfg)
	default:
		return nil, fmt.Errorf("unsupported embedding backend %q: use vectors or remote", cfg.Backend)
	}
}

// All embeds every text in order and checks that all vectors share one
// dimension.
func All(ctx context.Context, e Embedder, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	dim := -1
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embedding text %d: %w", i+1, err)
		}
		if dim >= 0 && len(vec) != dim {
			return nil, fmt.Errorf("embedding text %d: dimension %d, want %d", i+1, len(vec), dim)
		}
		dim = len(vec)
		out[i] = vec
	}
	return out, nil
}
