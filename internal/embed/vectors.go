// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embed

import (
	"bufio"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// ErrModelNotFound is returned when the word-vector file does not exist.
var ErrModelNotFound = errors.New("embedding model not found")

// tokenPattern splits text into word, number, and hyphenated tokens
// ("SARS-CoV-2", "COVID-19", "2020").
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:[-'’][\p{L}\p{N}]+)*`)

// VectorModel is a pretrained word-vector table. A document vector is the
// mean of the vectors of its known tokens.
type VectorModel struct {
	name    string
	dim     int
	vectors map[string][]float64
}

// Load reads a word-vector file in word2vec/GloVe text format: one token per
// line followed by its components, separated by spaces. A leading
// "<count> <dim>" header line is accepted. Files ending in .gz are
// decompressed.
func Load(path string) (*VectorModel, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: no model path configured", ErrModelNotFound)
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, path)
		}
		return nil, fmt.Errorf("opening model: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("opening gzip model: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	m, err := ReadVectors(r)
	if err != nil {
		return nil, fmt.Errorf("reading model %s: %w", path, err)
	}
	m.name = "vectors:" + strings.TrimSuffix(filepath.Base(path), ".gz")
	return m, nil
}

// ReadVectors parses word vectors from r.
func ReadVectors(r io.Reader) (*VectorModel, error) {
	m := &VectorModel{name: "vectors", vectors: make(map[string][]float64)}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for line := 1; sc.Scan(); line++ {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if line == 1 && len(fields) == 2 && isInt(fields[0]) && isInt(fields[1]) {
			continue
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: token without components", line)
		}

		vec := make([]float64, len(fields)-1)
		for i, s := range fields[1:] {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			vec[i] = v
		}
		if m.dim == 0 {
			m.dim = len(vec)
		} else if len(vec) != m.dim {
			return nil, fmt.Errorf("line %d: %d components, want %d", line, len(vec), m.dim)
		}
		m.vectors[fields[0]] = vec
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(m.vectors) == 0 {
		return nil, errors.New("no vectors found")
	}
	return m, nil
}

func isInt(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

// Name returns the backend and model file name.
func (m *VectorModel) Name() string { return m.name }

// Dimension returns the length of every vector.
func (m *VectorModel) Dimension() int { return m.dim }

// Vocabulary returns the number of known tokens.
func (m *VectorModel) Vocabulary() int { return len(m.vectors) }

// Embed averages the vectors of the known tokens in text. Tokens are looked
// up as written, then lower-cased. A text with no known token maps to the
// zero vector.
func (m *VectorModel) Embed(ctx context.Context, text string) ([]float64, error) {
	if m.vectors == nil {
		return nil, errors.New("model is closed")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sum := make([]float64, m.dim)
	n := 0
	for _, tok := range tokenPattern.FindAllString(text, -1) {
		vec, ok := m.vectors[tok]
		if !ok {
			vec, ok = m.vectors[strings.ToLower(tok)]
		}
		if !ok {
			continue
		}
		floats.Add(sum, vec)
		n++
	}
	if n > 0 {
		floats.Scale(1/float64(n), sum)
	}
	return sum, nil
}

// Close releases the vector table.
func (m *VectorModel) Close() error {
	m.vectors = nil
	return nil
}
