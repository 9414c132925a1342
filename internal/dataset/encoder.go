// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"fmt"
	"sort"
)

// LabelEncoder maps label strings to a dense integer range. Fit assigns
// indices in ascending string order, so the mapping depends only on the set
// of labels seen.
type LabelEncoder struct {
	classes []string
	index   map[string]int
}

// NewLabelEncoder returns an encoder fitted to labels.
func NewLabelEncoder(labels []string) *LabelEncoder {
	e := &LabelEncoder{}
	e.Fit(labels)
	return e
}

// Fit learns the sorted set of unique labels.
func (e *LabelEncoder) Fit(labels []string) {
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		seen[l] = struct{}{}
	}
	e.classes = make([]string, 0, len(seen))
	for l := range seen {
		e.classes = append(e.classes, l)
	}
	sort.Strings(e.classes)
	e.index = make(map[string]int, len(e.classes))
	for i, c := range e.classes {
		e.index[c] = i
	}
}

// Classes returns label strings by encoded index.
func (e *LabelEncoder) Classes() []string {
	return append([]string(nil), e.classes...)
}

// Transform encodes labels. An unseen label is an error.
func (e *LabelEncoder) Transform(labels []string) ([]int, error) {
	out := make([]int, len(labels))
	for i, l := range labels {
		idx, ok := e.index[l]
		if !ok {
			return nil, fmt.Errorf("label %q was not seen during fit", l)
		}
		out[i] = idx
	}
	return out, nil
}

// Inverse decodes encoded labels back to strings.
func (e *LabelEncoder) Inverse(codes []int) ([]string, error) {
	out := make([]string, len(codes))
	for i, c := range codes {
		if c < 0 || c >= len(e.classes) {
			return nil, fmt.Errorf("code %d out of range [0, %d)", c, len(e.classes))
		}
		out[i] = e.classes[c]
	}
	return out, nil
}
