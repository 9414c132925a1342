//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Pipeline groups the pipeline stage targets. Each one runs the built
// binary with its default paths; set PREPRINT_CLASSIFIER_* variables or a
// preprint-classifier.yaml file to change them.
type Pipeline mg.Namespace

func runStage(args ...string) error {
	mg.Deps(Build)
	return sh.RunV(binPath(), args...)
}

// Fetch downloads metadata for data/doi_list.txt into data/preprints_by_dois.tsv.
func (Pipeline) Fetch() error { return runStage("fetch") }

// Merge joins data/label_list.txt onto the fetched preprints.
func (Pipeline) Merge() error { return runStage("merge") }

// Features embeds, balances, and splits data/preprints.tsv into data/features.
func (Pipeline) Features() error { return runStage("build") }

// Train fits and evaluates both classifiers on data/features.
func (Pipeline) Train() error { return runStage("train") }

// All runs every stage in order.
func (Pipeline) All() {
	mg.SerialDeps(Pipeline.Fetch, Pipeline.Merge, Pipeline.Features, Pipeline.Train)
}
