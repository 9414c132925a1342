//go:build mage

// Package main contains Mage build targets for preprint-classifier developer
// tooling and for running the pipeline stages end to end.
package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/magefile/mage/sh"
)

// projectDirs lists the working directories the pipeline expects.
var projectDirs = []string{
	"data",
	"data/features",
	"models",
	".secrets",
}

// Init creates the data directory layout for the pipeline.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Project directories initialized.")
	return nil
}

const (
	binDir  = "bin"
	binName = "preprint-classifier"
	cmdPkg  = "./cmd/preprint-classifier"
)

func binPath() string { return filepath.Join(binDir, binName) }

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || version == "" {
		version = "dev"
	}
	ldflags := "-X main.version=" + version
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", binPath(), cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s (%s)\n", binPath(), version)
	return nil
}

// Test runs the unit tests for every package.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Clean removes the built binary and generated features.
func Clean() error {
	for _, p := range []string{binDir, "data/features"} {
		if err := sh.Rm(p); err != nil {
			return err
		}
	}
	return nil
}

// Stats prints Go production and test line counts per package directory.
func Stats() error {
	prod, test, err := countGoLines(".")
	if err != nil {
		return err
	}
	var totalProd, totalTest int
	for _, dir := range sortedKeys(prod, test) {
		fmt.Printf("%-28s %6d prod %6d test\n", dir, prod[dir], test[dir])
		totalProd += prod[dir]
		totalTest += test[dir]
	}
	fmt.Printf("%-28s %6d prod %6d test\n", "total", totalProd, totalTest)
	return nil
}

// countGoLines counts non-blank lines in Go files per directory, split into
// production and _test.go files. Hidden directories and _-prefixed ones are
// skipped, as the go tool does.
func countGoLines(root string) (prod, test map[string]int, err error) {
	prod, test = map[string]int{}, map[string]int{}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(name) != ".go" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		n := 0
		sc := bufio.NewScanner(bytes.NewReader(data))
		for sc.Scan() {
			if strings.TrimSpace(sc.Text()) != "" {
				n++
			}
		}
		dir := filepath.Dir(path)
		if strings.HasSuffix(name, "_test.go") {
			test[dir] += n
		} else {
			prod[dir] += n
		}
		return nil
	})
	return prod, test, err
}

func sortedKeys(maps ...map[string]int) []string {
	seen := map[string]bool{}
	var keys []string
	for _, m := range maps {
		for k := range m {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}
