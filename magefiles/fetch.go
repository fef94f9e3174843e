//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Fetch builds the CLI and runs a query against PubMed. QUERY selects the
// search (default "CRISPR"); OUT, when set, names the output file.
func Fetch() error {
	mg.Deps(Build)

	query := os.Getenv("QUERY")
	if query == "" {
		query = "CRISPR"
	}
	args := []string{"fetch", query}
	if out := os.Getenv("OUT"); out != "" {
		args = append(args, "--file", out)
	}

	fmt.Printf("[fetch] %s\n", query)
	return sh.RunV(filepath.Join(binDir, binName), args...)
}
