// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/paperscraper/pkg/types"
)

// WriteCSV writes a header row and one row per paper.
func WriteCSV(w io.Writer, papers []*types.Paper, headers []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, p := range papers {
		if err := cw.Write(Row(p, headers)); err != nil {
			return fmt.Errorf("writing CSV row for %s: %w", p.PMID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the CSV to path, creating parent directories. The
// file is written to a temp file in the same directory and renamed into
// place, so a failed write leaves any previous file intact.
func WriteCSVFile(path string, papers []*types.Paper, headers []string) error {
	return WriteFileAtomic(path, func(w io.Writer) error {
		return WriteCSV(w, papers, headers)
	})
}

// WriteFileAtomic creates parent directories of path, calls write on a temp
// file next to it and renames the temp file into place on success.
func WriteFileAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("setting permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file to %s: %w", path, err)
	}
	return nil
}
