// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperscraper/internal/classify"
	"github.com/pdiddy/paperscraper/internal/export"
)

var columnsCmd = &cobra.Command{
	Use:   "columns",
	Short: "List output columns and column sets",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()

		fmt.Fprintln(w, "Columns:")
		for _, c := range export.AllColumns() {
			note := ""
			if c == export.ColAbstract {
				note = " (requires --include-abstract)"
			}
			fmt.Fprintf(w, "  %s%s\n", c, note)
		}

		fmt.Fprintln(w, "\nColumn sets:")
		for _, s := range []export.ColumnSet{export.SetDefault, export.SetAll, export.SetMinimal} {
			fmt.Fprintf(w, "  %-8s %s\n", s, strings.Join(s.Columns(), ", "))
		}

		if show, _ := cmd.Flags().GetBool("keywords"); show {
			nonAcademic, academic := classify.Keywords()
			fmt.Fprintln(w, "\nNon-academic keywords (take priority):")
			fmt.Fprintf(w, "  %s\n", strings.Join(nonAcademic, ", "))
			fmt.Fprintln(w, "\nAcademic keywords:")
			fmt.Fprintf(w, "  %s\n", strings.Join(academic, ", "))
		}
		return nil
	},
}

func init() {
	columnsCmd.Flags().Bool("keywords", false, "also list the affiliation keywords")

	rootCmd.AddCommand(columnsCmd)
}
