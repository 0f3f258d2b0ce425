package cmd

import (
	"fmt"

	"github.com/recordseal/recordseal-go/application/auditor"
	"github.com/recordseal/recordseal-go/cli"
	"github.com/recordseal/recordseal-go/dataset"
	"github.com/spf13/cobra"
)

var importCmd = cli.NewTaskCommand("import <dataset>",
	"Normalize a raw dataset.",
	`Read the JSON lines file data/raw/<dataset>.json, fill missing fields
with defaults, trim text fields, drop duplicate reviews and assign
sequential record identifiers. The result is written to
data/processed/<dataset>_proc.json.`,
	1, importRunFunc)

func init() {
	RootCmd.AddCommand(importCmd)
	importCmd.Flags().IntP("limit", "n", 0, "Import at most this many raw records (0 imports all)")
}

func importRunFunc(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	return withAuditor(cmd, func(a *auditor.Auditor) error {
		stats, err := a.Import(cmd.Context(), args[0], limit, dataset.ReviewSchema())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Records loaded:        %d\n", stats.TotalLoaded)
		fmt.Fprintf(out, "Valid records:         %d\n", stats.ValidRecords)
		fmt.Fprintf(out, "Duplicates removed:    %d\n", stats.DuplicatesRemoved)
		fmt.Fprintf(out, "Missing fields filled: %d\n", stats.MissingFieldsHandled)
		fmt.Fprintf(out, "Identifiers assigned:  %d\n", stats.UniqueIDsGenerated)
		return nil
	})
}
