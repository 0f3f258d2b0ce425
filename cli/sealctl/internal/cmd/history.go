package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/recordseal/recordseal-go/application/auditor"
	"github.com/recordseal/recordseal-go/cli"
	"github.com/spf13/cobra"
)

var historyCmd = cli.NewTaskCommand("history <dataset>",
	"List and audit the snapshots of a dataset.",
	`List every published snapshot of the dataset and check that each one
links to its predecessor. If a signing public key is configured, every
snapshot signature is checked too.`,
	1, historyRunFunc)

func init() {
	RootCmd.AddCommand(historyCmd)
}

func historyRunFunc(cmd *cobra.Command, args []string) error {
	return withAuditor(cmd, func(a *auditor.Auditor) error {
		report, err := a.History(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "VERSION\tTIMESTAMP\tRECORDS\tHEIGHT\tHASHER\tSIGNED\tAPEX")
		for _, s := range report.Snapshots {
			fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\t%t\t%s\n",
				s.Version, s.Timestamp.Format(time.RFC3339), s.RecordCount,
				s.TreeHeight, s.Hasher, s.Signature != "", s.RootHash)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		if report.Err != nil {
			return report.Err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Chain: VALID")
		return nil
	})
}
