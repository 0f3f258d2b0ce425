package cmd

import (
	"errors"
	"fmt"

	"github.com/recordseal/recordseal-go/application/auditor"
	"github.com/recordseal/recordseal-go/cli"
	"github.com/recordseal/recordseal-go/merkletree"
	"github.com/spf13/cobra"
)

// errIntegrity makes check exit with a non-zero status on a mismatch.
var errIntegrity = errors.New("integrity check failed")

var checkCmd = cli.NewTaskCommand("check <dataset>",
	"Check a dataset against its latest snapshot.",
	`Rebuild the hash tree of the processed dataset and compare its apex with
the apex of the latest published snapshot.`,
	1, checkRunFunc)

func init() {
	RootCmd.AddCommand(checkCmd)
}

func checkRunFunc(cmd *cobra.Command, args []string) error {
	return withAuditor(cmd, func(a *auditor.Auditor) error {
		report, err := a.Check(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Snapshot version: %d\n", report.Version)
		fmt.Fprintf(out, "Stored apex:      %s\n", report.StoredApex)
		fmt.Fprintf(out, "Current apex:     %s\n", report.CurrentApex)
		fmt.Fprintf(out, "Stored records:   %d\n", report.StoredCount)
		fmt.Fprintf(out, "Current records:  %d\n", report.CurrentCount)
		fmt.Fprintf(out, "Status:           %s\n", report.Result)
		if report.Result != merkletree.Match {
			return errIntegrity
		}
		return nil
	})
}
