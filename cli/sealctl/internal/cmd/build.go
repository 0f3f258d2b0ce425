package cmd

import (
	"fmt"

	"github.com/recordseal/recordseal-go/application/auditor"
	"github.com/recordseal/recordseal-go/cli"
	"github.com/spf13/cobra"
)

var buildCmd = cli.NewTaskCommand("build <dataset>",
	"Build the hash tree of a dataset and publish its apex.",
	`Build the hash tree of the processed dataset and store its apex as the
next snapshot version. Earlier versions are kept. With --dry-run the
tree is built and described but nothing is stored.`,
	1, buildRunFunc)

func init() {
	RootCmd.AddCommand(buildCmd)
	buildCmd.Flags().Bool("dry-run", false, "Build without publishing a snapshot")
}

func buildRunFunc(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	out := cmd.OutOrStdout()
	return withAuditor(cmd, func(a *auditor.Auditor) error {
		if dryRun {
			tree, err := a.Build(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Leaves:      %d\n", tree.Len())
			fmt.Fprintf(out, "Height:      %d\n", tree.Height())
			fmt.Fprintf(out, "Vertices:    %d\n", tree.Vertices())
			fmt.Fprintf(out, "Peak memory: %d bytes\n", tree.PeakMemory())
			fmt.Fprintf(out, "Apex:        %s\n", tree.Apex())
			return nil
		}
		report, err := a.Publish(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Leaves:      %d\n", report.Leaves)
		fmt.Fprintf(out, "Height:      %d\n", report.Height)
		fmt.Fprintf(out, "Vertices:    %d\n", report.Vertices)
		fmt.Fprintf(out, "Peak memory: %d bytes\n", report.PeakMemory)
		fmt.Fprintf(out, "Apex:        %s\n", report.Snapshot.RootHash)
		fmt.Fprintf(out, "Published %s version %d\n", report.Snapshot.Dataset, report.Snapshot.Version)
		return nil
	})
}
