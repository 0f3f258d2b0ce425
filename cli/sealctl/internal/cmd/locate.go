package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/recordseal/recordseal-go/application/auditor"
	"github.com/recordseal/recordseal-go/cli"
	"github.com/recordseal/recordseal-go/crypto"
	"github.com/recordseal/recordseal-go/utils"
	"github.com/spf13/cobra"
)

var locateCmd = cli.NewTaskCommand("locate <dataset> <record-id>",
	"Prove the membership of one record.",
	`Find the record in the processed dataset, print its authentication path
from the leaf up to the apex, and verify that the path leads to the apex
of the latest published snapshot. With --out the proof is exported as
JSON for offline verification.`,
	2, locateRunFunc)

func init() {
	RootCmd.AddCommand(locateCmd)
	locateCmd.Flags().StringP("out", "o", "", "Write the proof as JSON to this file")
}

// abbrev shortens a hex digest for display.
func abbrev(digest []byte) string {
	h := crypto.ToHex(digest)
	if len(h) > 16 {
		return h[:16] + "..."
	}
	return h
}

func locateRunFunc(cmd *cobra.Command, args []string) error {
	outFile := cmd.Flag("out").Value.String()
	return withAuditor(cmd, func(a *auditor.Auditor) error {
		report, err := a.Locate(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		proof := report.Proof
		fmt.Fprintf(out, "Record %s at leaf %d of %d\n",
			proof.Path.RecordID, proof.Path.LeafIndex, proof.Path.TreeSize)
		fmt.Fprintf(out, "Leaf digest: %s\n", proof.LeafDigest)
		for i, step := range proof.Path.Steps {
			fmt.Fprintf(out, "  step %2d: %-5s sibling %s\n", i+1, step.Position, abbrev(step.Sibling))
		}
		fmt.Fprintf(out, "Stored apex:  %s (version %d)\n", proof.Apex, proof.Version)
		fmt.Fprintf(out, "Current apex: %s\n", report.CurrentApex)
		if report.Verified {
			fmt.Fprintln(out, "Proof: VALID")
		} else {
			fmt.Fprintln(out, "Proof: INVALID")
		}

		if outFile != "" {
			buf, err := json.MarshalIndent(proof, "", "  ")
			if err != nil {
				return err
			}
			if err := utils.WriteFile(outFile, append(buf, '\n'), 0644); err != nil {
				return err
			}
			fmt.Fprintln(out, "Wrote", outFile)
		}
		if !report.Verified {
			return errIntegrity
		}
		return nil
	})
}
