package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/recordseal/recordseal-go/application/auditor"
	"github.com/recordseal/recordseal-go/merkletree"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <proof.json>",
	Short: "Verify an exported proof without the dataset.",
	Long: `Verify a proof written by "locate --out". The proof is checked against
the apex given with --apex or, without it, against the apex of the
snapshot the proof names in the configured snapshot store. The apex
recorded in the proof file itself is never trusted.`,
	Args: cobra.ExactArgs(1),
	RunE: verifyRunFunc,
}

func init() {
	RootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().String("apex", "", "Trusted hex apex to verify against")
	verifyCmd.Flags().StringP("config", "c", "config.toml", "Path to configuration file")
}

func verifyRunFunc(cmd *cobra.Command, args []string) error {
	buf, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	proof := new(auditor.Proof)
	if err := json.Unmarshal(buf, proof); err != nil {
		return fmt.Errorf("%w: %v", merkletree.ErrMalformedPath, err)
	}
	if apex := cmd.Flag("apex").Value.String(); apex != "" {
		err = proof.Verify(apex)
	} else {
		err = withAuditor(cmd, func(a *auditor.Auditor) error {
			_, err := a.VerifyProof(cmd.Context(), proof)
			return err
		})
	}
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Proof: INVALID")
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Proof: VALID (record %s, %s version %d)\n",
		proof.Path.RecordID, proof.Dataset, proof.Version)
	return nil
}
