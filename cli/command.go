// Package cli provides the cobra command builders shared by the
// recordseal executables.
package cli

import (
	"github.com/spf13/cobra"
)

// RunFunc implements the behaviour of a command. A returned error is
// printed by ExecuteRoot, which then exits with a non-zero status.
type RunFunc func(cmd *cobra.Command, args []string) error

// cobraCommand is used to implement any type of cobra command
// for any of the recordseal command-line tools and executables.
type cobraCommand interface {
	Build() *cobra.Command
}
