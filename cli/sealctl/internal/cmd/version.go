package cmd

import (
	"github.com/recordseal/recordseal-go/cli"
)

var versionCmd = cli.NewVersionCommand("sealctl")

func init() {
	RootCmd.AddCommand(versionCmd)
}
