// Executable sealctl seals record datasets under hash tree apexes and
// checks them later. See README for usage instructions.
package main

import (
	"github.com/recordseal/recordseal-go/cli"
	"github.com/recordseal/recordseal-go/cli/sealctl/internal/cmd"
)

func main() {
	cli.ExecuteRoot(cmd.RootCmd)
}
