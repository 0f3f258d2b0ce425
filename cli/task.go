package cli

import (
	"github.com/spf13/cobra"
)

// A taskCommand is used to create one of an executable's
// operations on its configured data, such as building or checking.
type taskCommand struct {
	use     string
	short   string
	long    string
	args    cobra.PositionalArgs
	runFunc RunFunc
}

var _ cobraCommand = (*taskCommand)(nil)

// NewTaskCommand constructs a new command named by use, taking exactly
// nargs positional arguments, whose behaviour is runFunc.
// The command reads the executable's config file, whose path is given
// by the "config" flag.
func NewTaskCommand(use, short, long string, nargs int, runFunc RunFunc) *cobra.Command {
	taskCmd := &taskCommand{
		use:     use,
		short:   short,
		long:    long,
		args:    cobra.ExactArgs(nargs),
		runFunc: runFunc,
	}
	return taskCmd.Build()
}

// Build constructs the cobra.Command according to the
// taskCommand's settings.
func (taskCmd *taskCommand) Build() *cobra.Command {
	cmd := cobra.Command{
		Use:   taskCmd.use,
		Short: taskCmd.short,
		Long:  taskCmd.long,
		Args:  taskCmd.args,
		RunE:  taskCmd.runFunc,
	}
	cmd.Flags().StringP("config", "c", "config.toml", "Path to configuration file")
	return &cmd
}
