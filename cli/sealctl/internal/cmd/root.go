// Package cmd implements the CLI commands for sealctl.
package cmd

import (
	"github.com/recordseal/recordseal-go/application"
	"github.com/recordseal/recordseal-go/application/auditor"
	"github.com/recordseal/recordseal-go/cli"
	"github.com/spf13/cobra"
)

// RootCmd represents the base "sealctl" command when called without any subcommands.
var RootCmd = cli.NewRootCommand("sealctl",
	"Tamper-evident sealing of record datasets",
	`sealctl digests a dataset of records into a binary hash tree and
publishes the apex digest as a versioned snapshot. Any later insertion,
deletion, reordering or field change of a record changes the apex, and
the membership of a single record can be proven with its authentication
path against a published apex.`)

// openAuditor loads the config file named by the "config" flag of cmd
// and opens an Auditor with it.
func openAuditor(cmd *cobra.Command) (*auditor.Auditor, *application.Logger, error) {
	conf := new(auditor.Config)
	if err := conf.Load(cmd.Flag("config").Value.String(), "toml"); err != nil {
		return nil, nil, err
	}
	logger := application.NopLogger()
	if conf.Logger != nil {
		var err error
		if logger, err = application.NewLogger(conf.Logger); err != nil {
			return nil, nil, err
		}
	}
	a, err := auditor.New(conf, logger)
	if err != nil {
		return nil, nil, err
	}
	return a, logger, nil
}

// withAuditor runs fn with an Auditor opened from the config of cmd and
// closes it afterwards.
func withAuditor(cmd *cobra.Command, fn func(a *auditor.Auditor) error) error {
	a, logger, err := openAuditor(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer a.Close()
	return fn(a)
}
