package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/recordseal/recordseal-go/application"
	"github.com/recordseal/recordseal-go/application/auditor"
	"github.com/recordseal/recordseal-go/cli"
	"github.com/spf13/cobra"
)

var initCmd = cli.NewInitCommand("sealctl", initRunFunc)

func init() {
	RootCmd.AddCommand(initCmd)
	initCmd.Flags().StringP("dir", "d", ".", "Location of directory for storing generated files")
	initCmd.Flags().BoolP("keys", "k", false, "Generate an ed25519 key pair for signing snapshots")
	initCmd.Flags().StringP("backend", "b", auditor.BackendLevelDB, "Snapshot store backend (leveldb or file)")
}

func initRunFunc(cmd *cobra.Command, args []string) error {
	dir := cmd.Flag("dir").Value.String()
	if err := os.MkdirAll(filepath.Join(dir, "data", "raw"), 0755); err != nil {
		return err
	}

	conf := auditor.NewConfig(filepath.Join(dir, "config.toml"), &application.LoggerConfig{
		EnableStacktrace: false,
		Environment:      "production",
		Path:             "sealctl.log",
	})
	switch backend := cmd.Flag("backend").Value.String(); backend {
	case auditor.BackendLevelDB:
	case auditor.BackendFile:
		conf.Store = &auditor.StoreConfig{Backend: backend, Path: "roots"}
	default:
		return fmt.Errorf("%w: unknown store backend %q", auditor.ErrConfig, backend)
	}

	keys, _ := cmd.Flags().GetBool("keys")
	if keys {
		conf.SignKeyPath = "sign.priv"
		conf.SignPubKeyPath = "sign.pub"
		if _, err := application.WriteSigningKeyPair(
			filepath.Join(dir, conf.SignKeyPath),
			filepath.Join(dir, conf.SignPubKeyPath)); err != nil {
			return err
		}
	}
	if err := conf.Save(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Wrote", conf.GetPath())
	return nil
}
