package main

import (
	"github.com/spf13/cobra"

	"github.com/trezcool/lessonflow/storage/database"
)

var gooseRunFunc = database.RunMigration // mockable

func (cli *commandLine) newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate COMMAND [ARGS]",
		Short: "Run a database migration command",
		Long: `Run a goose command against the embedded migrations.

Commands: up, up-by-one, up-to VERSION, down, down-to VERSION, redo, reset, status, version, fix.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Help()
				return errHelp
			}
			if cli.db == nil {
				return errNoSQL
			}
			return gooseRunFunc(args[0], cli.db, args[1:]...)
		},
	}
}
