package main

import (
	"context"
	"database/sql"
	"io"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/lessonflow/core"
	"github.com/trezcool/lessonflow/core/calendar"
)

var (
	errHelp  = errors.New("help provided")
	errNoSQL = errors.New("migrations require a postgres database")

	sectionColor = color.New(color.FgCyan, color.Bold)
)

type commandLine struct {
	conf     *core.Config
	logger   core.Logger
	db       *sql.DB // nil when in memory
	termRepo calendar.Repository
	out      io.Writer
}

func (cli *commandLine) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "LessonFlow administration",
		Long:          "admin manages the LessonFlow database, its term dates and API tokens.",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errHelp
		},
	}
	root.SetOut(cli.out)
	root.SetErr(cli.out)

	root.AddCommand(
		cli.newMigrateCmd(),
		cli.newTermsCmd(),
		cli.newResolveCmd(),
		cli.newTokenCmd(),
	)
	return root
}

// run executes args, without the program name.
func (cli *commandLine) run(ctx context.Context, args []string) error {
	if args == nil {
		args = []string{} // cobra falls back to os.Args on nil
	}
	root := cli.newRootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// calendar loads a calendar service from the term repository.
func (cli *commandLine) calendar(ctx context.Context) (*calendar.Service, error) {
	return calendar.NewService(ctx, cli.termRepo, cli.logger)
}

func (cli *commandLine) printSection(title string) {
	_, _ = sectionColor.Fprintf(cli.out, "%s\n", title)
}
