package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	echoapi "github.com/trezcool/lessonflow/apps/api/echo"
)

func (cli *commandLine) newTokenCmd() *cobra.Command {
	var (
		name    string
		subject string
		isAdmin bool
	)
	cmd := &cobra.Command{
		Use:   "token --name NAME [--admin]",
		Short: "Issue an API token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if subject == "" {
				subject = uuid.New().String()
			}
			token, err := echoapi.GenerateToken(cli.conf, echoapi.NewClaims(cli.conf, subject, name, isAdmin))
			if err != nil {
				return err
			}
			fmt.Fprintln(cli.out, token)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "name of the token holder")
	cmd.Flags().StringVar(&subject, "subject", "", "token subject (random when empty)")
	cmd.Flags().BoolVar(&isAdmin, "admin", false, "allow editing term dates")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
