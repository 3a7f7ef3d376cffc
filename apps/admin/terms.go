package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/lessonflow/core"
	"github.com/trezcool/lessonflow/core/calendar"
	"github.com/trezcool/lessonflow/storage/termfile"
)

func (cli *commandLine) newTermsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "terms",
		Short: "Manage term dates",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errHelp
		},
	}
	cmd.AddCommand(
		cli.newTermsImportCmd(),
		cli.newTermsExportCmd(),
		cli.newTermsShowCmd(),
	)
	return cmd
}

func (cli *commandLine) newTermsImportCmd() *cobra.Command {
	var (
		file string
		year int
	)
	cmd := &cobra.Command{
		Use:   "import --file FILE [--year YEAR]",
		Short: "Import term dates from a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dates, err := termfile.Load(file)
			if err != nil {
				return err
			}
			if year != 0 {
				terms, ok := dates[year]
				if !ok {
					return fmt.Errorf("no term dates for %d in %s", year, file)
				}
				dates = map[int][]calendar.SchoolTerm{year: terms}
			}

			svc, err := cli.calendar(cmd.Context())
			if err != nil {
				return err
			}
			if err = termfile.Apply(cmd.Context(), svc, dates); err != nil {
				return err
			}
			fmt.Fprintf(cli.out, "imported term dates for %d year(s)\n", len(dates))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML file to read")
	cmd.Flags().IntVar(&year, "year", 0, "only import this year")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (cli *commandLine) newTermsExportCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "export --file FILE",
		Short: "Export every registered year to a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := cli.calendar(cmd.Context())
			if err != nil {
				return err
			}
			dates := make(map[int][]calendar.SchoolTerm)
			for _, year := range svc.Years() {
				if dates[year], err = svc.Terms(year); err != nil {
					return errors.Wrapf(err, "reading %d", year)
				}
			}
			if err = termfile.Save(file, dates); err != nil {
				return err
			}
			fmt.Fprintf(cli.out, "exported term dates for %d year(s)\n", len(dates))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML file to write")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (cli *commandLine) newTermsShowCmd() *cobra.Command {
	var year int
	cmd := &cobra.Command{
		Use:   "show --year YEAR",
		Short: "Print the terms and holidays of a year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := cli.calendar(cmd.Context())
			if err != nil {
				return err
			}
			terms, err := svc.Terms(year)
			if err != nil {
				return err
			}
			holidays, err := svc.Holidays(year)
			if err != nil {
				return err
			}

			cli.printSection(fmt.Sprintf("Terms %d", year))
			tw := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "TERM\tSTART\tEND\tWEEKS")
			for _, t := range terms {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", t.Number, core.FormatDate(t.Start), core.FormatDate(t.End), t.Weeks())
			}
			if err = tw.Flush(); err != nil {
				return err
			}

			cli.printSection("Holidays")
			tw = tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "START\tEND\tDAYS")
			for _, h := range holidays {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", core.FormatDate(h.Start), core.FormatDate(h.End), h.Days())
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "calendar year")
	_ = cmd.MarkFlagRequired("year")
	return cmd
}

func (cli *commandLine) newResolveCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "resolve --date YYYY-MM-DD",
		Short: "Print the school week of a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := core.ParseDate(date)
			if err != nil {
				return fmt.Errorf("invalid date %q: must be formatted as YYYY-MM-DD", date)
			}
			svc, err := cli.calendar(cmd.Context())
			if err != nil {
				return err
			}
			week, err := svc.Resolve(d)
			if err != nil {
				return err
			}
			holiday, err := svc.IsSchoolHoliday(d)
			if err != nil {
				return err
			}

			fmt.Fprintf(cli.out, "%s: %d term %d week %d (starts %s)\n",
				core.FormatDate(d), week.Year, week.Term, week.Number, core.FormatDate(week.Start))
			if holiday {
				fmt.Fprintln(cli.out, "school holiday")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "date to resolve")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}
