package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/harvest/internal/advance"
	"github.com/MrJamesThe3rd/harvest/internal/aging"
	"github.com/MrJamesThe3rd/harvest/internal/app"
	"github.com/MrJamesThe3rd/harvest/internal/http/auth"
)

func runCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the daily status update and collection cascade now",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				asOf, err := parseDate(date, a.Config.Location())
				if err != nil {
					return err
				}

				report, err := a.Runner.RunDaily(cmd.Context(), asOf)
				if err != nil {
					return err
				}

				return printJSON(cmd.OutOrStdout(), report)
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Run date as YYYY-MM-DD (default today)")

	return cmd
}

func targetsCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "targets",
		Short: "List the advances the cascade would contact",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				asOf, err := parseDate(date, a.Config.Location())
				if err != nil {
					return err
				}

				targets, err := a.Dispatcher.Targets(cmd.Context(), asOf)
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "CONTRACT\tDAYS\tSTAGE\tAMOUNT DUE\tATTEMPTS\tOPTED OUT")

				for _, t := range targets {
					fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%d\t%t\n",
						t.ContractNumber, t.DaysFromDue, t.Stage, t.AmountDue.StringFixed(2), t.AttemptCount, t.OptedOut)
				}

				return tw.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Selection date as YYYY-MM-DD (default today)")

	return cmd
}

func agingCmd() *cobra.Command {
	var (
		date string
		xlsx string
	)

	cmd := &cobra.Command{
		Use:   "aging",
		Short: "Print the receivables aging report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				asOf, err := parseDate(date, a.Config.Location())
				if err != nil {
					return err
				}

				report, err := a.Aging.Generate(cmd.Context(), asOf)
				if err != nil {
					return err
				}

				if xlsx == "" {
					return printAging(cmd.OutOrStdout(), report)
				}

				f, err := os.Create(xlsx)
				if err != nil {
					return fmt.Errorf("create %s: %w", xlsx, err)
				}
				defer f.Close()

				if err := aging.WriteXLSX(f, report); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d advances)\n", xlsx, report.Count)

				return nil
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Report date as YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&xlsx, "xlsx", "", "Write the report to this .xlsx file instead of stdout")

	return cmd
}

func lateFeeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "late-fee <amount> <days-overdue>",
		Short: "Compute the late fee for an amount and days overdue",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[0], err)
			}

			days, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid days %q: %w", args[1], err)
			}

			return printJSON(cmd.OutOrStdout(), advance.CalculateLateFee(amount, days))
		},
	}
}

func tokenCmd() *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token <operator>",
		Short: "Issue an API token for an operator, signed with JWT_SECRET",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := os.Getenv("JWT_SECRET")
			if secret == "" {
				return fmt.Errorf("JWT_SECRET is not set")
			}

			token, err := auth.Sign(args[0], secret, ttl)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)

			return nil
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "Token lifetime")

	return cmd
}

func parseDate(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Now().In(loc), nil
	}

	t, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}

	return t, nil
}

func printAging(w io.Writer, r *aging.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Aging as of %s\n\n", r.AsOf.Format(time.DateOnly))
	fmt.Fprintln(tw, "BUCKET\tCOUNT\tBALANCE")

	for _, b := range r.Buckets {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", b.Bucket, b.Count, b.Balance.StringFixed(2))
	}

	fmt.Fprintf(tw, "TOTAL\t%d\t%s\n", r.Count, r.Total.StringFixed(2))

	return tw.Flush()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
