package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"chocan/internal/report"
)

func printSummary(w io.Writer, s report.Summary) {
	fmt.Fprintf(w, "%s: %d delivered, %d failed, %d skipped, %d outside window\n",
		s.Category, len(s.Delivered), len(s.Failed), len(s.Skipped), s.Stale)
}

func reportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "report", Short: "Generate and deliver reports"}
	run := func(use, short string, fn func(context.Context) (report.Summary, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				sum, err := fn(cmd.Context())
				printSummary(cmd.OutOrStdout(), sum)
				return err
			},
		}
	}
	cmd.AddCommand(
		run("member", "One report per member with recent consultations", func(ctx context.Context) (report.Summary, error) { return a.engine.MemberReports(ctx) }),
		run("provider", "One report per provider with recent consultations", func(ctx context.Context) (report.Summary, error) { return a.engine.ProviderReports(ctx) }),
		run("manager", "Every consultation, to the manager", func(ctx context.Context) (report.Summary, error) { return a.engine.ManagerReport(ctx) }),
	)

	var to string
	directory := &cobra.Command{
		Use:   "directory",
		Short: "Send the provider directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sum, err := a.engine.ProviderDirectory(cmd.Context(), to)
			printSummary(cmd.OutOrStdout(), sum)
			return err
		},
	}
	directory.Flags().StringVar(&to, "to", "", "recipient address")
	_ = directory.MarkFlagRequired("to")

	all := &cobra.Command{
		Use:   "all",
		Short: "Run the weekly member, provider and manager reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sums, err := a.engine.RunAccounting(cmd.Context())
			for _, s := range sums {
				printSummary(cmd.OutOrStdout(), s)
			}
			return err
		},
	}
	cmd.AddCommand(directory, all)
	return cmd
}
