package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pkordes/babysteps/backend/internal/domain"
)

func newMilestonesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "milestones",
		Short: "Inspect milestones",
	}

	var category string
	list := &cobra.Command{
		Use:   "list",
		Short: "List milestones by date, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, func(ctx context.Context, s services) error {
				items := s.milestoneSvc.Timeline(ctx)
				if category != "" {
					c := domain.Category(category)
					if !c.Valid() {
						return fmt.Errorf("unknown category %q", category)
					}
					filtered := items[:0]
					for _, m := range items {
						if m.Category == c {
							filtered = append(filtered, m)
						}
					}
					items = filtered
				}

				if ok, err := a.encode(cmd.OutOrStdout(), items); ok {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tDATE\tWHEN\tCATEGORY\tTITLE")
				for _, m := range items {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
						m.ID, m.Date.Format("2006-01-02"),
						humanize.RelTime(m.Date, a.now(), "ago", "from now"),
						m.Category, m.Title)
				}
				return tw.Flush()
			})
		},
	}
	list.Flags().StringVarP(&category, "category", "c", "", "Only show milestones of this category")
	cmd.AddCommand(list)
	return cmd
}

func newTipsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tips",
		Short: "Inspect and moderate community tips",
	}

	var milestoneType string
	list := &cobra.Command{
		Use:   "list",
		Short: "List community tips",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, func(ctx context.Context, s services) error {
				return a.printTips(cmd, s.tipSvc.List(ctx, milestoneType))
			})
		},
	}
	list.Flags().StringVarP(&milestoneType, "milestone-type", "m", "", "Only show tips for this milestone type")

	var unset bool
	verify := &cobra.Command{
		Use:   "verify <id>",
		Short: "Mark a tip as verified (or clear the mark with --unset)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, s services) error {
				tip, err := s.tipSvc.SetVerified(ctx, args[0], !unset)
				if err != nil {
					return fmt.Errorf("tip %s: %w", args[0], err)
				}
				return a.printTips(cmd, []domain.Tip{tip})
			})
		},
	}
	verify.Flags().BoolVar(&unset, "unset", false, "Clear the verified mark instead")

	cmd.AddCommand(list, verify)
	return cmd
}

func (a *app) printTips(cmd *cobra.Command, tips []domain.Tip) error {
	if ok, err := a.encode(cmd.OutOrStdout(), tips); ok {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLIKES\tVERIFIED\tTYPE\tAUTHOR\tPOSTED\tCONTENT")
	for _, t := range tips {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, humanize.Comma(int64(t.Likes)), strconv.FormatBool(t.Verified),
			t.MilestoneType, t.Author,
			humanize.RelTime(t.CreatedAt, a.now(), "ago", "from now"),
			truncate(t.Content, 60))
	}
	return tw.Flush()
}

func newRecommendCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "recommend",
		Short: "Show the current recommendations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, func(ctx context.Context, s services) error {
				res := s.recSvc.Get(ctx)
				if ok, err := a.encode(cmd.OutOrStdout(), res); ok {
					return err
				}

				out := cmd.OutOrStdout()
				if res.Week != nil {
					fmt.Fprintf(out, "Estimated week: %s\n\n", humanize.Ordinal(*res.Week))
				} else {
					fmt.Fprint(out, "Estimated week: unknown\n\n")
				}
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "PRIORITY\tTYPE\tTITLE\tDESCRIPTION")
				for _, r := range res.Items {
					fmt.Fprintf(tw, "%s\t%s\t%s %s\t%s\n", r.Priority, r.Type, r.Icon, r.Title, r.Description)
				}
				return tw.Flush()
			})
		},
	}
}

func newResetCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Replace all milestones and tips with the sample data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("reset discards every milestone and tip; pass --yes to confirm")
			}
			return a.run(cmd, func(ctx context.Context, s services) error {
				if err := s.milestones.Reset(ctx); err != nil {
					return err
				}
				if err := s.tips.Reset(ctx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "reset: %d milestones, %d tips\n",
					len(s.milestones.All()), len(s.tips.All()))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the reset")
	return cmd
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(strings.ReplaceAll(s, "\n", " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}
