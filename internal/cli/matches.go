package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newMatchesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "matches",
		Short: "Browse finished matches",
	}

	cmd.AddCommand(newMatchesListCmd())
	cmd.AddCommand(newMatchesGetCmd())

	return cmd
}

func newMatchesListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent matches, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/matches"
			if limit > 0 {
				path = fmt.Sprintf("%s?limit=%d", path, limit)
			}

			var result MatchList
			if err := client.Get(cmd.Context(), path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Number of matches (default: server default)")

	return cmd
}

func newMatchesGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <match-id>",
		Short: "Show one match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Match

			path := fmt.Sprintf("/api/v1/matches/%s", url.PathEscape(args[0]))
			if err := client.Get(cmd.Context(), path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <username>",
		Short: "Show a player's totals across matches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Stats

			path := fmt.Sprintf("/api/v1/players/%s/stats", url.PathEscape(args[0]))
			if err := client.Get(cmd.Context(), path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}
