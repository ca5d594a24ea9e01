package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newRoomsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "Inspect live rooms",
	}

	cmd.AddCommand(newRoomsListCmd())
	cmd.AddCommand(newRoomsGetCmd())

	return cmd
}

func newRoomsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rooms, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result RoomList

			if err := client.Get(cmd.Context(), "/api/v1/rooms", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newRoomsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <room-id>",
		Short: "Show a room and its players",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Room

			path := fmt.Sprintf("/api/v1/rooms/%s", url.PathEscape(args[0]))
			if err := client.Get(cmd.Context(), path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}
