package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/BuzzLyutic/kanban-board/internal/board"
	"github.com/BuzzLyutic/kanban-board/internal/model"
)

func newMoveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "move <task-id> <status>",
		Short: "Move a card to another column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid task id %q", args[0])
			}
			to := model.Status(args[1])

			ctrl := board.NewController(opts.transport(), board.Callbacks{
				OnError: func(msg string) {
					fmt.Fprintln(cmd.ErrOrStderr(), "✗ "+msg)
				},
				OnSuccess: func(msg string) {
					fmt.Fprintln(cmd.OutOrStdout(), "✓ "+msg)
				},
			}, opts.logger())

			if err := ctrl.Refresh(cmd.Context()); err != nil {
				return fmt.Errorf("failed to load board: %w", err)
			}
			return ctrl.Move(cmd.Context(), model.TaskID(id), to)
		},
	}
}
