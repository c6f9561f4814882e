package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/BuzzLyutic/kanban-board/internal/board"
	"github.com/BuzzLyutic/kanban-board/internal/filter"
	"github.com/BuzzLyutic/kanban-board/internal/model"
)

func newShowCmd(opts *options) *cobra.Command {
	raw := map[string]*string{}
	flagKeys := []struct{ flag, key, usage string }{
		{"status", filter.KeyStatus, "comma-separated statuses (todo,in_progress,review,done)"},
		{"priority", filter.KeyPriority, "comma-separated priorities (low,medium,high)"},
		{"title", filter.KeyTitle, "case-insensitive title substring"},
		{"user", filter.KeyUserID, "owner id"},
		{"from", filter.KeyDateFrom, "created on or after YYYY-MM-DD"},
		{"to", filter.KeyDateTo, "created on or before YYYY-MM-DD"},
		{"deadline-from", filter.KeyDeadlineFrom, "deadline on or after YYYY-MM-DD"},
		{"deadline-to", filter.KeyDeadlineTo, "deadline on or before YYYY-MM-DD"},
	}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the board grouped by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params := map[string]string{}
			for _, fk := range flagKeys {
				if cmd.Flags().Changed(fk.flag) {
					params[fk.key] = *raw[fk.flag]
				}
			}
			f, err := filter.Compile(params)
			if err != nil {
				return err
			}

			ctrl := board.NewController(opts.transport(), board.Callbacks{}, opts.logger())
			ctrl.SetFilter(f)
			if err := ctrl.Refresh(cmd.Context()); err != nil {
				return fmt.Errorf("failed to load board: %w", err)
			}

			printBoard(cmd, ctrl.View())
			return nil
		},
	}

	for _, fk := range flagKeys {
		raw[fk.flag] = cmd.Flags().String(fk.flag, "", fk.usage)
	}
	return cmd
}

func printBoard(cmd *cobra.Command, b model.Board) {
	out := cmd.OutOrStdout()
	for _, s := range model.Statuses {
		fmt.Fprintf(out, "%s (%d)\n", columnTitle(s), len(b[s]))

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, t := range b[s] {
			owner := "-"
			if t.OwnerID != nil {
				owner = fmt.Sprintf("%d", *t.OwnerID)
			}
			deadline := "-"
			if t.Deadline != nil {
				deadline = t.Deadline.Format(filter.DateLayout)
			}
			fmt.Fprintf(w, "  #%d\t%s\t%s\t%s\t%s\n", t.ID, truncate(t.Title, 50), t.Priority, owner, deadline)
		}
		w.Flush()
	}
	fmt.Fprintf(out, "\nTotal: %d tasks\n", b.Len())
}

func columnTitle(s model.Status) string {
	switch s {
	case model.StatusTodo:
		return "TODO"
	case model.StatusInProgress:
		return "IN PROGRESS"
	case model.StatusReview:
		return "REVIEW"
	case model.StatusDone:
		return "DONE"
	default:
		return string(s)
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
