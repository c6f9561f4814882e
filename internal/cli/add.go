package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/BuzzLyutic/kanban-board/internal/filter"
	"github.com/BuzzLyutic/kanban-board/internal/model"
)

func newAddCmd(opts *options) *cobra.Command {
	var (
		description string
		status      string
		priority    string
		owner       int64
		deadline    string
		idempKey    string
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := model.TaskInput{
				Title:       strings.Join(args, " "),
				Description: description,
				Status:      model.Status(status),
				Priority:    model.Priority(priority),
			}
			if cmd.Flags().Changed("owner") {
				in.OwnerID = &owner
			}
			if deadline != "" {
				d, err := time.Parse(filter.DateLayout, deadline)
				if err != nil {
					return fmt.Errorf("invalid deadline %q: want YYYY-MM-DD", deadline)
				}
				in.Deadline = &d
			}
			// ключ один на вызов, повтор запроса не создаст дубль
			if idempKey == "" {
				idempKey = uuid.NewString()
			}

			task, err := opts.transport().CreateTask(cmd.Context(), in, idempKey)
			if err != nil {
				return fmt.Errorf("failed to create task: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created #%d %q in %s\n", task.ID, task.Title, task.Status)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "task description")
	cmd.Flags().StringVarP(&status, "status", "s", "", "initial status (default todo)")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "priority (default medium)")
	cmd.Flags().Int64Var(&owner, "owner", 0, "owner id")
	cmd.Flags().StringVar(&deadline, "deadline", "", "deadline YYYY-MM-DD")
	cmd.Flags().StringVar(&idempKey, "idempotency-key", "", "idempotency key (random by default)")
	return cmd
}
