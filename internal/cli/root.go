package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/kanban-board/internal/board"
	"github.com/BuzzLyutic/kanban-board/internal/config"
)

// options - общие флаги всех команд
type options struct {
	apiURL  string
	timeout time.Duration
	verbose bool
}

// NewRootCmd собирает дерево команд CLI доски
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "board",
		Short: "Kanban board client",
		Long: `board talks to the kanban board API.

It shows the board column by column, moves cards between columns
with optimistic updates, and creates new tasks.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadClient()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			// флаги сильнее переменных окружения
			if !cmd.Flags().Changed("api-url") {
				opts.apiURL = cfg.APIURL
			}
			if !cmd.Flags().Changed("timeout") {
				opts.timeout = cfg.Timeout
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "board API base URL (env BOARD_API_URL)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 0, "per-request timeout (env BOARD_TIMEOUT)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(newShowCmd(opts))
	root.AddCommand(newMoveCmd(opts))
	root.AddCommand(newAddCmd(opts))
	return root
}

// Execute запускает CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (o *options) transport() *board.HTTPTransport {
	return board.NewHTTPTransport(o.apiURL, o.timeout)
}

func (o *options) logger() *zap.Logger {
	if !o.verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
