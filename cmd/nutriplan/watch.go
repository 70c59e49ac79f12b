package nutriplan

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/saadjs/nutriplan/internal/watch"
)

var watchFor time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show today's view and redraw it whenever the food log changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(s *session) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if watchFor > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, watchFor)
				defer cancel()
			}

			w, err := watch.New([]string{s.watchFile}, watch.WithLogger(logger))
			if err != nil {
				return err
			}
			defer announceChanges(cmd.OutOrStdout(), s.store, false)()
			printer(cmd).Today(buildToday(s.store))

			return w.Run(ctx, func() {
				if err := s.store.Reload(); err != nil {
					logger.Warn("reload food log", zap.Error(err))
					fmt.Fprintln(cmd.ErrOrStderr(), "reload failed:", err)
				}
			})
		})
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchFor, "for", 0, "Stop after this long (default: until interrupted)")
}
