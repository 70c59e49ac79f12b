package nutriplan

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/nutriplan/internal/foodlog"
	"github.com/saadjs/nutriplan/internal/service"
)

var (
	todayDate string
	todayJSON bool
	weekJSON  bool
)

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's entries, totals, and progress against daily targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(s *session) error {
			d, err := parseDayOrToday(s.store, todayDate)
			if err != nil {
				return err
			}
			view := service.BuildDay(s.store, d)
			if todayJSON {
				return writeJSON(cmd, view)
			}
			printer(cmd).Today(view)
			return nil
		})
	},
}

var weekCmd = &cobra.Command{
	Use:   "week",
	Short: "Show nutrition totals for the last seven days",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(s *session) error {
			trend := service.BuildWeek(s.store, s.store.Now())
			if weekJSON {
				return writeJSON(cmd, struct {
					service.WeekTrend
					Series service.ChartSeries `json:"series"`
				}{trend, trend.Series()})
			}
			printer(cmd).Week(trend)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(todayCmd, weekCmd)
	todayCmd.Flags().StringVar(&todayDate, "date", "", "Date YYYY-MM-DD (default today)")
	todayCmd.Flags().BoolVar(&todayJSON, "json", false, "Output as JSON")
	weekCmd.Flags().BoolVar(&weekJSON, "json", false, "Output as JSON")
}

func buildToday(store *foodlog.Store) service.TodayView {
	return service.BuildToday(store, store.Now())
}

func writeJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}
