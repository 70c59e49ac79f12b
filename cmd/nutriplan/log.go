package nutriplan

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/saadjs/nutriplan/internal/model"
	"github.com/saadjs/nutriplan/internal/render"
	"github.com/saadjs/nutriplan/internal/service"
)

var (
	logDate     string
	logTime     string
	logQuiet    bool
	logListDate string
	logListAll  bool
	logClearDay string
	mealValues  model.Nutrition
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Log meals and products, list and remove entries",
}

var logMealCmd = &cobra.Command{
	Use:   "meal <meal-id>",
	Short: "Log a TheMealDB recipe with the nutrition you supply",
	Long: `Log a recipe. TheMealDB has no nutrition data, so pass the values
per serving with --calories, --protein, --carbs, --fat, --fiber and --sugar.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		clock, err := parseLogClock(logDate, logTime)
		if err != nil {
			return err
		}
		ctx, cancel := requestContext(cmd)
		defer cancel()
		meal, err := mealClient().LookupMeal(ctx, args[0])
		if err != nil {
			return err
		}
		entry, err := service.NewMealEntry(ctx, meal, service.FixedNutrition(mealValues))
		if err != nil {
			return err
		}
		return appendEntry(cmd, entry, clock)
	},
}

var logProductCmd = &cobra.Command{
	Use:   "product <barcode>",
	Short: "Log a packaged food by barcode (values per 100g)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		clock, err := parseLogClock(logDate, logTime)
		if err != nil {
			return err
		}
		return withStore(func(s *session) error {
			res, err := lookupProduct(cmd, s, args[0], false)
			if err != nil {
				return err
			}
			return appendToSession(cmd, s, service.ProductEntry(res.Product), clock)
		})
	},
}

var logListCmd = &cobra.Command{
	Use:   "list",
	Short: "List logged entries with their ids",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(s *session) error {
			entries := s.store.Entries()
			if !logListAll {
				d, err := parseDayOrToday(s.store, logListDate)
				if err != nil {
					return err
				}
				entries = s.store.EntriesForDay(d)
			}
			printer(cmd).Entries(entries)
			return nil
		})
	},
}

var logRemoveCmd = &cobra.Command{
	Use:   "remove <entry-id>",
	Short: "Remove one entry",
	Long: `Remove the entry with the given id. Logs imported from older clients can
hold the same id twice; only the first is removed. Run "nutriplan doctor --fix"
to drop the duplicates.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(s *session) error {
			defer announceChanges(cmd.OutOrStdout(), s.store, logQuiet)()
			removed, err := s.store.RemoveByID(strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			if !removed {
				printer(cmd).Notify(render.LevelInfo, "no entry with id %s", args[0])
			}
			return nil
		})
	},
}

var logClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every entry of a day (default today)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(s *session) error {
			d, err := parseDayOrToday(s.store, logClearDay)
			if err != nil {
				return err
			}
			defer announceChanges(cmd.OutOrStdout(), s.store, logQuiet)()
			n, err := s.store.RemoveByDay(d)
			if err != nil {
				return err
			}
			if n == 0 {
				printer(cmd).Notify(render.LevelInfo, "nothing logged on %s", d)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(logCmd)
	logCmd.AddCommand(logMealCmd, logProductCmd, logListCmd, logRemoveCmd, logClearCmd)

	for _, c := range []*cobra.Command{logMealCmd, logProductCmd} {
		c.Flags().StringVar(&logDate, "date", "", "Date YYYY-MM-DD (default now)")
		c.Flags().StringVar(&logTime, "time", "", "Time HH:MM (requires --date)")
	}
	logCmd.PersistentFlags().BoolVarP(&logQuiet, "quiet", "q", false, "Do not print today's summary after a change")
	logMealCmd.Flags().Float64Var(&mealValues.Calories, "calories", 0, "Calories (kcal)")
	logMealCmd.Flags().Float64Var(&mealValues.Protein, "protein", 0, "Protein (g)")
	logMealCmd.Flags().Float64Var(&mealValues.Carbs, "carbs", 0, "Carbs (g)")
	logMealCmd.Flags().Float64Var(&mealValues.Fat, "fat", 0, "Fat (g)")
	logMealCmd.Flags().Float64Var(&mealValues.Fiber, "fiber", 0, "Fiber (g)")
	logMealCmd.Flags().Float64Var(&mealValues.Sugar, "sugar", 0, "Sugar (g)")
	logListCmd.Flags().StringVar(&logListDate, "date", "", "Date YYYY-MM-DD (default today)")
	logListCmd.Flags().BoolVar(&logListAll, "all", false, "List every entry")
	logClearCmd.Flags().StringVar(&logClearDay, "date", "", "Date YYYY-MM-DD (default today)")
}

// appendEntry opens storage only after the lookup succeeded, so a failed
// lookup never touches the log.
func appendEntry(cmd *cobra.Command, entry model.LogEntry, clock logClock) error {
	return withStore(func(s *session) error {
		return appendToSession(cmd, s, entry, clock)
	})
}

func appendToSession(cmd *cobra.Command, s *session, entry model.LogEntry, clock logClock) error {
	entry.Timestamp = clock.in(s.store.Location())
	defer announceChanges(cmd.OutOrStdout(), s.store, logQuiet)()
	_, err := s.store.Append(entry)
	return err
}
