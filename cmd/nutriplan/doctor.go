package nutriplan

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/saadjs/nutriplan/internal/render"
	"github.com/saadjs/nutriplan/internal/service"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run food log integrity checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(s *session) error {
			now := time.Now()
			report, err := service.RunDoctor(s.store, now, doctorFix)
			if err != nil {
				return err
			}
			p := printer(cmd)
			p.Doctor(report)
			if doctorFix {
				p.Notify(render.LevelInfo, "fixed %d entries, dropped %d", report.FixedEntries, report.DroppedEntries)
				// Re-check so the exit status reflects the final state.
				report, err = service.RunDoctor(s.store, now, false)
				if err != nil {
					return err
				}
			}
			// Future timestamps are reported but not treated as corruption.
			if report.DuplicateIDs > 0 || report.ZeroTimestamps > 0 || report.InvalidNutrition > 0 {
				return fmt.Errorf("doctor found integrity issues")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Drop duplicate and undated entries, zero invalid nutrition")
}
