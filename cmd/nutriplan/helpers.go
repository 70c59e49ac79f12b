package nutriplan

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/saadjs/nutriplan/internal/app"
	"github.com/saadjs/nutriplan/internal/config"
	"github.com/saadjs/nutriplan/internal/db"
	"github.com/saadjs/nutriplan/internal/day"
	"github.com/saadjs/nutriplan/internal/foodlog"
	"github.com/saadjs/nutriplan/internal/kv"
	"github.com/saadjs/nutriplan/internal/provider/mealdb"
	"github.com/saadjs/nutriplan/internal/provider/openfoodfacts"
	"github.com/saadjs/nutriplan/internal/render"
)

// session is what a command gets once storage is open. sqldb is nil with
// file storage; the product cache is then disabled.
type session struct {
	store *foodlog.Store
	sqldb *sql.DB
	// watchFile is the file whose changes mean the log changed.
	watchFile string
}

func withStore(run func(*session) error) error {
	s := &session{}
	var backend kv.Store
	switch cfg.Storage {
	case config.StorageFile:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
		f := kv.NewFile(cfg.DataDir)
		backend = f
		s.watchFile = f.Path(foodlog.StorageKey)
	default:
		if err := app.EnsureDBDir(cfg.DBPath); err != nil {
			return err
		}
		sqldb, err := db.OpenMigrated(cfg.DBPath)
		if err != nil {
			return err
		}
		defer sqldb.Close()
		s.sqldb = sqldb
		backend = kv.NewSQL(sqldb)
		s.watchFile = cfg.DBPath
	}
	store, err := foodlog.Open(backend, foodlog.WithLogger(logger))
	if err != nil {
		return err
	}
	s.store = store
	return run(s)
}

func printer(cmd *cobra.Command) *render.Printer {
	return render.New(cmd.OutOrStdout())
}

func mealClient() *mealdb.Client {
	return mealdb.NewClient(cfg.MealDBBaseURL, cfg.HTTPTimeout)
}

func productClient() *openfoodfacts.Client {
	return openfoodfacts.NewClient(cfg.OpenFoodFactsBaseURL, cfg.HTTPTimeout)
}

func requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), cfg.HTTPTimeout)
}

// logClock is a --date/--time pair. It is resolved in the store's location
// once storage is open, so logging and day matching share one location.
type logClock struct {
	day          day.Day
	hour, minute int
}

// parseLogClock reads --date YYYY-MM-DD and --time HH:MM. --date alone means
// noon; neither flag gives the zero clock so the store stamps the entry.
func parseLogClock(date, timeStr string) (logClock, error) {
	date = strings.TrimSpace(date)
	timeStr = strings.TrimSpace(timeStr)
	if date == "" && timeStr == "" {
		return logClock{}, nil
	}
	if date == "" {
		return logClock{}, fmt.Errorf("--date is required when --time is set")
	}
	d, err := day.Parse(date)
	if err != nil {
		return logClock{}, fmt.Errorf("invalid --date %q (expected YYYY-MM-DD)", date)
	}
	c := logClock{day: d, hour: 12}
	if timeStr != "" {
		t, err := time.Parse("15:04", timeStr)
		if err != nil {
			return logClock{}, fmt.Errorf("invalid --time %q (expected HH:MM)", timeStr)
		}
		c.hour, c.minute = t.Hour(), t.Minute()
	}
	return c, nil
}

// in returns the timestamp in loc, or the zero time when no flag was set.
func (c logClock) in(loc *time.Location) time.Time {
	if c.day.IsZero() {
		return time.Time{}
	}
	return c.day.At(c.hour, c.minute, loc)
}

// parseDayOrToday parses --date, defaulting to the store's current day.
func parseDayOrToday(store *foodlog.Store, date string) (day.Day, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return store.Today(), nil
	}
	d, err := day.Parse(date)
	if err != nil {
		return day.Day{}, fmt.Errorf("invalid --date %q (expected YYYY-MM-DD)", date)
	}
	return d, nil
}

// announceChanges prints a notification for every store mutation and,
// unless quiet, redraws today's view after it.
func announceChanges(w io.Writer, store *foodlog.Store, quiet bool) (unsubscribe func()) {
	p := render.New(w)
	return store.Subscribe(func(c foodlog.Change) {
		switch c.Op {
		case foodlog.OpAppend:
			p.Notify(render.LevelSuccess, "logged %s (%s)", c.Entries[0].Name, c.Entries[0].ID)
		case foodlog.OpRemove:
			p.Notify(render.LevelSuccess, "removed %s (%s)", c.Entries[0].Name, c.Entries[0].ID)
		case foodlog.OpClearDay:
			p.Notify(render.LevelSuccess, "cleared %d entries", len(c.Entries))
		case foodlog.OpReload:
			p.Notify(render.LevelInfo, "food log changed on disk")
		}
		if !quiet {
			fmt.Fprintln(w)
			p.Today(buildToday(store))
		}
	})
}
