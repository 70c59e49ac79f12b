package service_test

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/saadjs/nutriplan/internal/db"
	"github.com/saadjs/nutriplan/internal/foodlog"
	"github.com/saadjs/nutriplan/internal/kv"
	"github.com/saadjs/nutriplan/internal/model"
)

var testLoc = time.FixedZone("UTC+2", 2*60*60)

// Wednesday 2026-03-11 09:00 local.
var testNow = time.Date(2026, 3, 11, 9, 0, 0, 0, testLoc)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nutriplan.db")
	sqldb, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return sqldb
}

func newTestStore(t *testing.T) *foodlog.Store {
	t.Helper()
	n := 0
	store, err := foodlog.Open(kv.NewMemory(),
		foodlog.WithClock(func() time.Time { return testNow }),
		foodlog.WithLocation(testLoc),
		foodlog.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("entry-%d", n)
		}),
	)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return store
}

func logAt(t *testing.T, store *foodlog.Store, name string, at time.Time, n model.Nutrition) model.LogEntry {
	t.Helper()
	e, err := store.Append(model.LogEntry{Kind: model.KindMeal, Name: name, Timestamp: at, Nutrition: n})
	if err != nil {
		t.Fatalf("append %s: %v", name, err)
	}
	return e
}

// sliceStore is a LogStore that holds whatever it is given, including
// entries the real store would refuse.
type sliceStore struct {
	entries  []model.LogEntry
	replaced int
	err      error
}

func (s *sliceStore) Entries() []model.LogEntry {
	return append([]model.LogEntry(nil), s.entries...)
}

func (s *sliceStore) Replace(entries []model.LogEntry) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append([]model.LogEntry(nil), entries...)
	s.replaced++
	return nil
}
