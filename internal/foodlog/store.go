// Package foodlog owns the ordered list of logged meals and products and
// keeps it persisted.
//
// The store is hydrated once with Load. Every mutation (Append, RemoveByID,
// RemoveByDay, Replace) rewrites the whole log to durable storage before it
// returns and then notifies subscribers. Readers get copies; entries are
// never changed in place.
package foodlog

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/saadjs/nutriplan/internal/day"
	"github.com/saadjs/nutriplan/internal/kv"
	"github.com/saadjs/nutriplan/internal/model"
	"github.com/saadjs/nutriplan/internal/nutrition"
)

// StorageKey is the namespace the log is persisted under.
const StorageKey = "nutriplan-foodlog"

var ErrDuplicateID = errors.New("duplicate entry id")

type Op string

const (
	OpAppend   Op = "append"
	OpRemove   Op = "remove"
	OpClearDay Op = "clear_day"
	OpReload   Op = "reload"
	OpReplace  Op = "replace"
)

// Change describes a completed mutation. Entries holds the affected entries:
// the appended one, the removed ones, or the full log after a reload or
// replace.
type Change struct {
	Op      Op
	Entries []model.LogEntry
}

type Store struct {
	kv     kv.Store
	logger *zap.Logger
	now    func() time.Time
	loc    *time.Location
	newID  func() string

	mu      sync.RWMutex
	entries []model.LogEntry

	subMu  sync.Mutex
	subs   map[int]func(Change)
	nextID int
}

type Option func(*Store)

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

func New(store kv.Store, opts ...Option) *Store {
	s := &Store{
		kv:     store,
		logger: zap.NewNop(),
		now:    time.Now,
		loc:    time.Local,
		newID:  newEntryID,
		subs:   map[int]func(Change){},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newEntryID returns a UUIDv7: time ordered with 74 random bits, so ids from
// the same clock tick still differ.
func newEntryID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Open builds a store and hydrates it.
func Open(store kv.Store, opts ...Option) (*Store, error) {
	s := New(store, opts...)
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load replaces the in-memory log with the persisted one. A missing key
// yields an empty log. A value that does not decode is discarded and the
// log starts empty; only a failing storage read is returned as an error.
func (s *Store) Load() error {
	entries, err := s.read()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
	return nil
}

// Reload re-reads storage, for when another process changed the log.
func (s *Store) Reload() error {
	if err := s.Load(); err != nil {
		return err
	}
	s.notify(Change{Op: OpReload, Entries: s.Entries()})
	return nil
}

func (s *Store) read() ([]model.LogEntry, error) {
	raw, found, err := s.kv.Load(StorageKey)
	if err != nil {
		return nil, fmt.Errorf("load food log: %w", err)
	}
	if !found || len(strings.TrimSpace(string(raw))) == 0 {
		return []model.LogEntry{}, nil
	}
	decoded, skipped, err := Decode(raw)
	if err != nil {
		s.logger.Warn("discarding malformed food log",
			zap.String("key", StorageKey),
			zap.Int("bytes", len(raw)),
			zap.Error(err))
		return []model.LogEntry{}, nil
	}
	if skipped > 0 {
		s.logger.Warn("skipping unreadable food log entries",
			zap.String("key", StorageKey),
			zap.Int("skipped", skipped))
	}
	seen := make(map[string]bool, len(decoded))
	var dups []string
	for i := range decoded {
		if strings.TrimSpace(decoded[i].ID) == "" {
			decoded[i].ID = s.newID()
		}
		decoded[i] = Normalize(decoded[i])
		if seen[decoded[i].ID] {
			dups = append(dups, decoded[i].ID)
		}
		seen[decoded[i].ID] = true
	}
	// Legacy millisecond ids can collide. RemoveByID only drops the first
	// match, so point the user at doctor --fix.
	if len(dups) > 0 {
		s.logger.Warn("food log has duplicate entry ids, run doctor --fix",
			zap.String("key", StorageKey),
			zap.Strings("ids", dups))
	}
	return decoded, nil
}

// Append adds entry at the end of the log and persists. A missing id or
// timestamp is assigned here and invalid nutrition values become 0. On a
// failed persist the log is left as it was.
func (s *Store) Append(entry model.LogEntry) (model.LogEntry, error) {
	if strings.TrimSpace(entry.ID) == "" {
		entry.ID = s.newID()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now()
	}
	entry = Normalize(entry)
	entry.Nutrition = nutrition.Sanitize(entry.Nutrition)

	s.mu.Lock()
	if s.indexOfLocked(entry.ID) >= 0 {
		s.mu.Unlock()
		return model.LogEntry{}, fmt.Errorf("append entry %q: %w", entry.ID, ErrDuplicateID)
	}
	prev := s.entries
	next := make([]model.LogEntry, len(prev), len(prev)+1)
	copy(next, prev)
	next = append(next, entry)
	if err := s.persistLocked(next); err != nil {
		s.mu.Unlock()
		return model.LogEntry{}, err
	}
	s.entries = next
	s.mu.Unlock()

	s.logger.Debug("logged entry",
		zap.String("id", entry.ID),
		zap.String("type", string(entry.Kind)),
		zap.String("name", entry.Name))
	s.notify(Change{Op: OpAppend, Entries: []model.LogEntry{entry}})
	return entry, nil
}

// RemoveByID drops the first entry with id. An unknown id is not an error
// and reports false.
func (s *Store) RemoveByID(id string) (bool, error) {
	s.mu.Lock()
	idx := s.indexOfLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return false, nil
	}
	removed := s.entries[idx]
	next := make([]model.LogEntry, 0, len(s.entries)-1)
	next = append(next, s.entries[:idx]...)
	next = append(next, s.entries[idx+1:]...)
	if err := s.persistLocked(next); err != nil {
		s.mu.Unlock()
		return false, err
	}
	s.entries = next
	s.mu.Unlock()

	s.notify(Change{Op: OpRemove, Entries: []model.LogEntry{removed}})
	return true, nil
}

// RemoveByDay drops every entry logged on local day d and returns how many
// were removed. Clearing an empty day does not touch storage.
func (s *Store) RemoveByDay(d day.Day) (int, error) {
	s.mu.Lock()
	next := make([]model.LogEntry, 0, len(s.entries))
	var removed []model.LogEntry
	for _, e := range s.entries {
		if d.Contains(e.Timestamp, s.loc) {
			removed = append(removed, e)
			continue
		}
		next = append(next, e)
	}
	if len(removed) == 0 {
		s.mu.Unlock()
		return 0, nil
	}
	if err := s.persistLocked(next); err != nil {
		s.mu.Unlock()
		return 0, err
	}
	s.entries = next
	s.mu.Unlock()

	s.notify(Change{Op: OpClearDay, Entries: removed})
	return len(removed), nil
}

// Replace swaps the whole log for entries, assigning ids and defaults as
// Append would.
func (s *Store) Replace(entries []model.LogEntry) error {
	next := make([]model.LogEntry, 0, len(entries))
	for _, e := range entries {
		if strings.TrimSpace(e.ID) == "" {
			e.ID = s.newID()
		}
		if e.Timestamp.IsZero() {
			e.Timestamp = s.now()
		}
		e = Normalize(e)
		e.Nutrition = nutrition.Sanitize(e.Nutrition)
		next = append(next, e)
	}

	s.mu.Lock()
	if err := s.persistLocked(next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.entries = next
	s.mu.Unlock()

	s.notify(Change{Op: OpReplace, Entries: slices.Clone(next)})
	return nil
}

// EntriesForDay returns the entries logged on local day d, in log order.
func (s *Store) EntriesForDay(d day.Day) []model.LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.LogEntry, 0)
	for _, e := range s.entries {
		if d.Contains(e.Timestamp, s.loc) {
			out = append(out, e)
		}
	}
	return out
}

func (s *Store) Entries() []model.LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.entries)
}

func (s *Store) Get(id string) (model.LogEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOfLocked(id)
	if idx < 0 {
		return model.LogEntry{}, false
	}
	return s.entries[idx], true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) Location() *time.Location { return s.loc }

func (s *Store) Now() time.Time { return s.now().In(s.loc) }

// Today is the local day containing the store clock's current instant.
func (s *Store) Today() day.Day { return day.Of(s.now(), s.loc) }

// Subscribe registers fn for change notifications. Callbacks run on the
// mutating goroutine after the store lock is released, so they may read the
// store.
func (s *Store) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify(c Change) {
	s.subMu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(Change), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(c)
	}
}

func (s *Store) persistLocked(entries []model.LogEntry) error {
	b, err := Encode(entries)
	if err != nil {
		return err
	}
	if err := s.kv.Save(StorageKey, b); err != nil {
		return fmt.Errorf("persist food log: %w", err)
	}
	return nil
}

func (s *Store) indexOfLocked(id string) int {
	for i := range s.entries {
		if s.entries[i].ID == id {
			return i
		}
	}
	return -1
}
