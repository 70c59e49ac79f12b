package service

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/saadjs/nutriplan/internal/foodlog"
	"github.com/saadjs/nutriplan/internal/model"
)

// LogStore is the part of the food log that export, import and doctor use.
type LogStore interface {
	Entries() []model.LogEntry
	Replace(entries []model.LogEntry) error
}

type ImportMode string

const (
	ImportModeMerge   ImportMode = "merge"
	ImportModeReplace ImportMode = "replace"
)

type ImportOptions struct {
	Mode   ImportMode
	DryRun bool
}

type ImportReport struct {
	Inserted   int  `json:"inserted"`
	Skipped    int  `json:"skipped"`
	Removed    int  `json:"removed"`
	// Unreadable counts array elements that could not be read as entries.
	Unreadable int  `json:"unreadable,omitempty"`
	DryRun     bool `json:"dry_run,omitempty"`
}

var csvHeader = []string{"id", "type", "name", "brand", "quantity", "calories", "protein", "carbs", "fat", "fiber", "sugar", "date"}

// ExportJSON writes the log in its persisted layout, indented.
func ExportJSON(store LogStore, w io.Writer) error {
	entries := store.Entries()
	if entries == nil {
		entries = []model.LogEntry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("export json: %w", err)
	}
	return nil
}

func ExportCSV(store LogStore, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range store.Entries() {
		n := e.Nutrition
		row := []string{
			e.ID,
			string(e.Kind),
			e.Name,
			e.Brand,
			e.Quantity,
			formatAmount(n.Calories),
			formatAmount(n.Protein),
			formatAmount(n.Carbs),
			formatAmount(n.Fat),
			formatAmount(n.Fiber),
			formatAmount(n.Sugar),
			e.Timestamp.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", e.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// ImportJSON reads a JSON array of entries, including a raw dump of the
// browser client's storage. Merge keeps the current log and skips entries
// whose id is already present; replace swaps the whole log. Unlike loading
// the persisted log, malformed input is an error.
func ImportJSON(store LogStore, r io.Reader, opts ImportOptions) (ImportReport, error) {
	mode, err := normalizeImportMode(opts.Mode)
	if err != nil {
		return ImportReport{}, err
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return ImportReport{}, fmt.Errorf("read import: %w", err)
	}
	if strings.TrimSpace(string(raw)) == "" {
		return ImportReport{}, fmt.Errorf("import is empty")
	}
	incoming, unreadable, err := foodlog.Decode(raw)
	if err != nil {
		return ImportReport{}, err
	}

	report := ImportReport{Unreadable: unreadable, DryRun: opts.DryRun}
	current := store.Entries()
	seen := map[string]bool{}
	next := make([]model.LogEntry, 0, len(current)+len(incoming))
	if mode == ImportModeMerge {
		for _, e := range current {
			seen[e.ID] = true
		}
		next = append(next, current...)
	} else {
		report.Removed = len(current)
	}
	for _, e := range incoming {
		id := strings.TrimSpace(e.ID)
		if id != "" && seen[id] {
			report.Skipped++
			continue
		}
		if id != "" {
			seen[id] = true
		}
		next = append(next, e)
		report.Inserted++
	}

	if opts.DryRun {
		return report, nil
	}
	if err := store.Replace(next); err != nil {
		return ImportReport{}, fmt.Errorf("import entries: %w", err)
	}
	return report, nil
}

func normalizeImportMode(mode ImportMode) (ImportMode, error) {
	switch ImportMode(normalizeName(string(mode))) {
	case "", ImportModeMerge:
		return ImportModeMerge, nil
	case ImportModeReplace:
		return ImportModeReplace, nil
	default:
		return "", fmt.Errorf("invalid import mode %q (expected merge or replace)", mode)
	}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
