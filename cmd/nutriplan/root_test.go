package nutriplan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/saadjs/nutriplan/internal/config"
	"github.com/saadjs/nutriplan/internal/foodlog"
	"github.com/saadjs/nutriplan/internal/model"
	"github.com/saadjs/nutriplan/internal/service"
)

// testEnv points the CLI at a temp config whose providers are httptest
// servers.
type testEnv struct {
	dir          string
	configPath   string
	productCalls atomic.Int32
}

func newTestEnv(t *testing.T, storage string) *testEnv {
	t.Helper()
	env := &testEnv{dir: t.TempDir()}

	meals := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/lookup.php" && r.URL.Query().Get("i") == "52771":
			_, _ = w.Write([]byte(`{"meals":[{"idMeal":"52771","strMeal":"Spicy Arrabiata Penne","strCategory":"Vegetarian","strArea":"Italian","strMealThumb":"https://img.example/penne.jpg","strIngredient1":"penne rigate","strMeasure1":"1 pound"}]}`))
		case r.URL.Path == "/lookup.php":
			_, _ = w.Write([]byte(`{"meals":null}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(meals.Close)

	products := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.productCalls.Add(1)
		if r.URL.Path != "/api/v0/product/3017620422003.json" {
			_, _ = w.Write([]byte(`{"status":0}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":1,"product":{"code":"3017620422003","product_name":"Nutella","brands":"Ferrero","quantity":"400 g","nutrition_grades":"e","nutriments":{"energy-kcal_100g":539,"proteins_100g":6.3,"carbohydrates_100g":57.5,"fat_100g":30.9,"sugars_100g":56.3}}}`))
	}))
	t.Cleanup(products.Close)

	env.configPath = filepath.Join(env.dir, "config.yaml")
	body := fmt.Sprintf(`storage: %s
db_path: %s
data_dir: %s
log_level: error
http_timeout: 5s
mealdb_base_url: %s
openfoodfacts_base_url: %s
`, storage, filepath.Join(env.dir, "nutriplan.db"), filepath.Join(env.dir, "data"), meals.URL, products.URL)
	if err := os.WriteFile(env.configPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("XDG_CONFIG_HOME", env.dir)
	t.Setenv("HOME", env.dir)
	t.Setenv(config.EnvPath, env.configPath)
	return env
}

// run executes the root command. Flag values live in package globals, so
// every flag is reset to its default first.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("nutriplan %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func exportedEntries(t *testing.T) []model.LogEntry {
	t.Helper()
	var entries []model.LogEntry
	if err := json.Unmarshal([]byte(mustRun(t, "export")), &entries); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	return entries
}

func TestRootHelp(t *testing.T) {
	out, err := run(t, "--help")
	if err != nil {
		t.Fatalf("execute root help: %v", err)
	}
	if !strings.Contains(out, "nutriplan") {
		t.Fatalf("expected help output, got %q", out)
	}
}

func TestInitCommandIdempotent(t *testing.T) {
	env := newTestEnv(t, config.StorageSQLite)
	if err := os.Remove(env.configPath); err != nil {
		t.Fatalf("remove config: %v", err)
	}
	path := filepath.Join(env.dir, "nested", "nutriplan.db")
	for i := 0; i < 2; i++ {
		out, err := run(t, "--db", path, "init")
		if err != nil {
			t.Fatalf("init run %d failed: %v", i+1, err)
		}
		wrote := strings.Contains(out, "Wrote config")
		if wrote != (i == 0) {
			t.Fatalf("run %d: unexpected config write state in %q", i+1, out)
		}
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected database file: %v", err)
	}
	if _, err := os.Stat(env.configPath); err != nil {
		t.Fatalf("expected config file: %v", err)
	}
}

func TestLogProductShowsTodayAndUsesCache(t *testing.T) {
	env := newTestEnv(t, config.StorageSQLite)

	out := mustRun(t, "log", "product", "3017620422003")
	if !strings.Contains(out, "logged Nutella") || !strings.Contains(out, "Today") {
		t.Fatalf("unexpected log output: %q", out)
	}

	var view service.TodayView
	if err := json.Unmarshal([]byte(mustRun(t, "today", "--json")), &view); err != nil {
		t.Fatalf("decode today: %v", err)
	}
	if len(view.Entries) != 1 || view.Totals.Calories != 539 {
		t.Fatalf("unexpected today view: %+v", view)
	}
	if e := view.Entries[0]; e.Kind != model.KindProduct || e.Brand != "Ferrero" || e.Quantity != "400 g" {
		t.Fatalf("unexpected entry: %+v", e)
	}

	var week struct {
		Points []service.TrendPoint `json:"points"`
		Series service.ChartSeries  `json:"series"`
	}
	if err := json.Unmarshal([]byte(mustRun(t, "week", "--json")), &week); err != nil {
		t.Fatalf("decode week: %v", err)
	}
	if len(week.Points) != 7 || len(week.Series.Calories) != 7 {
		t.Fatalf("expected 7 days, got %d points", len(week.Points))
	}
	if week.Series.Calories[6] != 539 {
		t.Fatalf("expected today's calories last, got %v", week.Series.Calories)
	}

	out = mustRun(t, "products", "barcode", "3017620422003")
	if !strings.Contains(out, "Nutella") {
		t.Fatalf("unexpected barcode output: %q", out)
	}
	if got := env.productCalls.Load(); got != 1 {
		t.Fatalf("expected cached second lookup, provider called %d times", got)
	}
	mustRun(t, "products", "barcode", "3017620422003", "--refresh")
	if got := env.productCalls.Load(); got != 2 {
		t.Fatalf("expected refresh to hit provider, called %d times", got)
	}

	out = mustRun(t, "products", "cache", "list")
	if !strings.Contains(out, "3017620422003") {
		t.Fatalf("expected cached barcode in %q", out)
	}
	mustRun(t, "products", "cache", "purge", "--all")
	if out := mustRun(t, "products", "cache", "list"); strings.Contains(out, "3017620422003") {
		t.Fatalf("expected empty cache, got %q", out)
	}
}

func TestLogMealThenRemove(t *testing.T) {
	newTestEnv(t, config.StorageSQLite)

	mustRun(t, "log", "meal", "52771", "--calories", "650", "--protein", "18", "-q")
	entries := exportedEntries(t)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Kind != model.KindMeal || e.Name != "Spicy Arrabiata Penne" || e.Nutrition.Calories != 650 || e.Nutrition.Protein != 18 {
		t.Fatalf("unexpected meal entry: %+v", e)
	}
	if e.ImageURL != "https://img.example/penne.jpg" {
		t.Fatalf("expected thumbnail as image, got %q", e.ImageURL)
	}

	if out := mustRun(t, "log", "list"); !strings.Contains(out, e.ID) {
		t.Fatalf("expected id %s in list output %q", e.ID, out)
	}
	out := mustRun(t, "log", "remove", e.ID, "-q")
	if !strings.Contains(out, "removed Spicy Arrabiata Penne") {
		t.Fatalf("unexpected remove output: %q", out)
	}
	if entries := exportedEntries(t); len(entries) != 0 {
		t.Fatalf("expected empty log, got %+v", entries)
	}
	if out := mustRun(t, "log", "remove", e.ID); !strings.Contains(out, "no entry with id") {
		t.Fatalf("expected unknown id notice, got %q", out)
	}
}

func TestLogMealRejectsNegativeNutrition(t *testing.T) {
	newTestEnv(t, config.StorageSQLite)

	if _, err := run(t, "log", "meal", "52771", "--calories", "-5"); err == nil {
		t.Fatalf("expected negative calories to fail")
	}
	if entries := exportedEntries(t); len(entries) != 0 {
		t.Fatalf("expected nothing logged, got %+v", entries)
	}
}

func TestFailedLookupLeavesLogUntouched(t *testing.T) {
	newTestEnv(t, config.StorageSQLite)

	if _, err := run(t, "log", "meal", "99999"); err == nil {
		t.Fatalf("expected unknown meal to fail")
	}
	if _, err := run(t, "log", "product", "0000000000000"); err == nil {
		t.Fatalf("expected unknown barcode to fail")
	}
	if _, err := run(t, "log", "product", "abc"); err == nil {
		t.Fatalf("expected invalid barcode to fail")
	}
	if out := mustRun(t, "log", "list", "--all"); !strings.Contains(out, "no entries") {
		t.Fatalf("expected empty log, got %q", out)
	}
}

func TestClearTodayKeepsOtherDays(t *testing.T) {
	env := newTestEnv(t, config.StorageSQLite)

	now := time.Now()
	older := now.AddDate(0, 0, -3)
	in := filepath.Join(env.dir, "import.json")
	payload := fmt.Sprintf(`[
  {"id":"a","type":"meal","name":"Porridge","nutrition":{"calories":300},"date":%q},
  {"id":"b","type":"meal","name":"Salad","nutrition":{"calories":200},"date":%q},
  {"id":1700000000000,"type":"product","name":"Yogurt","nutrition":{"calories":90},"date":%q}
]`, now.Format(time.RFC3339), now.Format(time.RFC3339), older.Format(time.RFC3339))
	if err := os.WriteFile(in, []byte(payload), 0o644); err != nil {
		t.Fatalf("write import: %v", err)
	}

	out := mustRun(t, "import", "--in", in, "--dry-run")
	if !strings.Contains(out, "dry run: 3 inserted") {
		t.Fatalf("unexpected dry run output: %q", out)
	}
	if entries := exportedEntries(t); len(entries) != 0 {
		t.Fatalf("dry run wrote %d entries", len(entries))
	}
	mustRun(t, "import", "--in", in)
	if out := mustRun(t, "import", "--in", in); !strings.Contains(out, "0 inserted, 3 skipped") {
		t.Fatalf("expected second import to skip everything, got %q", out)
	}

	out = mustRun(t, "log", "clear", "-q")
	if !strings.Contains(out, "cleared 2 entries") {
		t.Fatalf("unexpected clear output: %q", out)
	}
	entries := exportedEntries(t)
	if len(entries) != 1 || entries[0].ID != "1700000000000" {
		t.Fatalf("expected only the older entry to remain, got %+v", entries)
	}
	if out := mustRun(t, "log", "clear"); !strings.Contains(out, "nothing logged") {
		t.Fatalf("expected nothing-to-clear notice, got %q", out)
	}

	csv := mustRun(t, "export", "--format", "csv")
	if !strings.HasPrefix(csv, "id,type,name,brand,quantity,calories") || !strings.Contains(csv, "Yogurt") {
		t.Fatalf("unexpected csv export: %q", csv)
	}
	if _, err := run(t, "export", "--format", "xml"); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}

func TestFileStorageBackend(t *testing.T) {
	env := newTestEnv(t, config.StorageFile)

	mustRun(t, "log", "meal", "52771", "--calories", "400", "--date", "2026-03-10", "-q")
	path := filepath.Join(env.dir, "data", foodlog.StorageKey+".json")
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected log file: %v", err)
	}
	if !strings.Contains(string(raw), "Spicy Arrabiata Penne") {
		t.Fatalf("unexpected log file contents: %s", raw)
	}

	var view service.TodayView
	if err := json.Unmarshal([]byte(mustRun(t, "today", "--date", "2026-03-10", "--json")), &view); err != nil {
		t.Fatalf("decode today: %v", err)
	}
	if view.Date != "2026-03-10" || view.Totals.Calories != 400 {
		t.Fatalf("unexpected day view: %+v", view)
	}

	out := mustRun(t, "products", "cache", "list")
	if !strings.Contains(out, "sqlite") {
		t.Fatalf("expected cache-disabled notice, got %q", out)
	}
}

func TestMalformedLogStartsEmpty(t *testing.T) {
	env := newTestEnv(t, config.StorageFile)

	dir := filepath.Join(env.dir, "data")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, foodlog.StorageKey+".json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	out := mustRun(t, "today")
	if !strings.Contains(out, "nothing logged yet") {
		t.Fatalf("expected empty today view, got %q", out)
	}
}

func TestDoctorFindsAndFixesIssues(t *testing.T) {
	env := newTestEnv(t, config.StorageFile)

	dir := filepath.Join(env.dir, "data")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	ts := time.Now().Add(-time.Hour).Format(time.RFC3339)
	payload := fmt.Sprintf(`[
  {"id":"a","type":"meal","name":"Porridge","nutrition":{"calories":300},"date":%q},
  {"id":"a","type":"meal","name":"Porridge again","nutrition":{"calories":300},"date":%q},
  {"id":"b","type":"meal","name":"Undated","nutrition":{"calories":100},"date":"0001-01-01T00:00:00Z"}
]`, ts, ts)
	if err := os.WriteFile(filepath.Join(dir, foodlog.StorageKey+".json"), []byte(payload), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	out, err := run(t, "doctor")
	if err == nil {
		t.Fatalf("expected doctor to report issues, output %q", out)
	}
	out = mustRun(t, "doctor", "--fix")
	if !strings.Contains(out, "dropped 2") {
		t.Fatalf("unexpected fix output: %q", out)
	}
	mustRun(t, "doctor")
	if entries := exportedEntries(t); len(entries) != 1 || entries[0].Name != "Porridge" {
		t.Fatalf("unexpected entries after fix: %+v", entries)
	}
}

func TestWatchStopsAfterDuration(t *testing.T) {
	newTestEnv(t, config.StorageSQLite)

	out := mustRun(t, "watch", "--for", "200ms")
	if !strings.Contains(out, "Today") {
		t.Fatalf("expected initial today view, got %q", out)
	}
}

func TestConfigPathAndShow(t *testing.T) {
	env := newTestEnv(t, config.StorageSQLite)

	if out := mustRun(t, "config", "path"); strings.TrimSpace(out) != env.configPath {
		t.Fatalf("expected %s, got %q", env.configPath, out)
	}
	out := mustRun(t, "--storage", "FILE", "config", "show")
	if !strings.Contains(out, "storage: file") || !strings.Contains(out, "log_level: error") {
		t.Fatalf("unexpected config show output: %q", out)
	}
	if _, err := run(t, "--storage", "s3", "config", "show"); err == nil {
		t.Fatalf("expected invalid storage to fail validation")
	}
}

func TestVersionCommand(t *testing.T) {
	newTestEnv(t, config.StorageSQLite)

	out := mustRun(t, "version")
	if !strings.Contains(out, "nutriplan dev") || !strings.Contains(out, "Commit") {
		t.Fatalf("unexpected version output: %q", out)
	}
}
