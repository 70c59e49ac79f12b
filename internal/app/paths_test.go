package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultPathsShareAppDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("AppData", t.TempDir())

	dbPath, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("db path: %v", err)
	}
	cfgPath, err := DefaultConfigPath()
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	dataDir, err := DefaultDataDir()
	if err != nil {
		t.Fatalf("data dir: %v", err)
	}
	if filepath.Base(filepath.Dir(dbPath)) != "nutriplan" {
		t.Fatalf("unexpected db path %s", dbPath)
	}
	if filepath.Dir(cfgPath) != filepath.Dir(dbPath) || filepath.Dir(dataDir) != filepath.Dir(dbPath) {
		t.Fatalf("paths should share one app dir: %s %s %s", dbPath, cfgPath, dataDir)
	}
}

func TestEnsureDBDirCreatesParents(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "a", "b", "nutriplan.db")
	if err := EnsureDBDir(path); err != nil {
		t.Fatalf("ensure db dir: %v", err)
	}
	if st, err := os.Stat(filepath.Dir(path)); err != nil || !st.IsDir() {
		t.Fatalf("expected directory to exist: %v", err)
	}
}
