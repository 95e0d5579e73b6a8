package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/valter-silva-au/swarm/pkg/models"
)

func TestInit_CreatesWorkspace(t *testing.T) {
	base := t.TempDir()
	pi := NewProjectInitializer()

	result, err := pi.Init(InitConfig{BasePath: base})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	for _, f := range []string{ConfigFileName, "data/tasks.csv", "data/cards.csv"} {
		info, err := os.Stat(filepath.Join(base, f))
		if err != nil {
			t.Errorf("file %s not created: %v", f, err)
			continue
		}
		if info.IsDir() {
			t.Errorf("%s is a directory, expected file", f)
		}
	}

	// base already exists, so Created holds the config, data dir and both tables.
	if len(result.Created) != 4 {
		t.Errorf("expected 4 created entries, got %v", result.Created)
	}
	if len(result.Skipped) != 0 {
		t.Errorf("expected nothing skipped, got %v", result.Skipped)
	}
}

func TestInit_WritesHeaders(t *testing.T) {
	base := t.TempDir()
	if _, err := NewProjectInitializer().Init(InitConfig{BasePath: base}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	tests := []struct {
		file    string
		columns []string
	}{
		{"tasks.csv", models.TaskColumns},
		{"cards.csv", models.CardColumns},
	}
	for _, tt := range tests {
		data, err := os.ReadFile(filepath.Join(base, "data", tt.file))
		if err != nil {
			t.Fatalf("reading %s: %v", tt.file, err)
		}
		want := strings.Join(tt.columns, ",") + "\n"
		if string(data) != want {
			t.Errorf("%s = %q, want %q", tt.file, data, want)
		}
	}
}

func TestInit_ConfigLoadsBack(t *testing.T) {
	base := t.TempDir()
	if _, err := NewProjectInitializer().Init(InitConfig{
		BasePath:   base,
		DataDir:    "tables",
		ActionsDir: "decisions",
	}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	cm := NewConfigurationManager(base, models.EnvConfig{})
	cfg, err := cm.LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig: %v", err)
	}
	if err := cm.ValidateConfig(cfg); err != nil {
		t.Fatalf("ValidateConfig: %v", err)
	}
	if cfg.DataDir != filepath.Join(base, "tables") {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.ActionsDir != filepath.Join(base, "decisions") {
		t.Errorf("ActionsDir = %q", cfg.ActionsDir)
	}
	if cfg.InboxLimit != DefaultInboxLimit || cfg.DefaultMinScore != DefaultMinScore {
		t.Errorf("defaults not written: %+v", cfg)
	}
	if _, err := os.Stat(filepath.Join(base, "tables", "cards.csv")); err != nil {
		t.Errorf("cards.csv not in custom data dir: %v", err)
	}
}

func TestInit_SkipsExistingFiles(t *testing.T) {
	base := t.TempDir()
	dataDir := filepath.Join(base, "data")
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		t.Fatal(err)
	}
	custom := "id,product\nT1,Alpha\n"
	if err := os.WriteFile(filepath.Join(dataDir, "tasks.csv"), []byte(custom), 0o600); err != nil {
		t.Fatal(err)
	}

	result, err := NewProjectInitializer().Init(InitConfig{BasePath: base})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dataDir, "tasks.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != custom {
		t.Errorf("tasks.csv was overwritten: %q", data)
	}

	var skippedTasks, skippedDir bool
	for _, p := range result.Skipped {
		switch p {
		case filepath.Join(dataDir, "tasks.csv"):
			skippedTasks = true
		case dataDir:
			skippedDir = true
		}
	}
	if !skippedTasks || !skippedDir {
		t.Errorf("expected data dir and tasks.csv in Skipped, got %v", result.Skipped)
	}
}

func TestInit_Idempotent(t *testing.T) {
	base := t.TempDir()
	pi := NewProjectInitializer()

	if _, err := pi.Init(InitConfig{BasePath: base}); err != nil {
		t.Fatalf("first Init failed: %v", err)
	}
	second, err := pi.Init(InitConfig{BasePath: base})
	if err != nil {
		t.Fatalf("second Init failed: %v", err)
	}
	if len(second.Created) != 0 {
		t.Errorf("second run should create nothing, got %v", second.Created)
	}
	if len(second.Skipped) != 4 {
		t.Errorf("expected 4 skipped entries, got %v", second.Skipped)
	}
}

func TestInit_CreatesMissingBase(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "workspace")

	result, err := NewProjectInitializer().Init(InitConfig{BasePath: base})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if len(result.Created) == 0 || result.Created[0] != base {
		t.Errorf("expected base path first in Created, got %v", result.Created)
	}
}

func TestInit_EmptyBasePath(t *testing.T) {
	if _, err := NewProjectInitializer().Init(InitConfig{}); err == nil {
		t.Error("expected error for empty base path")
	}
}
