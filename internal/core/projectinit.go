package core

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/valter-silva-au/swarm/pkg/models"
	"gopkg.in/yaml.v3"
)

// InitConfig holds the parameters for initializing a swarm workspace.
type InitConfig struct {
	BasePath string
	// DataDir is written to .swarmconfig. Relative paths resolve against
	// BasePath. Defaults to "data".
	DataDir string
	// ActionsDir is written to .swarmconfig when set.
	ActionsDir string
}

// InitResult holds a summary of what was created vs. skipped.
type InitResult struct {
	Created []string
	Skipped []string
}

// ProjectInitializer lays out a swarm workspace: the config file and a data
// directory holding header-only tasks.csv and cards.csv.
type ProjectInitializer interface {
	Init(config InitConfig) (*InitResult, error)
}

type projectInitializer struct{}

// NewProjectInitializer creates a new ProjectInitializer.
func NewProjectInitializer() ProjectInitializer {
	return &projectInitializer{}
}

// workspaceConfig is the subset of .swarmconfig written by init.
type workspaceConfig struct {
	Data struct {
		Dir string `yaml:"dir"`
	} `yaml:"data"`
	Actions struct {
		Dir         string `yaml:"dir,omitempty"`
		FallbackDir string `yaml:"fallback_dir"`
	} `yaml:"actions"`
	Inbox struct {
		Limit int `yaml:"limit"`
	} `yaml:"inbox"`
	Filters struct {
		MinScore int `yaml:"min_score"`
	} `yaml:"filters"`
	Overview struct {
		TopCapabilities int `yaml:"top_capabilities"`
	} `yaml:"overview"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
}

// Init creates the workspace. Existing files and directories are skipped
// and never overwritten.
func (pi *projectInitializer) Init(config InitConfig) (*InitResult, error) {
	if config.BasePath == "" {
		return nil, fmt.Errorf("initializing workspace: base path is required")
	}
	if config.DataDir == "" {
		config.DataDir = "data"
	}
	result := &InitResult{}

	created, err := ensureDir(config.BasePath)
	if err != nil {
		return nil, fmt.Errorf("initializing workspace: creating %s: %w", config.BasePath, err)
	}
	if created {
		result.Created = append(result.Created, config.BasePath)
	}

	cfgPath := filepath.Join(config.BasePath, ConfigFileName)
	if err := writeFileIfNotExists(cfgPath, func() ([]byte, error) {
		return renderWorkspaceConfig(config)
	}, result); err != nil {
		return nil, err
	}

	dataDir := config.DataDir
	if !filepath.IsAbs(dataDir) {
		dataDir = filepath.Join(config.BasePath, dataDir)
	}
	created, err = ensureDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("initializing workspace: creating %s: %w", dataDir, err)
	}
	if created {
		result.Created = append(result.Created, dataDir)
	} else {
		result.Skipped = append(result.Skipped, dataDir)
	}

	tables := []struct {
		name   string
		header []string
	}{
		{"tasks.csv", models.TaskColumns},
		{"cards.csv", models.CardColumns},
	}
	for _, tbl := range tables {
		header := tbl.header
		if err := writeFileIfNotExists(filepath.Join(dataDir, tbl.name), func() ([]byte, error) {
			return csvHeader(header)
		}, result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func renderWorkspaceConfig(config InitConfig) ([]byte, error) {
	defaults := defaultGlobalConfig()
	var wc workspaceConfig
	wc.Data.Dir = config.DataDir
	wc.Actions.Dir = config.ActionsDir
	wc.Actions.FallbackDir = defaults.FallbackActionsDir
	wc.Inbox.Limit = defaults.InboxLimit
	wc.Filters.MinScore = defaults.DefaultMinScore
	wc.Overview.TopCapabilities = defaults.TopCapabilities
	wc.Server.Addr = defaults.ServerAddr

	var buf bytes.Buffer
	buf.WriteString("# swarm workspace configuration\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&wc); err != nil {
		return nil, fmt.Errorf("encoding %s: %w", ConfigFileName, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding %s: %w", ConfigFileName, err)
	}
	return buf.Bytes(), nil
}

func csvHeader(columns []string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(columns); err != nil {
		return nil, err
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// ensureDir creates a directory if it does not exist. Returns true if created.
func ensureDir(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(path, 0o750); err != nil {
		return false, err
	}
	return true, nil
}

// writeFileIfNotExists writes content from contentFn if the file does not exist.
// It records created/skipped in the result.
func writeFileIfNotExists(path string, contentFn func() ([]byte, error), result *InitResult) error {
	if _, err := os.Stat(path); err == nil {
		result.Skipped = append(result.Skipped, path)
		return nil
	}
	content, err := contentFn()
	if err != nil {
		return fmt.Errorf("initializing workspace: generating content for %s: %w", path, err)
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return fmt.Errorf("initializing workspace: writing %s: %w", path, err)
	}
	result.Created = append(result.Created, path)
	return nil
}
