// Package internal provides the App struct that wires all components of
// swarm together and initializes the CLI layer.
package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/valter-silva-au/swarm/internal/cli"
	"github.com/valter-silva-au/swarm/internal/core"
	"github.com/valter-silva-au/swarm/internal/observability"
	"github.com/valter-silva-au/swarm/internal/storage"
	"github.com/valter-silva-au/swarm/pkg/models"
)

// App is the process-wide context. It is created once at startup and holds
// everything that must survive between interactions: the resolved
// configuration, the writable actions directory and the dataset cache.
type App struct {
	BasePath string
	Env      models.EnvConfig
	Config   *models.GlobalConfig

	// Configuration
	ConfigMgr core.ConfigurationManager

	// ActionsDir is the directory chosen for the action log. ActionsDirErr
	// holds the probe failure when the configured directory was replaced by
	// the fallback.
	ActionsDir    string
	ActionsDirErr error

	// Storage layer
	Datasets  storage.DatasetStore
	ActionLog storage.ActionLog

	// Core services
	ViewModel core.ViewModelBuilder
	Actions   core.ActionService

	// Observability
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
	AlertEngine observability.AlertEngine
	Notifier    observability.Notifier
}

// NewApp creates and wires all components. basePath is the directory that
// holds .swarmconfig; relative data and actions directories resolve
// against it.
func NewApp(basePath string, envCfg models.EnvConfig) (*App, error) {
	app := &App{BasePath: basePath, Env: envCfg}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath, envCfg)
	cfg, err := app.ConfigMgr.LoadGlobalConfig()
	if err != nil {
		return nil, err
	}
	if err := app.ConfigMgr.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	app.Config = cfg

	// --- Storage layer ---
	app.ActionsDir, app.ActionsDirErr = storage.SelectWritableDir(cfg.ActionsDir, cfg.FallbackActionsDir)
	app.Datasets = storage.NewDatasetStore(cfg.DataDir)
	app.ActionLog = storage.NewActionLog(app.ActionsDir)

	// --- Observability ---
	app.EventLog, err = observability.NewJSONLEventLog(filepath.Join(app.ActionsDir, observability.EventsFile))
	if err != nil {
		// Non-fatal: disable observability if log can't be created.
		app.EventLog = nil
	}
	var evtAdapter core.EventLogger
	if app.EventLog != nil {
		evtAdapter = &eventLogAdapter{log: app.EventLog}
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
		app.AlertEngine = observability.NewAlertEngine(app.EventLog, observability.AlertThresholds{
			FailedActions: cfg.AlertFailedActions,
			Window:        cfg.AlertWindow,
			StaleDays:     cfg.AlertStaleDays,
		})
		if app.ActionsDirErr != nil {
			_ = evtAdapter.LogEvent(observability.LevelWarn, "actions_dir.fallback", map[string]any{
				"preferred": cfg.ActionsDir,
				"fallback":  app.ActionsDir,
				"error":     app.ActionsDirErr.Error(),
			})
		}
	}

	if cfg.SlackWebhookURL != "" {
		app.Notifier = observability.NewSlackNotifier(cfg.SlackWebhookURL, basePath)
	}

	// --- Core services ---
	dsAdapter := &datasetStoreAdapter{store: app.Datasets, events: evtAdapter}
	app.ViewModel = core.NewViewModelBuilder(dsAdapter, evtAdapter, core.ViewOptions{
		InboxLimit:      cfg.InboxLimit,
		DefaultMinScore: cfg.DefaultMinScore,
		TopCapabilities: cfg.TopCapabilities,
	})
	app.Actions = core.NewActionService(dsAdapter, app.ActionLog, evtAdapter)

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.Config = cfg
	cli.ViewModel = app.ViewModel
	cli.Actions = app.Actions
	cli.ActionLog = app.ActionLog
	cli.ActionsDirErr = app.ActionsDirErr
	cli.ProjectInit = core.NewProjectInitializer()

	cli.EventLog = app.EventLog
	cli.MetricsCalc = app.MetricsCalc
	cli.AlertEngine = app.AlertEngine
	cli.Notifier = app.Notifier

	return app, nil
}

// Close releases resources held by the App, such as the event log file handle.
// It is safe to call Close on an App whose EventLog is nil.
func (a *App) Close() error {
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// ResolveBasePath determines the base directory. SWARM_HOME wins; otherwise
// the current directory tree is walked up looking for .swarmconfig, falling
// back to the current directory.
func ResolveBasePath(envCfg models.EnvConfig) string {
	if envCfg.Home != "" {
		return envCfg.Home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, core.ConfigFileName)); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	cwd, _ := os.Getwd()
	return cwd
}

// --- Adapters ---

// datasetStoreAdapter adapts storage.DatasetStore to core.DatasetStore. It
// records a dataset.loaded event whenever the tables were parsed afresh
// rather than served from the cache.
type datasetStoreAdapter struct {
	store  storage.DatasetStore
	events core.EventLogger

	mu        sync.Mutex
	lastTasks *models.TaskTable
	lastCards *models.CardTable
}

func (a *datasetStoreAdapter) Tables() (*models.TaskTable, *models.CardTable, error) {
	tasks, cards, err := a.store.LoadDefault()
	if err != nil {
		return nil, nil, err
	}

	a.mu.Lock()
	fresh := tasks != a.lastTasks || cards != a.lastCards
	a.lastTasks, a.lastCards = tasks, cards
	a.mu.Unlock()

	if fresh && a.events != nil {
		_ = a.events.LogEvent(observability.LevelInfo, core.EventDatasetLoaded, map[string]any{
			"tasks": tasks.Len(),
			"cards": cards.Len(),
		})
	}
	return tasks, cards, nil
}

func (a *datasetStoreAdapter) Replace(tasksCSV, cardsCSV []byte) error {
	var tasks, cards *storage.Source
	if tasksCSV != nil {
		src := storage.BytesSource("uploaded "+storage.TasksFile, tasksCSV)
		tasks = &src
	}
	if cardsCSV != nil {
		src := storage.BytesSource("uploaded "+storage.CardsFile, cardsCSV)
		cards = &src
	}
	return a.store.Replace(tasks, cards)
}

// eventLogAdapter adapts observability.EventLog to core.EventLogger.
type eventLogAdapter struct {
	log observability.EventLog
}

func (a *eventLogAdapter) LogEvent(level, eventType string, data map[string]any) error {
	if err := a.log.Write(observability.Event{
		Time:    time.Now().UTC(),
		Level:   level,
		Type:    eventType,
		Message: eventType,
		Data:    data,
	}); err != nil {
		return fmt.Errorf("logging %s: %w", eventType, err)
	}
	return nil
}
