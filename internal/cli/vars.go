package cli

import (
	"github.com/valter-silva-au/swarm/internal/core"
	"github.com/valter-silva-au/swarm/internal/observability"
	"github.com/valter-silva-au/swarm/internal/storage"
	"github.com/valter-silva-au/swarm/pkg/models"
)

// BasePath is the directory holding .swarmconfig.
var BasePath string

// Config is the resolved configuration.
var Config *models.GlobalConfig

// Core service instances, set during app initialization in app.go.
var (
	ViewModel core.ViewModelBuilder
	Actions   core.ActionService
	ActionLog storage.ActionLog
	// ActionsDirErr is the reason the configured actions directory was
	// replaced by the fallback, or nil.
	ActionsDirErr error
)

// Observability service instances, set during app initialization in app.go.
var (
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
	AlertEngine observability.AlertEngine
	// Notifier is nil unless a Slack webhook is configured.
	Notifier observability.Notifier
)
