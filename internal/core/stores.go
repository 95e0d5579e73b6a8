package core

import "github.com/valter-silva-au/swarm/pkg/models"

// ActionAppender persists action records.
// This interface is defined locally in core to avoid importing storage.
type ActionAppender interface {
	Append(rec models.ActionRecord) error
}

// DatasetProvider supplies the currently loaded tables.
// This interface is defined locally in core to avoid importing storage.
type DatasetProvider interface {
	Tables() (*models.TaskTable, *models.CardTable, error)
}

// DatasetStore is a DatasetProvider whose backing sources can be replaced
// wholesale. A nil upload leaves that table untouched.
type DatasetStore interface {
	DatasetProvider
	Replace(tasksCSV, cardsCSV []byte) error
}
