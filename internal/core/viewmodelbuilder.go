package core

import (
	"fmt"

	"github.com/valter-silva-au/swarm/pkg/models"
)

// ViewModelBuilder turns the loaded tables into what the dashboard surfaces
// render. Every call reads the current tables, so a replaced dataset is
// picked up on the next interaction.
type ViewModelBuilder interface {
	DefaultCriteria() (Criteria, error)
	Cards(c Criteria) ([]models.Card, error)
	Inbox(c Criteria) ([]models.Card, error)
	Overview(c Criteria) (OverviewStats, error)
	Tasks() (*models.TaskTable, error)
	Task(id string) (models.Task, error)
	TaskLine(id string) string
	ReplaceDataset(tasksCSV, cardsCSV []byte) error
}

// ViewOptions tunes the builder.
type ViewOptions struct {
	InboxLimit      int
	DefaultMinScore int
	TopCapabilities int
}

type viewModelBuilder struct {
	data   DatasetStore
	events EventLogger
	opts   ViewOptions
}

// NewViewModelBuilder creates a ViewModelBuilder over data. events may be nil.
func NewViewModelBuilder(data DatasetStore, events EventLogger, opts ViewOptions) ViewModelBuilder {
	if opts.InboxLimit <= 0 {
		opts.InboxLimit = DefaultInboxLimit
	}
	if opts.TopCapabilities <= 0 {
		opts.TopCapabilities = DefaultTopCapabilities
	}
	return &viewModelBuilder{data: data, events: events, opts: opts}
}

func (b *viewModelBuilder) DefaultCriteria() (Criteria, error) {
	tasks, cards, err := b.data.Tables()
	if err != nil {
		return Criteria{}, err
	}
	c := DefaultCriteria(cards, tasks)
	c.MinScore = b.opts.DefaultMinScore
	return c, nil
}

func (b *viewModelBuilder) Cards(c Criteria) ([]models.Card, error) {
	_, cards, err := b.data.Tables()
	if err != nil {
		return nil, err
	}
	return Filter(cards, c), nil
}

func (b *viewModelBuilder) Inbox(c Criteria) ([]models.Card, error) {
	filtered, err := b.Cards(c)
	if err != nil {
		return nil, err
	}
	return Inbox(filtered, b.opts.InboxLimit), nil
}

func (b *viewModelBuilder) Overview(c Criteria) (OverviewStats, error) {
	tasks, cards, err := b.data.Tables()
	if err != nil {
		return OverviewStats{}, err
	}
	return AggregateTop(Filter(cards, c), tasks, b.opts.TopCapabilities), nil
}

func (b *viewModelBuilder) Tasks() (*models.TaskTable, error) {
	tasks, _, err := b.data.Tables()
	return tasks, err
}

func (b *viewModelBuilder) Task(id string) (models.Task, error) {
	tasks, err := b.Tasks()
	if err != nil {
		return models.Task{}, err
	}
	return ResolveFull(id, tasks)
}

// TaskLine never fails: a load error degrades to the bare id.
func (b *viewModelBuilder) TaskLine(id string) string {
	tasks, err := b.Tasks()
	if err != nil {
		return id
	}
	return TaskLine(id, tasks)
}

func (b *viewModelBuilder) ReplaceDataset(tasksCSV, cardsCSV []byte) error {
	if err := b.data.Replace(tasksCSV, cardsCSV); err != nil {
		return fmt.Errorf("replacing dataset: %w", err)
	}
	if b.events != nil {
		_ = b.events.LogEvent("INFO", EventDatasetReplaced, map[string]any{
			"tasks": tasksCSV != nil,
			"cards": cardsCSV != nil,
		})
	}
	return nil
}
