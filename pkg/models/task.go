package models

// TaskColumns lists the required header of tasks.csv, in display order.
var TaskColumns = []string{
	"task_id", "product", "team", "capability", "surface", "entity",
	"contract", "kpi_family", "lever", "goal", "timeline_start", "timeline_end",
}

// Task represents a unit of work with its ownership, product and capability
// metadata. All fields are kept verbatim from the source table.
type Task struct {
	ID            string `yaml:"task_id" json:"task_id"`
	Product       string `yaml:"product" json:"product"`
	Team          string `yaml:"team" json:"team"`
	Capability    string `yaml:"capability" json:"capability"`
	Surface       string `yaml:"surface" json:"surface"`
	Entity        string `yaml:"entity" json:"entity"`
	Contract      string `yaml:"contract" json:"contract"`
	KPIFamily     string `yaml:"kpi_family" json:"kpi_family"`
	Lever         string `yaml:"lever" json:"lever"`
	Goal          string `yaml:"goal" json:"goal"`
	TimelineStart string `yaml:"timeline_start" json:"timeline_start"`
	TimelineEnd   string `yaml:"timeline_end" json:"timeline_end"`
}

// Row returns the task as a CSV record in TaskColumns order.
func (t Task) Row() []string {
	return []string{
		t.ID, t.Product, t.Team, t.Capability, t.Surface, t.Entity,
		t.Contract, t.KPIFamily, t.Lever, t.Goal, t.TimelineStart, t.TimelineEnd,
	}
}

// TaskTable is the loaded tasks dataset. Rows keep source order; Index maps a
// task_id to its position in Rows.
type TaskTable struct {
	Rows  []Task
	Index map[string]int
}

// NewTaskTable builds a TaskTable and its id index from rows.
func NewTaskTable(rows []Task) *TaskTable {
	idx := make(map[string]int, len(rows))
	for i, t := range rows {
		idx[t.ID] = i
	}
	return &TaskTable{Rows: rows, Index: idx}
}

// Get returns the task with the given id.
func (tt *TaskTable) Get(id string) (Task, bool) {
	if tt == nil {
		return Task{}, false
	}
	i, ok := tt.Index[id]
	if !ok {
		return Task{}, false
	}
	return tt.Rows[i], true
}

// Len returns the number of tasks, treating a nil table as empty.
func (tt *TaskTable) Len() int {
	if tt == nil {
		return 0
	}
	return len(tt.Rows)
}
