package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"github.com/valter-silva-au/swarm/internal/core"
	"github.com/valter-silva-au/swarm/internal/storage"
	"github.com/valter-silva-au/swarm/pkg/models"
)

// Config for the HTTP API handler.
type Config struct {
	ViewModel core.ViewModelBuilder
	Actions   core.ActionService
	BasePath  string
	Version   string
}

type apiErrorBody struct {
	Code    string         `json:"code" example:"card_not_found"`
	Message string         `json:"message" example:"card not found"`
	Details map[string]any `json:"details,omitempty" jsonschema:"type=object,additionalProperties=true"`
}

// apiError is the error envelope returned by every endpoint.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

// New returns an HTTP handler exposing the swarm API.
func New(cfg Config) (http.Handler, error) {
	if cfg.ViewModel == nil || cfg.Actions == nil {
		return nil, errors.New("server: view model and action service are required")
	}
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/v0"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	huma.DefaultArrayNullable = false
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, "", msg, errorDetails(errs))
	}
	huma.NewErrorWithContext = func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		if status == http.StatusUnprocessableEntity {
			status = http.StatusBadRequest
		}
		return newAPIError(status, "", msg, errorDetails(errs))
	}

	router := chi.NewRouter()
	hcfg := huma.DefaultConfig("swarm API", version)
	hcfg.OpenAPIPath = basePath + "/openapi"
	hcfg.DocsPath = ""
	hcfg.SchemasPath = basePath + "/schemas"
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	registerHealth(group)
	registerCards(group, cfg.ViewModel)
	registerOverview(group, cfg.ViewModel)
	registerTasks(group, cfg.ViewModel)
	registerActions(group, cfg.Actions)
	registerDataset(group, cfg.ViewModel)

	return router, nil
}

func newAPIError(status int, code, message string, details map[string]any) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{
		status: status,
		Body: apiErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

func errorDetails(errs []error) map[string]any {
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return map[string]any{"errors": msgs}
}

func handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}
	var loadErr *storage.LoadError
	var writeErr *storage.LogWriteError
	switch {
	case errors.Is(err, core.ErrTaskNotFound):
		return newAPIError(http.StatusNotFound, "task_not_found", err.Error(), nil)
	case errors.Is(err, core.ErrCardNotFound):
		return newAPIError(http.StatusNotFound, "card_not_found", err.Error(), nil)
	case errors.Is(err, core.ErrInvalidAction):
		return newAPIError(http.StatusBadRequest, "invalid_action", err.Error(), nil)
	case errors.Is(err, core.ErrActionNotRecorded):
		details := map[string]any{}
		if errors.As(err, &writeErr) {
			details["path"] = writeErr.Path
		}
		return newAPIError(http.StatusServiceUnavailable, "action_not_recorded", err.Error(), details)
	case errors.As(err, &loadErr):
		return newAPIError(http.StatusUnprocessableEntity, "dataset_invalid", err.Error(), map[string]any{"source": loadErr.Source})
	default:
		return newAPIError(http.StatusInternalServerError, "internal_error", "internal error", map[string]any{"error": err.Error()})
	}
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusUnprocessableEntity:
		return "validation_failed"
	case http.StatusServiceUnavailable:
		return "unavailable"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}

// criteria starts from the default filter state and applies every query
// parameter that was supplied.
func criteria(vm core.ViewModelBuilder, q FilterQuery) (core.Criteria, error) {
	c, err := vm.DefaultCriteria()
	if err != nil {
		return core.Criteria{}, handleError(err)
	}
	if len(q.Type) > 0 {
		c.Types = make([]models.CardType, len(q.Type))
		for i, t := range q.Type {
			c.Types[i] = models.CardType(t)
		}
	}
	if len(q.Product) > 0 {
		c.Products = q.Product
	}
	if len(q.Capability) > 0 {
		c.Capabilities = q.Capability
	}
	if q.MinScore != "" {
		n, err := strconv.Atoi(q.MinScore)
		if err != nil || n < 0 || n > 100 {
			return core.Criteria{}, newAPIError(http.StatusBadRequest, "bad_request", "min_score must be an integer between 0 and 100", map[string]any{"min_score": q.MinScore})
		}
		c.MinScore = n
	}
	c.CrossProductOnly = q.CrossOnly
	c.Query = q.Query
	return c, nil
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"status": "ok"}}, nil
	})
}

func registerCards(api huma.API, vm core.ViewModelBuilder) {
	huma.Register(api, huma.Operation{
		OperationID: "list-cards",
		Method:      http.MethodGet,
		Path:        "/cards",
		Summary:     "Inbox: filtered cards in ranked order",
		Errors:      []int{http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusInternalServerError},
	}, func(ctx context.Context, input *struct {
		FilterQuery
	}) (*struct {
		Body CardListResponse `json:"body"`
	}, error) {
		c, err := criteria(vm, input.FilterQuery)
		if err != nil {
			return nil, err
		}
		filtered, err := vm.Cards(c)
		if err != nil {
			return nil, handleError(err)
		}
		inbox, err := vm.Inbox(c)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body CardListResponse `json:"body"`
		}{Body: CardListResponse{Found: len(filtered), Cards: toCardViews(inbox, vm.TaskLine)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-cards-by-type",
		Method:      http.MethodGet,
		Path:        "/cards/{type}",
		Summary:     "Filtered cards of one type in source order",
		Errors:      []int{http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusInternalServerError},
	}, func(ctx context.Context, input *struct {
		Type string `path:"type" example:"synergy"`
		FilterQuery
	}) (*struct {
		Body CardListResponse `json:"body"`
	}, error) {
		c, err := criteria(vm, input.FilterQuery)
		if err != nil {
			return nil, err
		}
		filtered, err := vm.Cards(c)
		if err != nil {
			return nil, handleError(err)
		}
		cards := core.ByType(filtered, models.CardType(input.Type))
		return &struct {
			Body CardListResponse `json:"body"`
		}{Body: CardListResponse{Found: len(cards), Cards: toCardViews(cards, vm.TaskLine)}}, nil
	})
}

func registerOverview(api huma.API, vm core.ViewModelBuilder) {
	huma.Register(api, huma.Operation{
		OperationID: "overview",
		Method:      http.MethodGet,
		Path:        "/overview",
		Summary:     "Portfolio overview of the filtered cards",
		Errors:      []int{http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusInternalServerError},
	}, func(ctx context.Context, input *struct {
		FilterQuery
	}) (*struct {
		Body OverviewResponse `json:"body"`
	}, error) {
		c, err := criteria(vm, input.FilterQuery)
		if err != nil {
			return nil, err
		}
		stats, err := vm.Overview(c)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body OverviewResponse `json:"body"`
		}{Body: OverviewResponse{OverviewStats: stats}}, nil
	})
}

func registerTasks(api huma.API, vm core.ViewModelBuilder) {
	huma.Register(api, huma.Operation{
		OperationID: "list-tasks",
		Method:      http.MethodGet,
		Path:        "/tasks",
		Summary:     "List tasks",
		Errors:      []int{http.StatusUnprocessableEntity, http.StatusInternalServerError},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body TaskListResponse `json:"body"`
	}, error) {
		tasks, err := vm.Tasks()
		if err != nil {
			return nil, handleError(err)
		}
		rows := tasks.Rows
		if rows == nil {
			rows = []models.Task{}
		}
		return &struct {
			Body TaskListResponse `json:"body"`
		}{Body: TaskListResponse{Tasks: rows}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-task",
		Method:      http.MethodGet,
		Path:        "/tasks/{task_id}",
		Summary:     "Get every field of a task",
		Errors:      []int{http.StatusNotFound, http.StatusUnprocessableEntity, http.StatusInternalServerError},
	}, func(ctx context.Context, input *struct {
		TaskID string `path:"task_id"`
	}) (*struct {
		Body TaskResponse `json:"body"`
	}, error) {
		task, err := vm.Task(input.TaskID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body TaskResponse `json:"body"`
		}{Body: TaskResponse{Task: task, Line: vm.TaskLine(task.ID)}}, nil
	})
}

func registerActions(api huma.API, actions core.ActionService) {
	huma.Register(api, huma.Operation{
		OperationID:   "submit-action",
		Method:        http.MethodPost,
		Path:          "/actions",
		Summary:       "Record a decision on a card",
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusNotFound,
			http.StatusServiceUnavailable,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		Body SubmitActionRequest `json:"body"`
	}) (*struct {
		Body ActionResponse `json:"body"`
	}, error) {
		rec, err := actions.Submit(core.SubmitCommand{MatchID: input.Body.MatchID, Action: input.Body.Action})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ActionResponse `json:"body"`
		}{Body: ActionResponse{Record: rec}}, nil
	})
}

func registerDataset(api huma.API, vm core.ViewModelBuilder) {
	huma.Register(api, huma.Operation{
		OperationID: "replace-dataset",
		Method:      http.MethodPut,
		Path:        "/dataset",
		Summary:     "Overwrite tasks.csv and/or cards.csv",
		Errors:      []int{http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusInternalServerError},
	}, func(ctx context.Context, input *struct {
		Body ReplaceDatasetRequest `json:"body"`
	}) (*struct {
		Body DatasetResponse `json:"body"`
	}, error) {
		if input.Body.Tasks == nil && input.Body.Cards == nil {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "at least one of tasks or cards is required", nil)
		}
		var tasksCSV, cardsCSV []byte
		if input.Body.Tasks != nil {
			tasksCSV = []byte(*input.Body.Tasks)
		}
		if input.Body.Cards != nil {
			cardsCSV = []byte(*input.Body.Cards)
		}
		if err := vm.ReplaceDataset(tasksCSV, cardsCSV); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body DatasetResponse `json:"body"`
		}{Body: DatasetResponse{
			Status:        "replaced",
			TasksReplaced: tasksCSV != nil,
			CardsReplaced: cardsCSV != nil,
		}}, nil
	})
}
