package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"taskManager/internal/handlers"
	"taskManager/internal/logger"
	"taskManager/internal/middleware"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	"taskManager/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init(true)
	os.Exit(m.Run())
}

// MockTaskService - мок сервиса
type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTaskService) ListTasks(ctx context.Context, principal user.Principal, filter task.Filter) ([]*task.Task, error) {
	args := m.Called(ctx, principal, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskService) CreateTask(ctx context.Context, principal user.Principal, title, description string, status task.Status, dueDate *task.Date) (*task.Task, error) {
	args := m.Called(ctx, principal, title, description, status, dueDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) GetTask(ctx context.Context, principal user.Principal, id uuid.UUID) (*task.Task, error) {
	args := m.Called(ctx, principal, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) UpdateTask(ctx context.Context, principal user.Principal, id uuid.UUID, options ...task.Option) (*task.Task, error) {
	args := m.Called(ctx, principal, id, options)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) DeleteTask(ctx context.Context, principal user.Principal, id uuid.UUID) error {
	args := m.Called(ctx, principal, id)
	return args.Error(0)
}

var _ handlers.TaskService = (*MockTaskService)(nil)

var john = user.Principal{ID: uuid.New(), Email: "john@example.com"}

// withPrincipal имитирует auth-middleware: кладёт Principal в контекст
func withPrincipal(p user.Principal) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), middleware.PrincipalKey, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newRouter(svc handlers.TaskService, principal *user.Principal) *chi.Mux {
	h := handlers.NewTaskHandler(svc)

	r := chi.NewRouter()
	if principal != nil {
		r.Use(withPrincipal(*principal))
	}
	r.Route("/api/tasks", func(r chi.Router) {
		r.Get("/", h.ListTasks)
		r.Post("/", h.PostTask)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetTaskByID)
			r.Put("/", h.UpdateTaskByID)
			r.Delete("/", h.DeleteTaskByID)
		})
	})
	r.Get("/health", h.HealthCheck)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func sampleTask(owner user.Principal) *task.Task {
	due := task.DateOf(time.Now().AddDate(0, 0, 1))
	return &task.Task{
		ID:          uuid.New(),
		OwnerID:     owner.ID,
		Title:       "Test Task",
		Description: "Test Description",
		Status:      task.StatusInProgress,
		DueDate:     &due,
		CreatedAt:   time.Now(),
	}
}

func TestTaskHandler_ListTasks(t *testing.T) {
	t.Run("returns owner tasks without owner_id in payload", func(t *testing.T) {
		mockSvc := new(MockTaskService)
		mockSvc.On("ListTasks", mock.Anything, john, task.Filter{}).
			Return([]*task.Task{sampleTask(john), sampleTask(john)}, nil)

		rec := doJSON(t, newRouter(mockSvc, &john), http.MethodGet, "/api/tasks", nil)

		require.Equal(t, http.StatusOK, rec.Code)

		var payload []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		require.Len(t, payload, 2)
		assert.Contains(t, payload[0], "id")
		assert.Contains(t, payload[0], "title")
		assert.Contains(t, payload[0], "status")
		assert.Contains(t, payload[0], "due_date")
		assert.Contains(t, payload[0], "created_at")
		assert.NotContains(t, payload[0], "owner_id")
		mockSvc.AssertExpectations(t)
	})

	t.Run("passes status and due_before filters to service", func(t *testing.T) {
		dueBefore, err := task.ParseDate("2026-09-01")
		require.NoError(t, err)
		expected := task.Filter{Status: task.StatusCompleted, DueBefore: &dueBefore}

		mockSvc := new(MockTaskService)
		mockSvc.On("ListTasks", mock.Anything, john, expected).Return([]*task.Task{}, nil)

		rec := doJSON(t, newRouter(mockSvc, &john), http.MethodGet, "/api/tasks?status=completed&due_before=2026-09-01", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("malformed due_before is a validation error", func(t *testing.T) {
		mockSvc := new(MockTaskService)

		rec := doJSON(t, newRouter(mockSvc, &john), http.MethodGet, "/api/tasks?due_before=not-a-date", nil)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		mockSvc.AssertNotCalled(t, "ListTasks", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no principal - unauthorized", func(t *testing.T) {
		mockSvc := new(MockTaskService)

		rec := doJSON(t, newRouter(mockSvc, nil), http.MethodGet, "/api/tasks", nil)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestTaskHandler_PostTask(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		created := sampleTask(john)
		mockSvc := new(MockTaskService)
		mockSvc.On("CreateTask", mock.Anything, john, "Test Task", "Test Description", task.StatusInProgress, mock.Anything).
			Return(created, nil)

		rec := doJSON(t, newRouter(mockSvc, &john), http.MethodPost, "/api/tasks", map[string]any{
			"title":       "Test Task",
			"description": "Test Description",
			"status":      "in-progress",
			"due_date":    time.Now().AddDate(0, 0, 1).Format(task.DateLayout),
		})

		require.Equal(t, http.StatusCreated, rec.Code)

		var payload map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		assert.Equal(t, "Test Task", payload["title"])
		assert.Equal(t, "in-progress", payload["status"])
		assert.NotContains(t, payload, "owner_id")
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing title - 422 with field errors", func(t *testing.T) {
		mockSvc := new(MockTaskService)

		rec := doJSON(t, newRouter(mockSvc, &john), http.MethodPost, "/api/tasks", map[string]any{
			"description": "Test Description",
		})

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var payload struct {
			Error  string            `json:"error"`
			Errors map[string]string `json:"errors"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		assert.Equal(t, service.CodeValidation, payload.Error)
		assert.Contains(t, payload.Errors, "title")
		mockSvc.AssertNotCalled(t, "CreateTask", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown status - 422", func(t *testing.T) {
		mockSvc := new(MockTaskService)

		rec := doJSON(t, newRouter(mockSvc, &john), http.MethodPost, "/api/tasks", map[string]any{
			"title":  "Test Task",
			"status": "Completed", // регистр имеет значение
		})

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("wrong content type - 415", func(t *testing.T) {
		mockSvc := new(MockTaskService)
		router := newRouter(mockSvc, &john)

		req := httptest.NewRequest(http.MethodPost, "/api/tasks", bytes.NewReader([]byte("title=x")))
		req.Header.Set("Content-Type", "text/plain")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})
}

func TestTaskHandler_GetTaskByID(t *testing.T) {
	tests := []struct {
		name           string
		id             string
		setupMock      func(*MockTaskService, *task.Task)
		expectedStatus int
	}{
		{
			name: "success",
			setupMock: func(m *MockTaskService, owned *task.Task) {
				m.On("GetTask", mock.Anything, john, owned.ID).Return(owned, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "forbidden for non-owner",
			setupMock: func(m *MockTaskService, owned *task.Task) {
				m.On("GetTask", mock.Anything, john, owned.ID).Return(nil, service.NewForbidden(owned.ID.String()))
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name: "not found",
			setupMock: func(m *MockTaskService, owned *task.Task) {
				m.On("GetTask", mock.Anything, john, owned.ID).Return(nil, service.NewNotFound(owned.ID.String()))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "unparseable id is not found",
			id:             "not-a-uuid",
			setupMock:      func(m *MockTaskService, owned *task.Task) {},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owned := sampleTask(john)
			mockSvc := new(MockTaskService)
			tt.setupMock(mockSvc, owned)

			id := tt.id
			if id == "" {
				id = owned.ID.String()
			}

			rec := doJSON(t, newRouter(mockSvc, &john), http.MethodGet, "/api/tasks/"+id, nil)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			mockSvc.AssertExpectations(t)
		})
	}
}

func TestTaskHandler_UpdateTaskByID(t *testing.T) {
	t.Run("partial update returns updated task", func(t *testing.T) {
		owned := sampleTask(john)
		owned.Status = task.StatusCompleted

		mockSvc := new(MockTaskService)
		mockSvc.On("UpdateTask", mock.Anything, john, owned.ID, mock.MatchedBy(func(opts []task.Option) bool {
			return len(opts) == 2
		})).Return(owned, nil)

		rec := doJSON(t, newRouter(mockSvc, &john), http.MethodPut, "/api/tasks/"+owned.ID.String(), map[string]any{
			"title":  "Updated Test Task",
			"status": "completed",
		})

		require.Equal(t, http.StatusOK, rec.Code)

		var payload map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		assert.Equal(t, "completed", payload["status"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("forbidden for non-owner", func(t *testing.T) {
		owned := sampleTask(john)
		mockSvc := new(MockTaskService)
		mockSvc.On("UpdateTask", mock.Anything, john, owned.ID, mock.Anything).
			Return(nil, service.NewForbidden(owned.ID.String()))

		rec := doJSON(t, newRouter(mockSvc, &john), http.MethodPut, "/api/tasks/"+owned.ID.String(), map[string]any{
			"title": "hijack",
		})

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("invalid status value - 422", func(t *testing.T) {
		owned := sampleTask(john)
		mockSvc := new(MockTaskService)

		rec := doJSON(t, newRouter(mockSvc, &john), http.MethodPut, "/api/tasks/"+owned.ID.String(), map[string]any{
			"status": "done",
		})

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		mockSvc.AssertNotCalled(t, "UpdateTask", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestTaskHandler_DeleteTaskByID(t *testing.T) {
	t.Run("success with confirmation message", func(t *testing.T) {
		owned := sampleTask(john)
		mockSvc := new(MockTaskService)
		mockSvc.On("DeleteTask", mock.Anything, john, owned.ID).Return(nil)

		rec := doJSON(t, newRouter(mockSvc, &john), http.MethodDelete, "/api/tasks/"+owned.ID.String(), nil)

		require.Equal(t, http.StatusOK, rec.Code)

		var payload map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		assert.Equal(t, "Task deleted successfully", payload["message"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("second delete - not found", func(t *testing.T) {
		owned := sampleTask(john)
		mockSvc := new(MockTaskService)
		mockSvc.On("DeleteTask", mock.Anything, john, owned.ID).
			Return(service.NewNotFound(owned.ID.String()))

		rec := doJSON(t, newRouter(mockSvc, &john), http.MethodDelete, "/api/tasks/"+owned.ID.String(), nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("forbidden for non-owner", func(t *testing.T) {
		owned := sampleTask(john)
		mockSvc := new(MockTaskService)
		mockSvc.On("DeleteTask", mock.Anything, john, owned.ID).
			Return(service.NewForbidden(owned.ID.String()))

		rec := doJSON(t, newRouter(mockSvc, &john), http.MethodDelete, "/api/tasks/"+owned.ID.String(), nil)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestTaskHandler_HealthCheck(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockTaskService)
		expectedStatus int
	}{
		{
			name: "success - healthy",
			setupMock: func(m *MockTaskService) {
				m.On("HealthCheck", mock.Anything).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "error - unhealthy",
			setupMock: func(m *MockTaskService) {
				m.On("HealthCheck", mock.Anything).Return(assert.AnError)
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(MockTaskService)
			tt.setupMock(mockSvc)

			rec := doJSON(t, newRouter(mockSvc, nil), http.MethodGet, "/health", nil)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			mockSvc.AssertExpectations(t)
		})
	}
}
