package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"taskManager/internal/handlers/dto"
	"taskManager/internal/logger"
	"taskManager/internal/middleware"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	"taskManager/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TaskHandler struct {
	TaskService TaskService
}

func NewTaskHandler(taskService TaskService) TaskHandler {
	return TaskHandler{
		TaskService: taskService,
	}
}

// principalFrom достаёт Principal, положенный auth-middleware.
// Дальше он передаётся в сервис явным параметром.
func principalFrom(w http.ResponseWriter, r *http.Request) (user.Principal, bool) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		logger.Warn("HTTP: Запрос без principal", zap.String("path", r.URL.Path))
		responseWithJSON(w, http.StatusUnauthorized,
			toPayload("error", service.CodeUnauthorized),
			toPayload("message", "требуется аутентификация"))
		return user.Principal{}, false
	}
	return principal, true
}

func taskIDFrom(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idParam := chi.URLParam(r, "id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		// нечитаемый id означает, что такой задачи нет
		logger.Warn("HTTP: Не удалось получить id",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		handleBusinessError(w, service.NewNotFound(idParam))
		return uuid.Nil, false
	}
	return id, true
}

func (s *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}

	filter := task.Filter{
		Status: task.Status(r.URL.Query().Get("status")),
	}

	if raw := r.URL.Query().Get("due_before"); raw != "" {
		dueBefore, err := task.ParseDate(raw)
		if err != nil {
			logger.Warn("HTTP: Неверное значение параметра",
				zap.String("query", "due_before"),
				zap.Error(err),
				zap.String("client_ip", r.RemoteAddr))
			handleBusinessError(w, service.NewValidationError("due_before", "ожидается дата в формате "+task.DateLayout))
			return
		}
		filter.DueBefore = &dueBefore
	}

	tasks, err := s.TaskService.ListTasks(r.Context(), principal, filter)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err)
		responseWithError(w, http.StatusInternalServerError, "внутренняя ошибка")
		return
	}

	logger.Info("HTTP_OUT: Задачи получены",
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.FromTaskList(tasks))
}

func (s *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}

	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return
	}

	var request dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	if fieldErrors := validateStruct(request); fieldErrors != nil {
		logger.Warn("HTTP: Ошибка валидации",
			zap.Any("fields", fieldErrors),
			zap.String("client_ip", r.RemoteAddr))
		responseWithJSON(w, http.StatusUnprocessableEntity,
			toPayload("error", service.CodeValidation),
			toPayload("errors", fieldErrors))
		return
	}

	created, err := s.TaskService.CreateTask(r.Context(), principal, request.Title, request.Description, request.Status, request.DueDate)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "create_task"),
			zap.Duration("ms", time.Since(start)))
		responseWithError(w, http.StatusInternalServerError, "внутренняя ошибка")
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.String("task_id", created.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithBody(w, http.StatusCreated, dto.FromTask(created))
}

func (s *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}

	id, ok := taskIDFrom(w, r)
	if !ok {
		return
	}

	found, err := s.TaskService.GetTask(r.Context(), principal, id)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка в Service", err,
			zap.String("operation", "get_task"),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusInternalServerError, "внутренняя ошибка")
		return
	}

	logger.Info("HTTP_OUT: Задача получена",
		zap.String("task_id", found.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.FromTask(found))
}

func (s *TaskHandler) UpdateTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}

	id, ok := taskIDFrom(w, r)
	if !ok {
		return
	}

	var request dto.UpdateTaskRequest

	decoder := json.NewDecoder(r.Body)
	defer r.Body.Close()

	if err := decoder.Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "неверно переданы параметры обновления: "+err.Error())
		return
	}

	if fieldErrors := validateStruct(request); fieldErrors != nil {
		logger.Warn("HTTP: Ошибка валидации",
			zap.Any("fields", fieldErrors),
			zap.String("client_ip", r.RemoteAddr))
		responseWithJSON(w, http.StatusUnprocessableEntity,
			toPayload("error", service.CodeValidation),
			toPayload("errors", fieldErrors))
		return
	}

	updated, err := s.TaskService.UpdateTask(r.Context(), principal, id, request.Options()...)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: ошибка в Service", err,
			zap.String("operation", "update_task"),
			zap.String("client_addr", r.RemoteAddr))
		responseWithError(w, http.StatusInternalServerError, "внутренняя ошибка")
		return
	}

	logger.Info("HTTP_OUT: Задача обновлена",
		zap.String("task_id", updated.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.FromTask(updated))
}

func (s *TaskHandler) DeleteTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}

	id, ok := taskIDFrom(w, r)
	if !ok {
		return
	}

	if err := s.TaskService.DeleteTask(r.Context(), principal, id); err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: ошибка в Service", err,
			zap.String("operation", "delete_task"),
			zap.String("client_addr", r.RemoteAddr))
		responseWithError(w, http.StatusInternalServerError, "внутренняя ошибка")
		return
	}

	logger.Info("HTTP_OUT: Задача удалена",
		zap.String("task_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("message", "Task deleted successfully"))
}

func (s *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	if err := s.TaskService.HealthCheck(r.Context()); err != nil {
		responseWithJSON(w, http.StatusServiceUnavailable, toPayload("status", "unhealthy"))
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("status", "ok"))
}
