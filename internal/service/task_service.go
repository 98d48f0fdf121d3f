package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	"taskManager/internal/policy"
	rep "taskManager/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TaskService - фасад пяти операций над задачами.
// Principal приходит явным параметром в каждый вызов, не из контекста.
type TaskService struct {
	repo   TaskRepository
	policy policy.TaskPolicy
}

func NewTaskService(repo TaskRepository) TaskService {
	return TaskService{
		repo:   repo,
		policy: policy.NewTaskPolicy(),
	}
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}

// ListTasks - задачи владельца, суженные фильтром; чужие задачи
// не возвращаются ни при каких значениях фильтра
func (s *TaskService) ListTasks(ctx context.Context, principal user.Principal, filter task.Filter) ([]*task.Task, error) {
	tasks, err := s.repo.GetByOwner(ctx, principal.ID, filter)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	return tasks, nil
}

// CreateTask - владельцем всегда становится principal,
// переданный клиентом owner игнорируется ещё на уровне DTO
func (s *TaskService) CreateTask(ctx context.Context, principal user.Principal, title, description string, status task.Status, dueDate *task.Date) (*task.Task, error) {
	if title == "" {
		return nil, NewValidationError("title", "не может быть пустым")
	}
	if status == "" {
		status = task.StatusPending
	}

	newTask := &task.Task{
		ID:          uuid.New(),
		OwnerID:     principal.ID,
		Title:       title,
		Description: description,
		Status:      status,
		DueDate:     dueDate,
		CreatedAt:   time.Now(),
	}

	if err := s.repo.Create(ctx, newTask); err != nil {
		return nil, fmt.Errorf("создание задачи: %w", err)
	}

	logger.Info("Service: Задача создана",
		zap.String("task_id", newTask.ID.String()),
		zap.String("owner_id", principal.ID.String()))
	return newTask, nil
}

func (s *TaskService) GetTask(ctx context.Context, principal user.Principal, id uuid.UUID) (*task.Task, error) {
	found, err := s.getAuthorized(ctx, principal, id, policy.ActionView)
	if err != nil {
		return nil, err
	}
	return found, nil
}

// UpdateTask - частичное обновление: применяются только переданные опции,
// остальные поля не трогаются
func (s *TaskService) UpdateTask(ctx context.Context, principal user.Principal, id uuid.UUID, options ...task.Option) (*task.Task, error) {
	found, err := s.getAuthorized(ctx, principal, id, policy.ActionUpdate)
	if err != nil {
		return nil, err
	}

	for _, opt := range options {
		if opt != nil {
			opt(found)
		}
	}

	if err := s.repo.Update(ctx, found); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, NewNotFound(id.String())
		}
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}
	return found, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, principal user.Principal, id uuid.UUID) error {
	if _, err := s.getAuthorized(ctx, principal, id, policy.ActionDelete); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return NewNotFound(id.String())
		}
		return fmt.Errorf("удаление задачи: %w", err)
	}

	logger.Info("Service: Задача удалена", zap.String("task_id", id.String()))
	return nil
}

// getAuthorized - поиск, затем явная проверка владения.
// Чужая существующая задача отвечает FORBIDDEN, а не NOT_FOUND:
// поиск по id никогда не сужается владельцем.
func (s *TaskService) getAuthorized(ctx context.Context, principal user.Principal, id uuid.UUID, action policy.Action) (*task.Task, error) {
	found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.String("target_id", id.String()))
			return nil, NewNotFound(id.String())
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	if err := s.policy.Authorize(principal, found, action); err != nil {
		logger.Warn("Service: Доступ к чужой задаче",
			zap.String("task_id", id.String()),
			zap.String("principal_id", principal.ID.String()),
			zap.String("action", string(action)))
		return nil, NewForbidden(id.String())
	}

	return found, nil
}
