package service

import (
	"context"

	"taskManager/internal/models/task"

	"github.com/google/uuid"
)

type TaskRepository interface {
	Create(context.Context, *task.Task) error
	Update(context.Context, *task.Task) error
	GetByID(context.Context, uuid.UUID) (*task.Task, error)
	GetByOwner(context.Context, uuid.UUID, task.Filter) ([]*task.Task, error)
	GetAll(context.Context) ([]*task.Task, error)
	Delete(context.Context, uuid.UUID) error
	HealthCheck(context.Context) error
}
