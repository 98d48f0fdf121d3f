package handlers

import (
	"context"

	"taskManager/internal/models/task"
	"taskManager/internal/models/user"

	"github.com/google/uuid"
)

type TaskService interface {
	HealthCheck(context.Context) error
	ListTasks(context.Context, user.Principal, task.Filter) ([]*task.Task, error)
	CreateTask(ctx context.Context, principal user.Principal, title, description string, status task.Status, dueDate *task.Date) (*task.Task, error)
	GetTask(context.Context, user.Principal, uuid.UUID) (*task.Task, error)
	UpdateTask(context.Context, user.Principal, uuid.UUID, ...task.Option) (*task.Task, error)
	DeleteTask(context.Context, user.Principal, uuid.UUID) error
}

type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*user.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	CurrentUser(context.Context, user.Principal) (*user.User, error)
}
