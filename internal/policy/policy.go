package policy

import (
	"errors"

	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
)

var ErrForbidden = errors.New("доступ к чужой задаче запрещён")

type Action string

const ActionView Action = "view"
const ActionUpdate Action = "update"
const ActionDelete Action = "delete"

// TaskPolicy - единственное правило: задача доступна только владельцу.
// Создание здесь не проверяется: создавать может любой аутентифицированный,
// а владельцем всегда становится он сам.
type TaskPolicy struct{}

func NewTaskPolicy() TaskPolicy {
	return TaskPolicy{}
}

func (TaskPolicy) Authorize(principal user.Principal, t *task.Task, _ Action) error {
	if t.OwnerID != principal.ID {
		return ErrForbidden
	}
	return nil
}
