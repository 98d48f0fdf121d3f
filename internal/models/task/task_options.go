package task

// Option - функция частичного обновления задачи.
// Владелец через опции не меняется: опции WithOwner не существует.
type Option func(*Task)

func WithTitle(title string) Option {
	if title == "" {
		return nil
	}
	return func(task *Task) {
		task.Title = title
	}
}

func WithDescription(description string) Option {
	return func(task *Task) {
		task.Description = description
	}
}

func WithStatus(status Status) Option {
	if status == "" {
		return nil
	}
	return func(task *Task) {
		task.Status = status
	}
}

func WithDueDate(dueDate Date) Option {
	if dueDate.IsZero() {
		return nil
	}
	return func(task *Task) {
		task.DueDate = &dueDate
	}
}
