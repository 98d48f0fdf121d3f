package task

// Filter - необязательные условия выборки задач.
// Пустые значения ничего не отсекают, условия объединяются по AND.
type Filter struct {
	Status    Status
	DueBefore *Date
}

type predicate func(*Task) bool

func (f Filter) predicates() []predicate {
	preds := []predicate{}

	if f.Status != "" {
		preds = append(preds, func(t *Task) bool {
			return t.Status == f.Status
		})
	}

	if f.DueBefore != nil {
		preds = append(preds, func(t *Task) bool {
			// задача без дедлайна под фильтр по дате не попадает
			if t.DueDate == nil {
				return false
			}
			// граница включительно: due_date <= due_before
			return !t.DueDate.After(f.DueBefore.Time)
		})
	}

	return preds
}

func (f Filter) Matches(t *Task) bool {
	for _, pred := range f.predicates() {
		if !pred(t) {
			return false
		}
	}
	return true
}

func (f Filter) IsEmpty() bool {
	return f.Status == "" && f.DueBefore == nil
}
