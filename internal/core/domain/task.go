package domain

import (
	"time"
)

const TaskNameMaxLength = 200

type Task struct {
	ID        int
	Name      string `validate:"required,max=200"`
	Completed bool
	OwnerID   int `validate:"required"`
	CreatedAt time.Time
}

// TaskCursor is the keyset position of the last task of a page.
type TaskCursor struct {
	CreatedAt time.Time
	ID        int
}

// TaskPatch carries the only fields a client may change on an existing task.
// Nil means "leave as is".
type TaskPatch struct {
	Name      *string
	Completed *bool
}

func (t *Task) Apply(patch TaskPatch) {
	if patch.Name != nil {
		t.Name = *patch.Name
	}

	if patch.Completed != nil {
		t.Completed = *patch.Completed
	}
}
