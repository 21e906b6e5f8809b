package factory

import (
	"time"

	fab "github.com/Goldziher/fabricator"

	"tasklist/internal/core/domain"
)

func NewTask[T any](customData ...map[string]any) T {
	return fab.New(*new(T)).Build(merge(customData...))
}

// NewDomainTask builds an unsaved task for the owner. Overrides win over the
// defaults.
func NewDomainTask(ownerID int, customData ...map[string]any) domain.Task {
	defaults := map[string]any{
		"ID":        0,
		"Name":      "Buy milk",
		"Completed": false,
		"OwnerID":   ownerID,
		"CreatedAt": time.Now().UTC().Truncate(time.Microsecond),
	}

	return NewTask[domain.Task](append([]map[string]any{defaults}, customData...)...)
}
