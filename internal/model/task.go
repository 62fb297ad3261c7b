package model

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID              uuid.UUID
	UserID          string
	Title           string
	Start           time.Time
	End             time.Time
	DurationMinutes int
	Points          int
	Recurring       bool
	Completed       bool
	CompletedAt     *time.Time
}

// NextOccurrence clones a recurring task one day later, not yet completed.
func (t *Task) NextOccurrence() *Task {
	return &Task{
		ID:              uuid.New(),
		UserID:          t.UserID,
		Title:           t.Title,
		Start:           t.Start.Add(24 * time.Hour),
		End:             t.End.Add(24 * time.Hour),
		DurationMinutes: t.DurationMinutes,
		Points:          t.Points,
		Recurring:       t.Recurring,
	}
}
