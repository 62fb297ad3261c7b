package model

import (
	"time"

	"github.com/google/uuid"
)

// PomodoroSession is an append-only log entry for one completed focus
// session. PointsEarned is the amount actually credited after the daily
// cap, which may be less than the proposed award.
type PomodoroSession struct {
	ID              uuid.UUID
	UserID          string
	Label           string
	DurationMinutes int
	PointsEarned    int
	CompletedAt     time.Time
}
