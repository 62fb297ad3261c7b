package model

import (
	"encoding/json"
	"time"
)

type User struct {
	ID                  string
	Email               string
	Name                string
	AvatarURL           string
	Points              int
	Experience          int
	Level               int
	PomodoroSessions    int
	DisplayedCharacters []string
	Daily               DailyPoints
	RegistrationDate    time.Time
	LastAuthDate        time.Time
	Settings            json.RawMessage
}

// DailyPoints tracks the per-day point accounting on the user's own record.
// Date and LastCheckin are ledger-local calendar days ("2006-01-02"); an
// empty LastCheckin means the user has never checked in.
type DailyPoints struct {
	Date         string
	PointsEarned int
	LastCheckin  string
}

// Friend is a leaderboard-style view of a user on someone's friends list.
type Friend struct {
	Email  string
	Name   string
	Points int
	Level  int
}

// RankedUser is a leaderboard row.
type RankedUser struct {
	Name      string
	Email     string
	AvatarURL string
	Points    int
	Level     int
}
