package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pomtime/internal/gacha"
	"pomtime/internal/model"
	"pomtime/pkg/auth"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrTaskNotFound     = errors.New("task not found")
	ErrAlreadyCompleted = errors.New("task already completed")
	ErrAlreadyCheckedIn = errors.New("already checked in today")
	ErrInvalidRollCount = errors.New("roll count must be 1 or 10")
	ErrInvalidCharacter = errors.New("character does not exist")
	ErrTooManyDisplayed = errors.New("at most 6 characters can be displayed")
	ErrNotOwned         = errors.New("character not in collection")
	ErrSelfFriend       = errors.New("cannot add yourself as a friend")
	ErrFriendExists     = errors.New("friend already added")
	ErrFriendNotFound   = errors.New("no user with that email")
)

// InsufficientPointsError reports the exact required and current balance
// so the caller can surface both.
type InsufficientPointsError struct {
	Required int
	Current  int
}

func (e *InsufficientPointsError) Error() string {
	return fmt.Sprintf("insufficient points: need %d, have %d", e.Required, e.Current)
}

// InsufficientOwnedError reports owned vs requested copies for a release.
type InsufficientOwnedError struct {
	Name      string
	Owned     int
	Requested int
}

func (e *InsufficientOwnedError) Error() string {
	return fmt.Sprintf("insufficient copies of %s: own %d, requested %d", e.Name, e.Owned, e.Requested)
}

type UserServiceI interface {
	Login(ctx context.Context, idToken string) (*auth.Session, *model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetProfile(ctx context.Context, id string) (*Profile, error)
	GetLeaderboard(ctx context.Context) ([]*model.RankedUser, error)
	AddFriend(ctx context.Context, userID, friendEmail string) error
	RemoveFriend(ctx context.Context, userID, friendEmail string) error
	GetFriends(ctx context.Context, userID string) ([]*model.Friend, error)
	UpdateSettings(ctx context.Context, userID string, settings json.RawMessage) error
}

type TaskServiceI interface {
	CreateTask(ctx context.Context, userID string, task *model.Task) (*model.Task, error)
	GetTasks(ctx context.Context, userID string) ([]*model.Task, error)
	UpdateTask(ctx context.Context, userID string, task *model.Task) error
	DeleteTask(ctx context.Context, userID string, id uuid.UUID) error
}

type EconomyServiceI interface {
	CompleteTask(ctx context.Context, userID string, taskID uuid.UUID) (*TaskCompletion, error)
	CompletePomodoro(ctx context.Context, userID string, durationMinutes int, label string) (*PomodoroCompletion, error)
	RollGacha(ctx context.Context, userID string, count int) (*GachaResult, error)
	ReleaseCharacter(ctx context.Context, userID, name string, count int) (*ReleaseResult, error)
	SetDisplayedCharacters(ctx context.Context, userID string, names []string) error
	DailyCheckIn(ctx context.Context, userID string) (*CheckInResult, error)
}

// UserRepository is the store surface the user/friends/settings flows
// consume.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	TouchAuthDate(ctx context.Context, id string, at time.Time) error
	GetCollection(ctx context.Context, userID string) (map[string]int, error)
	GetTopUsers(ctx context.Context, limit int) ([]*model.RankedUser, error)
	AddFriend(ctx context.Context, userID, friendEmail string) error
	RemoveFriend(ctx context.Context, userID, friendEmail string) error
	GetFriends(ctx context.Context, userID string) ([]*model.Friend, error)
	UpdateSettings(ctx context.Context, userID string, settings json.RawMessage) error
}

// EconomyRepository is the store surface the orchestrator consumes. All
// mutating primitives are single-document atomic; the conditional ones
// (DebitPoints, RemoveFromCollection, MarkTaskCompleted) carry their
// check into the write itself.
type EconomyRepository interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	CreditPoints(ctx context.Context, userID string, points int, daily model.DailyPoints) (int, error)
	DebitPoints(ctx context.Context, userID string, amount int) (int, error)
	SetProgress(ctx context.Context, userID string, experience, level int) error
	RecordPomodoro(ctx context.Context, session *model.PomodoroSession, daily model.DailyPoints) (int, int, error)
	AddToCollection(ctx context.Context, userID string, counts map[string]int) error
	RemoveFromCollection(ctx context.Context, userID, name string, count int) error
	GetCollection(ctx context.Context, userID string) (map[string]int, error)
	SetDisplayedCharacters(ctx context.Context, userID string, names []string) error
	GetTaskByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	CreateTask(ctx context.Context, task *model.Task) error
	MarkTaskCompleted(ctx context.Context, id uuid.UUID, at time.Time) error
}

type TaskRepository interface {
	CreateTask(ctx context.Context, task *model.Task) error
	GetTaskByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	GetTasksByUser(ctx context.Context, userID string) ([]*model.Task, error)
	UpdateTask(ctx context.Context, task *model.Task) error
	DeleteTask(ctx context.Context, userID string, id uuid.UUID) error
}

// Operation results exposed to the API layer.

type TaskCompletion struct {
	PointsCredited int
	TotalPoints    int
}

type PomodoroCompletion struct {
	PointsCredited int
	TotalPoints    int
	SessionCount   int
	Collection     map[string]int
}

type GachaResult struct {
	Draws           []gacha.Draw
	RemainingPoints int
	Collection      map[string]int
}

type ReleaseResult struct {
	XPGained       int
	TotalXP        int
	Level          int
	LeveledUp      bool
	XPInLevel      int
	XPForNextLevel int
	Collection     map[string]int
}

type CheckInResult struct {
	PointsEarned int
	TotalPoints  int
}

type Profile struct {
	User           *model.User
	Collection     map[string]int
	XPInLevel      int
	XPForNextLevel int
}
