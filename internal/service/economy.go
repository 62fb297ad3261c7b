package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"pomtime/internal/gacha"
	"pomtime/internal/ledger"
	"pomtime/internal/model"
	"pomtime/internal/progression"
	"pomtime/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrInvalidDuration     = errors.New("duration must be positive")
	ErrInvalidReleaseCount = errors.New("release count must be at least 1")
)

// PomodoroItem is the collection entry every completed focus session adds
// one copy of, outside the banner pools and the daily point cap.
const PomodoroItem = "Pomodoro"

// EconomyService orchestrates every point/experience mutation. Each
// operation validates fully before mutating; store failures surface as-is
// and are never retried, since a blind retry of a credit could
// double-award.
type EconomyService struct {
	repo   EconomyRepository
	engine *gacha.Engine
}

func NewEconomyService(repo EconomyRepository, engine *gacha.Engine) *EconomyService {
	return &EconomyService{
		repo:   repo,
		engine: engine,
	}
}

// CompleteTask marks an open task done, credits its points through the
// daily ledger and re-spawns recurring tasks one day later.
func (s *EconomyService) CompleteTask(ctx context.Context, userID string, taskID uuid.UUID) (*TaskCompletion, error) {
	task, err := s.repo.GetTaskByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	if task.UserID != userID {
		return nil, ErrTaskNotFound
	}
	if task.Completed {
		return nil, ErrAlreadyCompleted
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	now := time.Now()
	err = s.repo.MarkTaskCompleted(ctx, taskID, now)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyCompleted) {
			return nil, ErrAlreadyCompleted
		}
		return nil, err
	}

	actual, daily := ledger.Credit(user.Daily, task.Points, ledger.Today(now))
	newTotal, err := s.repo.CreditPoints(ctx, userID, actual, daily)
	if err != nil {
		return nil, fmt.Errorf("failed to credit task points: %w", err)
	}

	if task.Recurring {
		if err := s.repo.CreateTask(ctx, task.NextOccurrence()); err != nil {
			return nil, fmt.Errorf("failed to spawn recurring task: %w", err)
		}
	}

	return &TaskCompletion{
		PointsCredited: actual,
		TotalPoints:    newTotal,
	}, nil
}

// PomodoroReward proposes the point award for a focus session of the
// given length: one point per 25 minutes, rounded, never below 2.
func PomodoroReward(durationMinutes int) int {
	reward := int(math.Round(float64(durationMinutes) / 25.0))
	if reward < 2 {
		reward = 2
	}
	return reward
}

// CompletePomodoro credits a finished focus session. The session counter
// and the Pomodoro collection entry increment unconditionally; only the
// point award goes through the daily cap. The logged points_earned is the
// actually credited amount.
func (s *EconomyService) CompletePomodoro(ctx context.Context, userID string, durationMinutes int, label string) (*PomodoroCompletion, error) {
	if durationMinutes <= 0 {
		return nil, ErrInvalidDuration
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	now := time.Now()
	actual, daily := ledger.Credit(user.Daily, PomodoroReward(durationMinutes), ledger.Today(now))

	session := &model.PomodoroSession{
		ID:              uuid.New(),
		UserID:          userID,
		Label:           label,
		DurationMinutes: durationMinutes,
		PointsEarned:    actual,
		CompletedAt:     now,
	}

	newTotal, sessionCount, err := s.repo.RecordPomodoro(ctx, session, daily)
	if err != nil {
		return nil, fmt.Errorf("failed to record pomodoro: %w", err)
	}

	collection, err := s.repo.GetCollection(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &PomodoroCompletion{
		PointsCredited: actual,
		TotalPoints:    newTotal,
		SessionCount:   sessionCount,
		Collection:     collection,
	}, nil
}

// RollGacha debits count points and draws count characters. Spending is
// not subject to the daily cap. The debit is conditional on balance at
// write time, so concurrent rolls cannot overdraw.
func (s *EconomyService) RollGacha(ctx context.Context, userID string, count int) (*GachaResult, error) {
	if count != 1 && count != 10 {
		return nil, ErrInvalidRollCount
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	remaining, err := s.repo.DebitPoints(ctx, userID, count)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientPoints) {
			return nil, &InsufficientPointsError{Required: count, Current: user.Points}
		}
		return nil, fmt.Errorf("failed to debit points: %w", err)
	}

	draws := s.engine.DrawMany(count)
	counts := make(map[string]int)
	for _, d := range draws {
		counts[d.Name]++
	}

	if err := s.repo.AddToCollection(ctx, userID, counts); err != nil {
		return nil, fmt.Errorf("failed to update collection: %w", err)
	}

	collection, err := s.repo.GetCollection(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &GachaResult{
		Draws:           draws,
		RemainingPoints: remaining,
		Collection:      collection,
	}, nil
}

// ReleaseCharacter converts owned copies into experience. Experience is a
// separate currency from points and is never capped by the daily ledger.
func (s *EconomyService) ReleaseCharacter(ctx context.Context, userID, name string, count int) (*ReleaseResult, error) {
	if count < 1 {
		return nil, ErrInvalidReleaseCount
	}

	stars, ok := gacha.StarsOf(name)
	if !ok {
		return nil, ErrInvalidCharacter
	}

	xpPerCopy, err := progression.XPForStars(stars)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	collection, err := s.repo.GetCollection(ctx, userID)
	if err != nil {
		return nil, err
	}
	if owned := collection[name]; owned < count {
		return nil, &InsufficientOwnedError{Name: name, Owned: owned, Requested: count}
	}

	err = s.repo.RemoveFromCollection(ctx, userID, name, count)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientOwned) {
			return nil, &InsufficientOwnedError{Name: name, Owned: collection[name], Requested: count}
		}
		return nil, fmt.Errorf("failed to remove from collection: %w", err)
	}

	gained := xpPerCopy * count
	totalXP := user.Experience + gained
	newLevel := progression.LevelFromXP(totalXP)

	if err := s.repo.SetProgress(ctx, userID, totalXP, newLevel); err != nil {
		return nil, fmt.Errorf("failed to persist progression: %w", err)
	}

	collection, err = s.repo.GetCollection(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ReleaseResult{
		XPGained:       gained,
		TotalXP:        totalXP,
		Level:          newLevel,
		LeveledUp:      newLevel > user.Level,
		XPInLevel:      progression.XPWithinLevel(totalXP, newLevel),
		XPForNextLevel: progression.XPPerLevel,
		Collection:     collection,
	}, nil
}

// SetDisplayedCharacters replaces the displayed list. At most 6 entries,
// every entry owned; violating writes are rejected before any mutation.
func (s *EconomyService) SetDisplayedCharacters(ctx context.Context, userID string, names []string) error {
	if len(names) > 6 {
		return ErrTooManyDisplayed
	}

	collection, err := s.repo.GetCollection(ctx, userID)
	if err != nil {
		return err
	}
	for _, name := range names {
		if collection[name] == 0 {
			return ErrNotOwned
		}
	}

	err = s.repo.SetDisplayedCharacters(ctx, userID, names)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to set displayed characters: %w", err)
	}

	return nil
}

// DailyCheckIn awards the fixed check-in points once per ledger day. The
// one-per-day guard rejects outright; the award itself still runs
// through the cap and may be truncated.
func (s *EconomyService) DailyCheckIn(ctx context.Context, userID string) (*CheckInResult, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	today := ledger.Today(time.Now())
	if ledger.CheckedInToday(user.Daily, today) {
		return nil, ErrAlreadyCheckedIn
	}

	actual, daily := ledger.Credit(user.Daily, ledger.CheckInReward, today)
	daily.LastCheckin = today

	newTotal, err := s.repo.CreditPoints(ctx, userID, actual, daily)
	if err != nil {
		return nil, fmt.Errorf("failed to credit check-in points: %w", err)
	}

	return &CheckInResult{
		PointsEarned: actual,
		TotalPoints:  newTotal,
	}, nil
}
