package service

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"pomtime/internal/gacha"
	"pomtime/internal/ledger"
	"pomtime/internal/model"
	"pomtime/internal/repository"
	"pomtime/internal/service/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newEconomyService(repo *mocks.MockEconomyRepository) *EconomyService {
	return NewEconomyService(repo, gacha.NewEngineWithSource(rand.NewSource(1)))
}

func TestPomodoroReward(t *testing.T) {
	tests := []struct {
		minutes  int
		expected int
	}{
		{1, 2},
		{25, 2},
		{50, 2},
		{60, 2},
		{63, 3},
		{100, 4},
		{125, 5},
		{250, 10},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, PomodoroReward(tt.minutes), "minutes=%d", tt.minutes)
	}
}

func TestEconomyService_RollGacha(t *testing.T) {
	today := ledger.Today(time.Now())

	t.Run("rejects counts other than 1 and 10", func(t *testing.T) {
		mockRepo := &mocks.MockEconomyRepository{}
		service := newEconomyService(mockRepo)

		for _, count := range []int{0, -1, 2, 5, 11, 100} {
			_, err := service.RollGacha(context.Background(), "u1", count)
			assert.ErrorIs(t, err, ErrInvalidRollCount, "count=%d", count)
		}

		mockRepo.AssertNotCalled(t, "DebitPoints")
	})

	t.Run("insufficient points reports required and current", func(t *testing.T) {
		mockRepo := &mocks.MockEconomyRepository{}
		service := newEconomyService(mockRepo)

		mockRepo.On("GetUserByID", mock.Anything, "u1").
			Return(&model.User{ID: "u1", Points: 5}, nil)
		mockRepo.On("DebitPoints", mock.Anything, "u1", 10).
			Return(0, repository.ErrInsufficientPoints)

		_, err := service.RollGacha(context.Background(), "u1", 10)

		var insufficient *InsufficientPointsError
		assert.ErrorAs(t, err, &insufficient)
		assert.Equal(t, 10, insufficient.Required)
		assert.Equal(t, 5, insufficient.Current)
		mockRepo.AssertExpectations(t)
	})

	t.Run("ten-roll debits, draws and applies increments", func(t *testing.T) {
		mockRepo := &mocks.MockEconomyRepository{}
		service := newEconomyService(mockRepo)

		mockRepo.On("GetUserByID", mock.Anything, "u1").
			Return(&model.User{
				ID:     "u1",
				Points: 50,
				Daily:  model.DailyPoints{Date: today},
			}, nil)
		mockRepo.On("DebitPoints", mock.Anything, "u1", 10).Return(40, nil)
		mockRepo.On("AddToCollection", mock.Anything, "u1", mock.MatchedBy(func(counts map[string]int) bool {
			total := 0
			for name, n := range counts {
				if _, ok := gacha.StarsOf(name); !ok {
					return false
				}
				total += n
			}
			return total == 10
		})).Return(nil)
		mockRepo.On("GetCollection", mock.Anything, "u1").
			Return(map[string]int{"White": 4, "Brown": 6}, nil)

		result, err := service.RollGacha(context.Background(), "u1", 10)

		assert.NoError(t, err)
		assert.Len(t, result.Draws, 10)
		for _, d := range result.Draws {
			stars, ok := gacha.StarsOf(d.Name)
			assert.True(t, ok)
			assert.Equal(t, stars, d.Stars)
		}
		assert.Equal(t, 40, result.RemainingPoints)
		mockRepo.AssertExpectations(t)
	})
}

func TestEconomyService_ReleaseCharacter(t *testing.T) {
	t.Run("rejects non-positive count", func(t *testing.T) {
		mockRepo := &mocks.MockEconomyRepository{}
		service := newEconomyService(mockRepo)

		_, err := service.ReleaseCharacter(context.Background(), "u1", "White", 0)
		assert.ErrorIs(t, err, ErrInvalidReleaseCount)
	})

	t.Run("rejects names outside the banner pools", func(t *testing.T) {
		mockRepo := &mocks.MockEconomyRepository{}
		service := newEconomyService(mockRepo)

		for _, name := range []string{"Pomodoro", "Shadow", ""} {
			_, err := service.ReleaseCharacter(context.Background(), "u1", name, 1)
			assert.ErrorIs(t, err, ErrInvalidCharacter, "name=%q", name)
		}
	})

	t.Run("insufficient owned reports owned and requested", func(t *testing.T) {
		mockRepo := &mocks.MockEconomyRepository{}
		service := newEconomyService(mockRepo)

		mockRepo.On("GetUserByID", mock.Anything, "u1").
			Return(&model.User{ID: "u1", Experience: 0, Level: 1}, nil)
		mockRepo.On("GetCollection", mock.Anything, "u1").
			Return(map[string]int{"White": 1}, nil)

		_, err := service.ReleaseCharacter(context.Background(), "u1", "White", 2)

		var insufficient *InsufficientOwnedError
		assert.ErrorAs(t, err, &insufficient)
		assert.Equal(t, 1, insufficient.Owned)
		assert.Equal(t, 2, insufficient.Requested)
		mockRepo.AssertNotCalled(t, "RemoveFromCollection")
	})

	t.Run("crossing a level boundary reports the level-up", func(t *testing.T) {
		mockRepo := &mocks.MockEconomyRepository{}
		service := newEconomyService(mockRepo)

		mockRepo.On("GetUserByID", mock.Anything, "u1").
			Return(&model.User{ID: "u1", Experience: 90, Level: 1}, nil)
		mockRepo.On("GetCollection", mock.Anything, "u1").
			Return(map[string]int{"White": 2}, nil).Once()
		mockRepo.On("RemoveFromCollection", mock.Anything, "u1", "White", 1).Return(nil)
		mockRepo.On("SetProgress", mock.Anything, "u1", 105, 2).Return(nil)
		mockRepo.On("GetCollection", mock.Anything, "u1").
			Return(map[string]int{"White": 1}, nil).Once()

		result, err := service.ReleaseCharacter(context.Background(), "u1", "White", 1)

		assert.NoError(t, err)
		assert.Equal(t, 15, result.XPGained)
		assert.Equal(t, 105, result.TotalXP)
		assert.Equal(t, 2, result.Level)
		assert.True(t, result.LeveledUp)
		assert.Equal(t, 5, result.XPInLevel)
		assert.Equal(t, 100, result.XPForNextLevel)
		assert.Equal(t, 1, result.Collection["White"])
		mockRepo.AssertExpectations(t)
	})

	t.Run("releasing all copies removes the entry", func(t *testing.T) {
		mockRepo := &mocks.MockEconomyRepository{}
		service := newEconomyService(mockRepo)

		mockRepo.On("GetUserByID", mock.Anything, "u1").
			Return(&model.User{ID: "u1", Experience: 200, Level: 3}, nil)
		mockRepo.On("GetCollection", mock.Anything, "u1").
			Return(map[string]int{"Snow": 2, "White": 1}, nil).Once()
		mockRepo.On("RemoveFromCollection", mock.Anything, "u1", "Snow", 2).Return(nil)
		mockRepo.On("SetProgress", mock.Anything, "u1", 400, 5).Return(nil)
		mockRepo.On("GetCollection", mock.Anything, "u1").
			Return(map[string]int{"White": 1}, nil).Once()

		result, err := service.ReleaseCharacter(context.Background(), "u1", "Snow", 2)

		assert.NoError(t, err)
		assert.Equal(t, 200, result.XPGained)
		assert.Equal(t, 5, result.Level)
		assert.True(t, result.LeveledUp)
		assert.NotContains(t, result.Collection, "Snow")
		mockRepo.AssertExpectations(t)
	})
}

func TestEconomyService_SetDisplayedCharacters(t *testing.T) {
	t.Run("rejects more than six names", func(t *testing.T) {
		mockRepo := &mocks.MockEconomyRepository{}
		service := newEconomyService(mockRepo)

		names := []string{"White", "Brown", "Orange", "Black", "Cream", "Gray", "Tan"}
		err := service.SetDisplayedCharacters(context.Background(), "u1", names)

		assert.ErrorIs(t, err, ErrTooManyDisplayed)
		mockRepo.AssertNotCalled(t, "GetCollection")
	})

	t.Run("rejects names absent from the collection", func(t *testing.T) {
		mockRepo := &mocks.MockEconomyRepository{}
		service := newEconomyService(mockRepo)

		mockRepo.On("GetCollection", mock.Anything, "u1").
			Return(map[string]int{"White": 1}, nil)

		err := service.SetDisplayedCharacters(context.Background(), "u1", []string{"White", "King"})

		assert.ErrorIs(t, err, ErrNotOwned)
		mockRepo.AssertNotCalled(t, "SetDisplayedCharacters")
	})

	t.Run("replaces the displayed list", func(t *testing.T) {
		mockRepo := &mocks.MockEconomyRepository{}
		service := newEconomyService(mockRepo)

		mockRepo.On("GetCollection", mock.Anything, "u1").
			Return(map[string]int{"White": 1, "King": 2}, nil)
		mockRepo.On("SetDisplayedCharacters", mock.Anything, "u1", []string{"King", "White"}).
			Return(nil)

		err := service.SetDisplayedCharacters(context.Background(), "u1", []string{"King", "White"})

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})
}

func TestEconomyService_DailyCheckIn(t *testing.T) {
	today := ledger.Today(time.Now())

	t.Run("second check-in the same day is rejected", func(t *testing.T) {
		mockRepo := &mocks.MockEconomyRepository{}
		service := newEconomyService(mockRepo)

		mockRepo.On("GetUserByID", mock.Anything, "u1").
			Return(&model.User{
				ID:    "u1",
				Daily: model.DailyPoints{Date: today, PointsEarned: 5, LastCheckin: today},
			}, nil)

		_, err := service.DailyCheckIn(context.Background(), "u1")

		assert.ErrorIs(t, err, ErrAlreadyCheckedIn)
		mockRepo.AssertNotCalled(t, "CreditPoints")
	})

	t.Run("first check-in of the day credits five points", func(t *testing.T) {
		mockRepo := &mocks.MockEconomyRepository{}
		service := newEconomyService(mockRepo)

		mockRepo.On("GetUserByID", mock.Anything, "u1").
			Return(&model.User{
				ID:     "u1",
				Points: 100,
				Daily:  model.DailyPoints{Date: today, PointsEarned: 10},
			}, nil)
		mockRepo.On("CreditPoints", mock.Anything, "u1", 5, mock.MatchedBy(func(d model.DailyPoints) bool {
			return d.Date == today && d.PointsEarned == 15 && d.LastCheckin == today
		})).Return(105, nil)

		result, err := service.DailyCheckIn(context.Background(), "u1")

		assert.NoError(t, err)
		assert.Equal(t, 5, result.PointsEarned)
		assert.Equal(t, 105, result.TotalPoints)
		mockRepo.AssertExpectations(t)
	})

	t.Run("check-in near the cap is truncated, not rejected", func(t *testing.T) {
		mockRepo := &mocks.MockEconomyRepository{}
		service := newEconomyService(mockRepo)

		mockRepo.On("GetUserByID", mock.Anything, "u1").
			Return(&model.User{
				ID:     "u1",
				Points: 100,
				Daily:  model.DailyPoints{Date: today, PointsEarned: 48},
			}, nil)
		mockRepo.On("CreditPoints", mock.Anything, "u1", 2, mock.MatchedBy(func(d model.DailyPoints) bool {
			return d.PointsEarned == 50 && d.LastCheckin == today
		})).Return(102, nil)

		result, err := service.DailyCheckIn(context.Background(), "u1")

		assert.NoError(t, err)
		assert.Equal(t, 2, result.PointsEarned)
		mockRepo.AssertExpectations(t)
	})
}

func TestEconomyService_CompleteTask(t *testing.T) {
	today := ledger.Today(time.Now())

	t.Run("unknown task", func(t *testing.T) {
		mockRepo := &mocks.MockEconomyRepository{}
		service := newEconomyService(mockRepo)

		taskID := uuid.New()
		mockRepo.On("GetTaskByID", mock.Anything, taskID).
			Return(nil, repository.ErrNotFound)

		_, err := service.CompleteTask(context.Background(), "u1", taskID)
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})

	t.Run("task owned by someone else", func(t *testing.T) {
		mockRepo := &mocks.MockEconomyRepository{}
		service := newEconomyService(mockRepo)

		taskID := uuid.New()
		mockRepo.On("GetTaskByID", mock.Anything, taskID).
			Return(&model.Task{ID: taskID, UserID: "other"}, nil)

		_, err := service.CompleteTask(context.Background(), "u1", taskID)
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})

	t.Run("already completed", func(t *testing.T) {
		mockRepo := &mocks.MockEconomyRepository{}
		service := newEconomyService(mockRepo)

		taskID := uuid.New()
		mockRepo.On("GetTaskByID", mock.Anything, taskID).
			Return(&model.Task{ID: taskID, UserID: "u1", Completed: true}, nil)

		_, err := service.CompleteTask(context.Background(), "u1", taskID)
		assert.ErrorIs(t, err, ErrAlreadyCompleted)
		mockRepo.AssertNotCalled(t, "MarkTaskCompleted")
	})

	t.Run("credits through the daily cap", func(t *testing.T) {
		mockRepo := &mocks.MockEconomyRepository{}
		service := newEconomyService(mockRepo)

		taskID := uuid.New()
		mockRepo.On("GetTaskByID", mock.Anything, taskID).
			Return(&model.Task{ID: taskID, UserID: "u1", Points: 10}, nil)
		mockRepo.On("GetUserByID", mock.Anything, "u1").
			Return(&model.User{
				ID:     "u1",
				Points: 55,
				Daily:  model.DailyPoints{Date: today, PointsEarned: 45},
			}, nil)
		mockRepo.On("MarkTaskCompleted", mock.Anything, taskID, mock.Anything).Return(nil)
		mockRepo.On("CreditPoints", mock.Anything, "u1", 5, mock.MatchedBy(func(d model.DailyPoints) bool {
			return d.Date == today && d.PointsEarned == 50
		})).Return(60, nil)

		result, err := service.CompleteTask(context.Background(), "u1", taskID)

		assert.NoError(t, err)
		assert.Equal(t, 5, result.PointsCredited)
		assert.Equal(t, 60, result.TotalPoints)
		mockRepo.AssertNotCalled(t, "CreateTask")
		mockRepo.AssertExpectations(t)
	})

	t.Run("recurring task spawns a successor one day later", func(t *testing.T) {
		mockRepo := &mocks.MockEconomyRepository{}
		service := newEconomyService(mockRepo)

		taskID := uuid.New()
		start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
		end := start.Add(time.Hour)
		task := &model.Task{
			ID:        taskID,
			UserID:    "u1",
			Title:     "morning review",
			Start:     start,
			End:       end,
			Points:    2,
			Recurring: true,
		}

		mockRepo.On("GetTaskByID", mock.Anything, taskID).Return(task, nil)
		mockRepo.On("GetUserByID", mock.Anything, "u1").
			Return(&model.User{ID: "u1", Daily: model.DailyPoints{Date: today}}, nil)
		mockRepo.On("MarkTaskCompleted", mock.Anything, taskID, mock.Anything).Return(nil)
		mockRepo.On("CreditPoints", mock.Anything, "u1", 2, mock.Anything).Return(2, nil)
		mockRepo.On("CreateTask", mock.Anything, mock.MatchedBy(func(clone *model.Task) bool {
			return clone.ID != taskID &&
				clone.Title == "morning review" &&
				clone.Start.Equal(start.Add(24*time.Hour)) &&
				clone.End.Equal(end.Add(24*time.Hour)) &&
				clone.Points == 2 &&
				clone.Recurring &&
				!clone.Completed
		})).Return(nil)

		result, err := service.CompleteTask(context.Background(), "u1", taskID)

		assert.NoError(t, err)
		assert.Equal(t, 2, result.PointsCredited)
		mockRepo.AssertExpectations(t)
	})
}

func TestEconomyService_CompletePomodoro(t *testing.T) {
	today := ledger.Today(time.Now())

	t.Run("rejects non-positive duration", func(t *testing.T) {
		mockRepo := &mocks.MockEconomyRepository{}
		service := newEconomyService(mockRepo)

		for _, minutes := range []int{0, -25} {
			_, err := service.CompletePomodoro(context.Background(), "u1", minutes, "study")
			assert.ErrorIs(t, err, ErrInvalidDuration, "minutes=%d", minutes)
		}
	})

	t.Run("logs the truncated award, counters bump regardless", func(t *testing.T) {
		mockRepo := &mocks.MockEconomyRepository{}
		service := newEconomyService(mockRepo)

		mockRepo.On("GetUserByID", mock.Anything, "u1").
			Return(&model.User{
				ID:     "u1",
				Points: 99,
				Daily:  model.DailyPoints{Date: today, PointsEarned: 49},
			}, nil)
		mockRepo.On("RecordPomodoro", mock.Anything, mock.MatchedBy(func(s *model.PomodoroSession) bool {
			return s.UserID == "u1" &&
				s.Label == "study" &&
				s.DurationMinutes == 25 &&
				s.PointsEarned == 1
		}), mock.MatchedBy(func(d model.DailyPoints) bool {
			return d.Date == today && d.PointsEarned == 50
		})).Return(100, 7, nil)
		mockRepo.On("GetCollection", mock.Anything, "u1").
			Return(map[string]int{"Pomodoro": 7}, nil)

		result, err := service.CompletePomodoro(context.Background(), "u1", 25, "study")

		assert.NoError(t, err)
		assert.Equal(t, 1, result.PointsCredited)
		assert.Equal(t, 100, result.TotalPoints)
		assert.Equal(t, 7, result.SessionCount)
		assert.Equal(t, 7, result.Collection["Pomodoro"])
		mockRepo.AssertExpectations(t)
	})
}
