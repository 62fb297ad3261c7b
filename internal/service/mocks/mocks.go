// Package mocks holds hand-written testify mocks for the repository
// interfaces consumed by the service layer.
package mocks

import (
	"context"
	"encoding/json"
	"time"

	"pomtime/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockEconomyRepository struct {
	mock.Mock
}

func (m *MockEconomyRepository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockEconomyRepository) CreditPoints(ctx context.Context, userID string, points int, daily model.DailyPoints) (int, error) {
	args := m.Called(ctx, userID, points, daily)
	return args.Int(0), args.Error(1)
}

func (m *MockEconomyRepository) DebitPoints(ctx context.Context, userID string, amount int) (int, error) {
	args := m.Called(ctx, userID, amount)
	return args.Int(0), args.Error(1)
}

func (m *MockEconomyRepository) SetProgress(ctx context.Context, userID string, experience, level int) error {
	args := m.Called(ctx, userID, experience, level)
	return args.Error(0)
}

func (m *MockEconomyRepository) RecordPomodoro(ctx context.Context, session *model.PomodoroSession, daily model.DailyPoints) (int, int, error) {
	args := m.Called(ctx, session, daily)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *MockEconomyRepository) AddToCollection(ctx context.Context, userID string, counts map[string]int) error {
	args := m.Called(ctx, userID, counts)
	return args.Error(0)
}

func (m *MockEconomyRepository) RemoveFromCollection(ctx context.Context, userID, name string, count int) error {
	args := m.Called(ctx, userID, name, count)
	return args.Error(0)
}

func (m *MockEconomyRepository) GetCollection(ctx context.Context, userID string) (map[string]int, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *MockEconomyRepository) SetDisplayedCharacters(ctx context.Context, userID string, names []string) error {
	args := m.Called(ctx, userID, names)
	return args.Error(0)
}

func (m *MockEconomyRepository) GetTaskByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockEconomyRepository) CreateTask(ctx context.Context, task *model.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockEconomyRepository) MarkTaskCompleted(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) TouchAuthDate(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockUserRepository) GetCollection(ctx context.Context, userID string) (map[string]int, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *MockUserRepository) GetTopUsers(ctx context.Context, limit int) ([]*model.RankedUser, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.RankedUser), args.Error(1)
}

func (m *MockUserRepository) AddFriend(ctx context.Context, userID, friendEmail string) error {
	args := m.Called(ctx, userID, friendEmail)
	return args.Error(0)
}

func (m *MockUserRepository) RemoveFriend(ctx context.Context, userID, friendEmail string) error {
	args := m.Called(ctx, userID, friendEmail)
	return args.Error(0)
}

func (m *MockUserRepository) GetFriends(ctx context.Context, userID string) ([]*model.Friend, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Friend), args.Error(1)
}

func (m *MockUserRepository) UpdateSettings(ctx context.Context, userID string, settings json.RawMessage) error {
	args := m.Called(ctx, userID, settings)
	return args.Error(0)
}

type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) CreateTask(ctx context.Context, task *model.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) GetTaskByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockTaskRepository) GetTasksByUser(ctx context.Context, userID string) ([]*model.Task, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Task), args.Error(1)
}

func (m *MockTaskRepository) UpdateTask(ctx context.Context, task *model.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) DeleteTask(ctx context.Context, userID string, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}
