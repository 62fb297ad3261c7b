package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pomtime/internal/ledger"
	"pomtime/internal/model"
	"pomtime/internal/progression"
	"pomtime/internal/repository"
	"pomtime/pkg/auth"
)

const leaderboardSize = 100

type UserService struct {
	repo     UserRepository
	verifier auth.IdentityVerifier
	sessions auth.SessionStore
}

func NewUserService(repo UserRepository, verifier auth.IdentityVerifier, sessions auth.SessionStore) *UserService {
	return &UserService{
		repo:     repo,
		verifier: verifier,
		sessions: sessions,
	}
}

// Login verifies the provider ID token, bootstraps the account on first
// sight and issues a bearer session.
func (s *UserService) Login(ctx context.Context, idToken string) (*auth.Session, *model.User, error) {
	identity, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, nil, fmt.Errorf("identity verification failed: %w", err)
	}

	now := time.Now()

	user, err := s.repo.GetUserByID(ctx, identity.Sub)
	switch {
	case err == nil:
		if err := s.repo.TouchAuthDate(ctx, user.ID, now); err != nil {
			return nil, nil, err
		}
		user.LastAuthDate = now
	case errors.Is(err, repository.ErrNotFound):
		user = &model.User{
			ID:        identity.Sub,
			Email:     identity.Email,
			Name:      identity.Name,
			AvatarURL: identity.AvatarURL,
			Points:    0,
			Level:     1,
			Daily: model.DailyPoints{
				Date: ledger.Today(now),
			},
			Settings:         json.RawMessage("{}"),
			RegistrationDate: now,
			LastAuthDate:     now,
		}
		if err := s.repo.CreateUser(ctx, user); err != nil {
			return nil, nil, fmt.Errorf("failed to create user: %w", err)
		}
	default:
		return nil, nil, err
	}

	session := auth.NewSession(identity, user.ID)
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *UserService) GetProfile(ctx context.Context, id string) (*Profile, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	collection, err := s.repo.GetCollection(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}

	return &Profile{
		User:           user,
		Collection:     collection,
		XPInLevel:      progression.XPWithinLevel(user.Experience, user.Level),
		XPForNextLevel: progression.XPPerLevel,
	}, nil
}

func (s *UserService) GetLeaderboard(ctx context.Context) ([]*model.RankedUser, error) {
	users, err := s.repo.GetTopUsers(ctx, leaderboardSize)
	if err != nil {
		return nil, fmt.Errorf("failed to get top users: %w", err)
	}
	return users, nil
}

func (s *UserService) AddFriend(ctx context.Context, userID, friendEmail string) error {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Email == friendEmail {
		return ErrSelfFriend
	}

	if _, err := s.repo.GetUserByEmail(ctx, friendEmail); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrFriendNotFound
		}
		return err
	}

	err = s.repo.AddFriend(ctx, userID, friendEmail)
	if err != nil {
		if errors.Is(err, repository.ErrFriendExists) {
			return ErrFriendExists
		}
		return fmt.Errorf("failed to add friend: %w", err)
	}

	return nil
}

func (s *UserService) RemoveFriend(ctx context.Context, userID, friendEmail string) error {
	err := s.repo.RemoveFriend(ctx, userID, friendEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrFriendNotFound
		}
		return fmt.Errorf("failed to remove friend: %w", err)
	}
	return nil
}

func (s *UserService) GetFriends(ctx context.Context, userID string) ([]*model.Friend, error) {
	friends, err := s.repo.GetFriends(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get friends: %w", err)
	}
	return friends, nil
}

func (s *UserService) UpdateSettings(ctx context.Context, userID string, settings json.RawMessage) error {
	if !json.Valid(settings) {
		return fmt.Errorf("settings payload is not valid JSON")
	}

	err := s.repo.UpdateSettings(ctx, userID, settings)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update settings: %w", err)
	}
	return nil
}
