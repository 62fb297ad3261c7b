package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pomtime/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type User struct {
	ID                  string         `db:"id"`
	Email               string         `db:"email"`
	Name                string         `db:"name"`
	AvatarURL           string         `db:"avatar_url"`
	Points              int            `db:"points"`
	Experience          int            `db:"experience"`
	Level               int            `db:"level"`
	PomodoroSessions    int            `db:"pomodoro_sessions"`
	DisplayedCharacters pq.StringArray `db:"displayed_characters"`
	DailyDate           string         `db:"daily_date"`
	DailyPointsEarned   int            `db:"daily_points_earned"`
	LastCheckinDate     string         `db:"last_checkin_date"`
	Settings            []byte         `db:"settings"`
	RegistrationDate    time.Time      `db:"registration_date"`
	LastAuthDate        time.Time      `db:"last_auth_date"`
}

func (u *User) toModel() *model.User {
	return &model.User{
		ID:                  u.ID,
		Email:               u.Email,
		Name:                u.Name,
		AvatarURL:           u.AvatarURL,
		Points:              u.Points,
		Experience:          u.Experience,
		Level:               u.Level,
		PomodoroSessions:    u.PomodoroSessions,
		DisplayedCharacters: u.DisplayedCharacters,
		Daily: model.DailyPoints{
			Date:         u.DailyDate,
			PointsEarned: u.DailyPointsEarned,
			LastCheckin:  u.LastCheckinDate,
		},
		Settings:         json.RawMessage(u.Settings),
		RegistrationDate: u.RegistrationDate,
		LastAuthDate:     u.LastAuthDate,
	}
}

func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		settings := user.Settings
		if settings == nil {
			settings = json.RawMessage("{}")
		}

		query, args, err := squirrel.
			Insert("users").
			SetMap(map[string]interface{}{
				"id":                   user.ID,
				"email":                user.Email,
				"name":                 user.Name,
				"avatar_url":           user.AvatarURL,
				"points":               user.Points,
				"experience":           user.Experience,
				"level":                user.Level,
				"pomodoro_sessions":    user.PomodoroSessions,
				"displayed_characters": pq.Array(user.DisplayedCharacters),
				"daily_date":           user.Daily.Date,
				"daily_points_earned":  user.Daily.PointsEarned,
				"last_checkin_date":    user.Daily.LastCheckin,
				"settings":             []byte(settings),
				"registration_date":    user.RegistrationDate,
				"last_auth_date":       user.LastAuthDate,
			}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build user insert query: %w", err)
		}

		_, err = tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to insert user: %w", err)
		}

		return nil
	})
}

func (r *Repository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return r.getUserWhere(ctx, squirrel.Eq{"id": id})
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getUserWhere(ctx, squirrel.Eq{"email": email})
}

func (r *Repository) getUserWhere(ctx context.Context, cond squirrel.Eq) (*model.User, error) {
	var user User
	query, args, err := squirrel.
		Select("*").
		From("users").
		Where(cond).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.GetContext(ctx, &user, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return user.toModel(), nil
}

func (r *Repository) TouchAuthDate(ctx context.Context, id string, at time.Time) error {
	query, args, err := squirrel.
		Update("users").
		Set("last_auth_date", at).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

// CreditPoints adds points to the user's balance and persists the daily
// ledger state produced for this credit, in one transaction. Returns the
// new balance.
func (r *Repository) CreditPoints(ctx context.Context, userID string, points int, daily model.DailyPoints) (int, error) {
	var newTotal int

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		query, args, err := squirrel.
			Update("users").
			Set("points", squirrel.Expr("points + ?", points)).
			Set("daily_date", daily.Date).
			Set("daily_points_earned", daily.PointsEarned).
			Set("last_checkin_date", daily.LastCheckin).
			Where(squirrel.Eq{"id": userID}).
			Suffix("RETURNING points").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		err = tx.GetContext(ctx, &newTotal, query, args...)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return newTotal, nil
}

// DebitPoints removes points from the user's balance. The debit itself
// is conditioned on sufficient balance so that two concurrent spends
// cannot both pass a read-side check and overdraw. Returns the remaining
// balance.
func (r *Repository) DebitPoints(ctx context.Context, userID string, amount int) (int, error) {
	query, args, err := squirrel.
		Update("users").
		Set("points", squirrel.Expr("points - ?", amount)).
		Where(squirrel.Eq{"id": userID}).
		Where(squirrel.Expr("points >= ?", amount)).
		Suffix("RETURNING points").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	var remaining int
	err = r.db.GetContext(ctx, &remaining, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrInsufficientPoints
		}
		return 0, err
	}

	return remaining, nil
}

// SetProgress persists experience together with its derived level.
func (r *Repository) SetProgress(ctx context.Context, userID string, experience, level int) error {
	query, args, err := squirrel.
		Update("users").
		Set("experience", experience).
		Set("level", level).
		Where(squirrel.Eq{"id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// RecordPomodoro applies the whole pomodoro completion in one
// transaction: append the immutable log row, credit the capped points,
// bump the session counter and the "Pomodoro" collection entry. Returns
// the new balance and session count.
func (r *Repository) RecordPomodoro(ctx context.Context, session *model.PomodoroSession, daily model.DailyPoints) (int, int, error) {
	var (
		newTotal     int
		sessionCount int
	)

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		logQuery, logArgs, err := squirrel.
			Insert("pomodoro_log").
			SetMap(map[string]interface{}{
				"id":               session.ID,
				"user_id":          session.UserID,
				"label":            session.Label,
				"duration_minutes": session.DurationMinutes,
				"points_earned":    session.PointsEarned,
				"completed_at":     session.CompletedAt,
			}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build pomodoro log insert query: %w", err)
		}

		_, err = tx.ExecContext(ctx, logQuery, logArgs...)
		if err != nil {
			return fmt.Errorf("failed to insert pomodoro log: %w", err)
		}

		updateQuery, updateArgs, err := squirrel.
			Update("users").
			Set("points", squirrel.Expr("points + ?", session.PointsEarned)).
			Set("pomodoro_sessions", squirrel.Expr("pomodoro_sessions + 1")).
			Set("daily_date", daily.Date).
			Set("daily_points_earned", daily.PointsEarned).
			Set("last_checkin_date", daily.LastCheckin).
			Where(squirrel.Eq{"id": session.UserID}).
			Suffix("RETURNING points, pomodoro_sessions").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		row := tx.QueryRowxContext(ctx, updateQuery, updateArgs...)
		if err := row.Scan(&newTotal, &sessionCount); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		return incrementCollectionTx(ctx, tx, session.UserID, map[string]int{"Pomodoro": 1})
	})
	if err != nil {
		return 0, 0, err
	}

	return newTotal, sessionCount, nil
}

// AddToCollection atomically increments owned counts for the given
// characters, creating entries as needed.
func (r *Repository) AddToCollection(ctx context.Context, userID string, counts map[string]int) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		return incrementCollectionTx(ctx, tx, userID, counts)
	})
}

func incrementCollectionTx(ctx context.Context, tx *sqlx.Tx, userID string, counts map[string]int) error {
	for name, count := range counts {
		query, args, err := squirrel.
			Insert("user_characters").
			Columns("user_id", "name", "count").
			Values(userID, name, count).
			Suffix("ON CONFLICT (user_id, name) DO UPDATE SET count = user_characters.count + EXCLUDED.count").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build collection upsert query: %w", err)
		}

		_, err = tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to upsert collection entry: %w", err)
		}
	}

	return nil
}

// RemoveFromCollection decrements the owned count of one character,
// conditioned on owning at least that many copies, and deletes the row
// when the count reaches zero. Zero-count entries are never stored.
func (r *Repository) RemoveFromCollection(ctx context.Context, userID, name string, count int) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		query, args, err := squirrel.
			Update("user_characters").
			Set("count", squirrel.Expr("count - ?", count)).
			Where(squirrel.Eq{"user_id": userID, "name": name}).
			Where(squirrel.Expr("count >= ?", count)).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrInsufficientOwned
		}

		deleteQuery, deleteArgs, err := squirrel.
			Delete("user_characters").
			Where(squirrel.Eq{"user_id": userID, "name": name, "count": 0}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, deleteQuery, deleteArgs...)
		return err
	})
}

func (r *Repository) GetCollection(ctx context.Context, userID string) (map[string]int, error) {
	query, args, err := squirrel.
		Select("name", "count").
		From("user_characters").
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var entries []struct {
		Name  string `db:"name"`
		Count int    `db:"count"`
	}
	err = r.db.SelectContext(ctx, &entries, query, args...)
	if err != nil {
		return nil, err
	}

	collection := make(map[string]int, len(entries))
	for _, e := range entries {
		collection[e.Name] = e.Count
	}

	return collection, nil
}

func (r *Repository) SetDisplayedCharacters(ctx context.Context, userID string, names []string) error {
	query, args, err := squirrel.
		Update("users").
		Set("displayed_characters", pq.Array(names)).
		Where(squirrel.Eq{"id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *Repository) UpdateSettings(ctx context.Context, userID string, settings json.RawMessage) error {
	query, args, err := squirrel.
		Update("users").
		Set("settings", []byte(settings)).
		Where(squirrel.Eq{"id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *Repository) GetTopUsers(ctx context.Context, limit int) ([]*model.RankedUser, error) {
	query, args, err := squirrel.
		Select("name", "email", "avatar_url", "points", "level").
		From("users").
		OrderBy("points DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var users []struct {
		Name      string `db:"name"`
		Email     string `db:"email"`
		AvatarURL string `db:"avatar_url"`
		Points    int    `db:"points"`
		Level     int    `db:"level"`
	}
	err = r.db.SelectContext(ctx, &users, query, args...)
	if err != nil {
		return nil, err
	}

	ranked := make([]*model.RankedUser, len(users))
	for i, u := range users {
		ranked[i] = &model.RankedUser{
			Name:      u.Name,
			Email:     u.Email,
			AvatarURL: u.AvatarURL,
			Points:    u.Points,
			Level:     u.Level,
		}
	}

	return ranked, nil
}

func (r *Repository) AddFriend(ctx context.Context, userID, friendEmail string) error {
	query, args, err := squirrel.
		Insert("friends").
		Columns("user_id", "friend_email").
		Values(userID, friendEmail).
		Suffix("ON CONFLICT (user_id, friend_email) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrFriendExists
	}

	return nil
}

func (r *Repository) RemoveFriend(ctx context.Context, userID, friendEmail string) error {
	query, args, err := squirrel.
		Delete("friends").
		Where(squirrel.Eq{"user_id": userID, "friend_email": friendEmail}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *Repository) GetFriends(ctx context.Context, userID string) ([]*model.Friend, error) {
	query, args, err := squirrel.
		Select("f.friend_email", "u.name", "u.points", "u.level").
		From("friends f").
		Join("users u ON u.email = f.friend_email").
		Where(squirrel.Eq{"f.user_id": userID}).
		OrderBy("u.points DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var friends []struct {
		Email  string `db:"friend_email"`
		Name   string `db:"name"`
		Points int    `db:"points"`
		Level  int    `db:"level"`
	}
	err = r.db.SelectContext(ctx, &friends, query, args...)
	if err != nil {
		return nil, err
	}

	out := make([]*model.Friend, len(friends))
	for i, f := range friends {
		out[i] = &model.Friend{
			Email:  f.Email,
			Name:   f.Name,
			Points: f.Points,
			Level:  f.Level,
		}
	}

	return out, nil
}
