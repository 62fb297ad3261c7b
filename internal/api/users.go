package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"pomtime/internal/service"
	"pomtime/pkg/auth"
	"pomtime/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type userRoutes struct {
	us service.UserServiceI
	a  *auth.SessionAuth
}

func NewUserRoutes(handler *gin.RouterGroup, us service.UserServiceI, a *auth.SessionAuth) {
	r := &userRoutes{us: us, a: a}

	handler.POST("/auth/login", r.Login)

	h := handler.Group("/users")
	h.Use(a.Middleware())
	{
		h.GET("/me", r.GetProfile)
		h.POST("/logout", r.Logout)
		h.GET("/leaderboard", r.GetLeaderboard)
		h.GET("/friends", r.GetFriends)
		h.POST("/friends", r.AddFriend)
		h.DELETE("/friends/:email", r.RemoveFriend)
		h.GET("/settings", r.GetSettings)
		h.PUT("/settings", r.UpdateSettings)
	}
}

type LoginRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

func (r *userRoutes) Login(c *gin.Context) {
	log := logger.Logger()

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	session, user, err := r.us.Login(c.Request.Context(), req.IDToken)
	if err != nil {
		log.Error("login failed", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "identity verification failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      session.Token,
		"expires_at": session.ExpiresAt.Format(time.RFC3339),
		"user": gin.H{
			"id":     user.ID,
			"email":  user.Email,
			"name":   user.Name,
			"points": user.Points,
			"level":  user.Level,
		},
	})
}

func (r *userRoutes) Logout(c *gin.Context) {
	log := logger.Logger()

	session, ok := auth.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if err := r.a.Store().Invalidate(c.Request.Context(), session.Token); err != nil {
		log.Error("failed to invalidate session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log out"})
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}

func (r *userRoutes) GetProfile(c *gin.Context) {
	log := logger.Logger()

	session, ok := auth.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	profile, err := r.us.GetProfile(c.Request.Context(), session.UserID)
	if err != nil {
		log.Error("failed to get profile", zap.Error(err))
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get profile"})
		return
	}

	u := profile.User
	c.JSON(http.StatusOK, gin.H{
		"id":                   u.ID,
		"email":                u.Email,
		"name":                 u.Name,
		"avatar_url":           u.AvatarURL,
		"points":               u.Points,
		"experience":           u.Experience,
		"level":                u.Level,
		"xp_in_current_level":  profile.XPInLevel,
		"xp_needed_for_next":   profile.XPForNextLevel,
		"pomodoro_sessions":    u.PomodoroSessions,
		"displayed_characters": u.DisplayedCharacters,
		"collection":           profile.Collection,
		"registration_date":    u.RegistrationDate,
	})
}

func (r *userRoutes) GetLeaderboard(c *gin.Context) {
	log := logger.Logger()

	users, err := r.us.GetLeaderboard(c.Request.Context())
	if err != nil {
		log.Error("failed to get leaderboard", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get leaderboard"})
		return
	}

	var response []gin.H
	for _, user := range users {
		response = append(response, gin.H{
			"name":       user.Name,
			"email":      user.Email,
			"avatar_url": user.AvatarURL,
			"points":     user.Points,
			"level":      user.Level,
		})
	}

	c.JSON(http.StatusOK, response)
}

type AddFriendRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (r *userRoutes) AddFriend(c *gin.Context) {
	log := logger.Logger()

	session, ok := auth.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	var req AddFriendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err := r.us.AddFriend(c.Request.Context(), session.UserID, req.Email)
	if err != nil {
		log.Error("failed to add friend", zap.Error(err))
		switch {
		case errors.Is(err, service.ErrSelfFriend):
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot add yourself as a friend"})
		case errors.Is(err, service.ErrFriendExists):
			c.JSON(http.StatusConflict, gin.H{"error": "friend already added"})
		case errors.Is(err, service.ErrFriendNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "no user with that email"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add friend"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{})
}

func (r *userRoutes) RemoveFriend(c *gin.Context) {
	log := logger.Logger()

	session, ok := auth.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	err := r.us.RemoveFriend(c.Request.Context(), session.UserID, c.Param("email"))
	if err != nil {
		log.Error("failed to remove friend", zap.Error(err))
		if errors.Is(err, service.ErrFriendNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "friend not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove friend"})
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}

func (r *userRoutes) GetFriends(c *gin.Context) {
	log := logger.Logger()

	session, ok := auth.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	friends, err := r.us.GetFriends(c.Request.Context(), session.UserID)
	if err != nil {
		log.Error("failed to get friends", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get friends"})
		return
	}

	var response []gin.H
	for _, f := range friends {
		response = append(response, gin.H{
			"email":  f.Email,
			"name":   f.Name,
			"points": f.Points,
			"level":  f.Level,
		})
	}

	c.JSON(http.StatusOK, response)
}

func (r *userRoutes) GetSettings(c *gin.Context) {
	log := logger.Logger()

	session, ok := auth.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	profile, err := r.us.GetProfile(c.Request.Context(), session.UserID)
	if err != nil {
		log.Error("failed to get settings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get settings"})
		return
	}

	c.Data(http.StatusOK, "application/json", profile.User.Settings)
}

func (r *userRoutes) UpdateSettings(c *gin.Context) {
	log := logger.Logger()

	session, ok := auth.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	var settings json.RawMessage
	if err := c.ShouldBindJSON(&settings); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err := r.us.UpdateSettings(c.Request.Context(), session.UserID, settings)
	if err != nil {
		log.Error("failed to update settings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update settings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}
