package api

import (
	"errors"
	"net/http"

	"pomtime/internal/service"
	"pomtime/pkg/auth"
	"pomtime/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type economyRoutes struct {
	es service.EconomyServiceI
	a  *auth.SessionAuth
}

func NewEconomyRoutes(handler *gin.RouterGroup, es service.EconomyServiceI, a *auth.SessionAuth) {
	r := &economyRoutes{es: es, a: a}

	h := handler.Group("/")
	h.Use(a.Middleware())
	{
		h.POST("/pomodoro/complete", r.CompletePomodoro)
		h.POST("/gacha/roll", r.RollGacha)
		h.POST("/characters/release", r.ReleaseCharacter)
		h.PUT("/characters/displayed", r.SetDisplayedCharacters)
		h.POST("/checkin", r.DailyCheckIn)
	}
}

type CompletePomodoroRequest struct {
	DurationMinutes int    `json:"duration_minutes" binding:"required"`
	Label           string `json:"label"`
}

func (r *economyRoutes) CompletePomodoro(c *gin.Context) {
	log := logger.Logger()

	session, ok := auth.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	var req CompletePomodoroRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	result, err := r.es.CompletePomodoro(c.Request.Context(), session.UserID, req.DurationMinutes, req.Label)
	if err != nil {
		log.Error("failed to complete pomodoro", zap.Error(err))
		if errors.Is(err, service.ErrInvalidDuration) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "duration must be positive"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to complete pomodoro"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"points_credited": result.PointsCredited,
		"total_points":    result.TotalPoints,
		"session_count":   result.SessionCount,
		"collection":      result.Collection,
	})
}

type RollGachaRequest struct {
	Count int `json:"count" binding:"required"`
}

func (r *economyRoutes) RollGacha(c *gin.Context) {
	log := logger.Logger()

	session, ok := auth.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	var req RollGachaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	result, err := r.es.RollGacha(c.Request.Context(), session.UserID, req.Count)
	if err != nil {
		var insufficient *service.InsufficientPointsError
		switch {
		case errors.Is(err, service.ErrInvalidRollCount):
			c.JSON(http.StatusBadRequest, gin.H{"error": "count must be 1 or 10"})
		case errors.As(err, &insufficient):
			c.JSON(http.StatusConflict, gin.H{
				"error":           "insufficient points",
				"required_points": insufficient.Required,
				"current_points":  insufficient.Current,
			})
		default:
			log.Error("failed to roll gacha", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to roll gacha"})
		}
		return
	}

	draws := make([]gin.H, len(result.Draws))
	for i, d := range result.Draws {
		draws[i] = gin.H{
			"name":  d.Name,
			"stars": d.Stars,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"draws":            draws,
		"remaining_points": result.RemainingPoints,
		"collection":       result.Collection,
	})
}

type ReleaseCharacterRequest struct {
	Name  string `json:"name" binding:"required"`
	Count int    `json:"count" binding:"required"`
}

func (r *economyRoutes) ReleaseCharacter(c *gin.Context) {
	log := logger.Logger()

	session, ok := auth.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	var req ReleaseCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	result, err := r.es.ReleaseCharacter(c.Request.Context(), session.UserID, req.Name, req.Count)
	if err != nil {
		var insufficient *service.InsufficientOwnedError
		switch {
		case errors.Is(err, service.ErrInvalidReleaseCount):
			c.JSON(http.StatusBadRequest, gin.H{"error": "count must be at least 1"})
		case errors.Is(err, service.ErrInvalidCharacter):
			c.JSON(http.StatusNotFound, gin.H{"error": "character does not exist"})
		case errors.As(err, &insufficient):
			c.JSON(http.StatusConflict, gin.H{
				"error":           "insufficient copies",
				"owned_copies":    insufficient.Owned,
				"requested_count": insufficient.Requested,
			})
		default:
			log.Error("failed to release character", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to release character"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"xp_gained":           result.XPGained,
		"total_xp":            result.TotalXP,
		"level":               result.Level,
		"leveled_up":          result.LeveledUp,
		"xp_in_current_level": result.XPInLevel,
		"xp_needed_for_next":  result.XPForNextLevel,
		"collection":          result.Collection,
	})
}

type SetDisplayedRequest struct {
	Characters []string `json:"characters"`
}

func (r *economyRoutes) SetDisplayedCharacters(c *gin.Context) {
	log := logger.Logger()

	session, ok := auth.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	var req SetDisplayedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err := r.es.SetDisplayedCharacters(c.Request.Context(), session.UserID, req.Characters)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTooManyDisplayed):
			c.JSON(http.StatusBadRequest, gin.H{"error": "at most 6 characters can be displayed"})
		case errors.Is(err, service.ErrNotOwned):
			c.JSON(http.StatusBadRequest, gin.H{"error": "character not in collection"})
		default:
			log.Error("failed to set displayed characters", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to set displayed characters"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"displayed_characters": req.Characters,
	})
}

func (r *economyRoutes) DailyCheckIn(c *gin.Context) {
	log := logger.Logger()

	session, ok := auth.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	result, err := r.es.DailyCheckIn(c.Request.Context(), session.UserID)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyCheckedIn) {
			c.JSON(http.StatusConflict, gin.H{"error": "already checked in today"})
			return
		}
		log.Error("failed to check in", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check in"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"points_earned": result.PointsEarned,
		"total_points":  result.TotalPoints,
	})
}
