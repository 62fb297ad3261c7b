package api

import (
	"errors"
	"net/http"
	"time"

	"pomtime/internal/model"
	"pomtime/internal/service"
	"pomtime/pkg/auth"
	"pomtime/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type taskRoutes struct {
	ts service.TaskServiceI
	es service.EconomyServiceI
	a  *auth.SessionAuth
}

func NewTaskRoutes(handler *gin.RouterGroup, ts service.TaskServiceI, es service.EconomyServiceI, a *auth.SessionAuth) {
	r := &taskRoutes{ts: ts, es: es, a: a}
	h := handler.Group("/tasks")
	h.Use(a.Middleware())
	{
		h.POST("/", r.CreateTask)
		h.GET("/", r.GetTasks)
		h.PUT("/:id", r.UpdateTask)
		h.DELETE("/:id", r.DeleteTask)
		h.POST("/:id/complete", r.CompleteTask)
	}
}

type TaskRequest struct {
	Title           string    `json:"title" binding:"required"`
	Start           time.Time `json:"start" binding:"required"`
	End             time.Time `json:"end" binding:"required"`
	DurationMinutes int       `json:"duration_minutes"`
	Points          int       `json:"points"`
	Recurring       bool      `json:"recurring"`
}

func taskResponse(t *model.Task) gin.H {
	return gin.H{
		"id":               t.ID,
		"title":            t.Title,
		"start":            t.Start,
		"end":              t.End,
		"duration_minutes": t.DurationMinutes,
		"points":           t.Points,
		"recurring":        t.Recurring,
		"completed":        t.Completed,
		"completed_at":     t.CompletedAt,
	}
}

func (r *taskRoutes) CreateTask(c *gin.Context) {
	log := logger.Logger()

	session, ok := auth.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	task, err := r.ts.CreateTask(c.Request.Context(), session.UserID, &model.Task{
		Title:           req.Title,
		Start:           req.Start,
		End:             req.End,
		DurationMinutes: req.DurationMinutes,
		Points:          req.Points,
		Recurring:       req.Recurring,
	})
	if err != nil {
		log.Error("failed to create task", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create task"})
		return
	}

	c.JSON(http.StatusCreated, taskResponse(task))
}

func (r *taskRoutes) GetTasks(c *gin.Context) {
	log := logger.Logger()

	session, ok := auth.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	tasks, err := r.ts.GetTasks(c.Request.Context(), session.UserID)
	if err != nil {
		log.Error("failed to get tasks", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get tasks"})
		return
	}

	response := make([]gin.H, len(tasks))
	for i, t := range tasks {
		response[i] = taskResponse(t)
	}

	c.JSON(http.StatusOK, response)
}

func (r *taskRoutes) UpdateTask(c *gin.Context) {
	log := logger.Logger()

	session, ok := auth.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.Error("failed to parse task id", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err = r.ts.UpdateTask(c.Request.Context(), session.UserID, &model.Task{
		ID:              id,
		Title:           req.Title,
		Start:           req.Start,
		End:             req.End,
		DurationMinutes: req.DurationMinutes,
		Points:          req.Points,
		Recurring:       req.Recurring,
	})
	if err != nil {
		log.Error("failed to update task", zap.Error(err))
		switch {
		case errors.Is(err, service.ErrTaskNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		case errors.Is(err, service.ErrAlreadyCompleted):
			c.JSON(http.StatusConflict, gin.H{"error": "task already completed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update task"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}

func (r *taskRoutes) DeleteTask(c *gin.Context) {
	log := logger.Logger()

	session, ok := auth.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.Error("failed to parse task id", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	err = r.ts.DeleteTask(c.Request.Context(), session.UserID, id)
	if err != nil {
		log.Error("failed to delete task", zap.Error(err))
		if errors.Is(err, service.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete task"})
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}

func (r *taskRoutes) CompleteTask(c *gin.Context) {
	log := logger.Logger()

	session, ok := auth.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.Error("failed to parse task id", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	result, err := r.es.CompleteTask(c.Request.Context(), session.UserID, id)
	if err != nil {
		log.Error("failed to complete task", zap.Error(err))
		switch {
		case errors.Is(err, service.ErrTaskNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		case errors.Is(err, service.ErrAlreadyCompleted):
			c.JSON(http.StatusConflict, gin.H{"error": "task already completed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to complete task"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"points_credited": result.PointsCredited,
		"total_points":    result.TotalPoints,
	})
}
