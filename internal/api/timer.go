package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"pomtime/internal/service"
	"pomtime/pkg/auth"
	"pomtime/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

type timerRoutes struct {
	es service.EconomyServiceI
	a  *auth.SessionAuth
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// FocusTimer is one live focus session over a websocket. A timer becomes
// a pomodoro credit only when the client reports the finish and the
// elapsed wall time covers the requested duration.
type FocusTimer struct {
	UserID          string
	Label           string
	DurationMinutes int
	StartedAt       time.Time
	IsRunning       bool
	conn            *websocket.Conn
	mu              sync.Mutex
}

type Message struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

var (
	activeTimers = make(map[string]*FocusTimer)
	timersMutex  sync.RWMutex
)

// Short grace so a client's own countdown finishing a moment early is
// not rejected.
const finishTolerance = 5 * time.Second

func NewTimerRoutes(handler *gin.RouterGroup, es service.EconomyServiceI, a *auth.SessionAuth) {
	r := &timerRoutes{es: es, a: a}
	h := handler.Group("/timer")

	h.GET("/ws", r.handleWebSocket)
}

func (tr *timerRoutes) handleWebSocket(c *gin.Context) {
	log := logger.Logger()

	// Browsers cannot set headers on websocket dials, so the bearer
	// token rides in the query string here.
	token := c.Query("token")
	session, err := tr.a.Store().Lookup(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	timer := &FocusTimer{
		UserID: session.UserID,
		conn:   conn,
	}

	timersMutex.Lock()
	activeTimers[session.UserID] = timer
	timersMutex.Unlock()

	go tr.handleTimerLoop(timer)
}

func (tr *timerRoutes) handleTimerLoop(timer *FocusTimer) {
	log := logger.Logger()

	defer func() {
		timer.conn.Close()
		timersMutex.Lock()
		delete(activeTimers, timer.UserID)
		timersMutex.Unlock()
	}()

	for {
		_, msg, err := timer.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error("websocket unexpected close", zap.Error(err))
			}
			break
		}

		var message Message
		if err := json.Unmarshal(msg, &message); err != nil {
			log.Error("failed to unmarshal message", zap.Error(err))
			continue
		}

		switch message.Type {
		case "timer_state":
			tr.sendTimerState(timer)

		case "timer_start":
			duration, _ := message.Payload["duration_minutes"].(float64)
			label, _ := message.Payload["label"].(string)

			if duration <= 0 {
				tr.sendError(timer, "duration must be positive")
				continue
			}
			if timer.IsRunning {
				tr.sendError(timer, "timer already running")
				continue
			}

			timer.IsRunning = true
			timer.DurationMinutes = int(duration)
			timer.Label = label
			timer.StartedAt = time.Now()
			tr.sendTimerState(timer)

		case "timer_cancel":
			timer.IsRunning = false
			tr.sendTimerState(timer)

		case "timer_finish":
			if !timer.IsRunning {
				tr.sendError(timer, "no timer running")
				continue
			}

			required := time.Duration(timer.DurationMinutes)*time.Minute - finishTolerance
			if time.Since(timer.StartedAt) < required {
				tr.sendError(timer, "timer has not elapsed yet")
				continue
			}

			timer.IsRunning = false
			tr.handleTimerComplete(timer)
		}
	}
}

func (tr *timerRoutes) sendTimerState(timer *FocusTimer) {
	state := Message{
		Type: "timer_state",
		Payload: map[string]any{
			"is_running":       timer.IsRunning,
			"duration_minutes": timer.DurationMinutes,
			"label":            timer.Label,
		},
	}
	if timer.IsRunning {
		state.Payload["started_at_unix"] = timer.StartedAt.Unix()
	}

	tr.write(timer, state)
}

func (tr *timerRoutes) sendError(timer *FocusTimer, message string) {
	tr.write(timer, Message{
		Type: "error",
		Payload: map[string]any{
			"message": message,
		},
	})
}

func (tr *timerRoutes) handleTimerComplete(timer *FocusTimer) {
	log := logger.Logger()

	result, err := tr.es.CompletePomodoro(context.Background(), timer.UserID, timer.DurationMinutes, timer.Label)
	if err != nil {
		log.Error("failed to credit focus session",
			zap.String("user_id", timer.UserID),
			zap.Error(err))
		tr.sendError(timer, "failed to credit focus session")
		return
	}

	tr.write(timer, Message{
		Type: "timer_complete",
		Payload: map[string]any{
			"points_credited": result.PointsCredited,
			"total_points":    result.TotalPoints,
			"session_count":   result.SessionCount,
		},
	})
}

func (tr *timerRoutes) write(timer *FocusTimer, m Message) {
	log := logger.Logger()

	data, err := json.Marshal(m)
	if err != nil {
		log.Error("failed to marshal message", zap.Error(err))
		return
	}

	timer.mu.Lock()
	defer timer.mu.Unlock()
	if err := timer.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Error("failed to write message",
			zap.String("user_id", timer.UserID),
			zap.Error(err))
	}
}
