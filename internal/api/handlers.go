package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/julianstephens/feedlog/internal/constants"
	apperrors "github.com/julianstephens/feedlog/internal/errors"
	"github.com/julianstephens/feedlog/internal/export"
	"github.com/julianstephens/feedlog/internal/feeding"
	"github.com/julianstephens/feedlog/internal/logger"
	"github.com/julianstephens/feedlog/internal/models"
	"github.com/julianstephens/feedlog/internal/storage"
)

type handlers struct {
	svc      *feeding.Service
	store    storage.Provider
	hub      *Hub
	upgrader websocket.Upgrader
}

type editRequest struct {
	NewFeedingTime string `json:"new_feeding_time" binding:"required"`
}

// streamMessage is pushed to stream clients on connect and after every change.
type streamMessage struct {
	Type    string         `json:"type"`
	Summary models.Summary `json:"summary"`
}

func respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func (h *handlers) health(c *gin.Context) {
	status, message, code := "ok", "API is running", http.StatusOK
	if h.store != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			status, message, code = "degraded", "store unavailable: "+err.Error(), http.StatusServiceUnavailable
		}
	}
	c.JSON(code, gin.H{
		"status":    status,
		"message":   message,
		"timestamp": h.svc.Calendar().Now().Format(time.RFC3339),
	})
}

func (h *handlers) appendFeeding(c *gin.Context) {
	res, err := h.svc.Append(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *handlers) today(c *gin.Context) {
	res, err := h.svc.Today(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) resetToday(c *gin.Context) {
	res, err := h.svc.ResetToday(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) weekly(c *gin.Context) {
	res, err := h.svc.Weekly(c.Request.Context(), c.Query("start_date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) weeklyExport(c *gin.Context) {
	report, err := h.svc.Weekly(c.Request.Context(), c.Query("start_date"))
	if err != nil {
		respondError(c, err)
		return
	}

	data, err := export.Render(report, export.Options{
		Limit:       h.svc.Options().DailyLimit,
		GeneratedAt: h.svc.Calendar().Now(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	name := constants.AppName + "-week.pdf"
	if len(report.Days) > 0 {
		name = fmt.Sprintf("%s-week-%s.pdf", constants.AppName, report.Days[0].Date)
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, "application/pdf", data)
}

func (h *handlers) timeline(c *gin.Context) {
	res, err := h.svc.Timeline(c.Request.Context(), c.Query("start_date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) editFeeding(c *gin.Context) {
	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Invalid("api.editFeeding", "new_feeding_time is required: %v", err))
		return
	}

	res, err := h.svc.Edit(c.Request.Context(), c.Param("id"), req.NewFeedingTime)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) deleteFeeding(c *gin.Context) {
	res, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the error response
		return
	}
	cl := &wsClient{conn: conn}
	h.hub.Register(cl)

	if summary, err := h.svc.Today(c.Request.Context()); err == nil {
		h.hub.sendTo(cl, streamMessage{Type: "snapshot", Summary: summary})
	}

	go func() {
		t := time.NewTicker(constants.StreamPingInterval)
		defer t.Stop()
		for range t.C {
			if err := cl.write(websocket.PingMessage, nil); err != nil {
				h.hub.Unregister(cl)
				return
			}
		}
	}()

	// read loop ends on client close/error
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.hub.Unregister(cl)
			return
		}
	}
}

// publish pushes the refreshed summary after a mutation.
func (h *handlers) publish(e feeding.Event) {
	if h.hub.Count() == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		summary, err := h.svc.Today(ctx)
		if err != nil {
			logger.Warn("Failed to build stream summary", "error", err)
			return
		}
		h.hub.Broadcast(streamMessage{Type: string(e.Type), Summary: summary})
	}()
}
