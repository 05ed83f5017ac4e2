package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skyjet/reconciliation-service/internal/models"
	"gorm.io/gorm"
)

type EventReader interface {
	GetByID(ctx context.Context, id string) (*models.InboundEvent, error)
}

type DeadLetterReader interface {
	FirstBy(ctx context.Context, key string, value interface{}) (*models.DeadLetterRecord, error)
}

// EventHandler is the operator read surface over stored events and the dead
// letter. Raw payloads stay out of the JSON responses.
type EventHandler struct {
	Events      EventReader
	DeadLetters DeadLetterReader
}

func NewEventHandler(events EventReader, deadLetters DeadLetterReader) *EventHandler {
	return &EventHandler{Events: events, DeadLetters: deadLetters}
}

func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.Events.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) GetDeadLetter(c *gin.Context) {
	record, err := h.DeadLetters.FirstBy(c.Request.Context(), "event_id = ?", c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no dead-letter record for event"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, record)
}
