package handler

import (
	"context"
	"errors"
	"net/http"

	"hotelbot/internal/model"
	"hotelbot/internal/repository"

	"github.com/gin-gonic/gin"
)

// FeedbackStore records user actions against logged searches
type FeedbackStore interface {
	LogFeedback(ctx context.Context, searchID, hotelID, action string) error
}

var validActions = map[string]bool{
	"click": true,
	"book":  true,
}

// FeedbackHandler handles feedback-related HTTP requests
type FeedbackHandler struct {
	store FeedbackStore
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(store FeedbackStore) *FeedbackHandler {
	return &FeedbackHandler{store: store}
}

// Submit handles POST /api/feedback
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req model.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if !validActions[req.Action] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action. Must be one of: click, book"})
		return
	}

	err := h.store.LogFeedback(c.Request.Context(), req.SearchID, req.HotelID, req.Action)
	if errors.Is(err, repository.ErrSearchNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown search_id"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log feedback"})
		return
	}

	c.JSON(http.StatusOK, model.FeedbackResponse{
		Success: true,
		Message: "Feedback logged successfully",
	})
}
