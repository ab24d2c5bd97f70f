package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"hotelbot/internal/model"
	"hotelbot/internal/service"

	"github.com/gin-gonic/gin"
)

// ChatResponder answers chat messages
type ChatResponder interface {
	Handle(ctx context.Context, message string) *model.ChatResponse
	HandleStream(ctx context.Context, message string, callback service.SearchEventCallback) *model.ChatResponse
}

// ChatHandler handles chat-related HTTP requests
type ChatHandler struct {
	chat ChatResponder
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat ChatResponder) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// Chat handles POST /api/chat. Pipeline failures are 200 replies; only a malformed body is a 400.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.chat.Handle(c.Request.Context(), req.Message))
}

// ChatStream handles POST /api/chat/stream - SSE streaming chat
func (h *ChatHandler) ChatStream(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	c.Header("Content-Type", "text/event-stream; charset=utf-8")
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Streaming not supported"})
		return
	}
	c.Status(http.StatusOK)

	sendSSE(c, "start", map[string]any{"message": req.Message})
	flusher.Flush()

	response := h.chat.HandleStream(c.Request.Context(), req.Message, func(event string, data any) error {
		if err := c.Request.Context().Err(); err != nil {
			return err
		}
		sendSSE(c, event, data)
		flusher.Flush()
		return nil
	})

	sendSSE(c, "result", response)
	flusher.Flush()

	sendSSE(c, "done", nil)
	flusher.Flush()
}

// sendSSE sends a Server-Sent Event
func sendSSE(c *gin.Context, event string, data any) {
	if data == nil {
		fmt.Fprintf(c.Writer, "event: %s\ndata: {}\n\n", event)
		return
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		fmt.Fprintf(c.Writer, "event: error\ndata: {\"error\": \"JSON marshal failed\"}\n\n")
		return
	}
	fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, jsonData)
}
