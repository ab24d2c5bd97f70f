package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hotelbot/internal/config"
	"hotelbot/internal/logger"
	"hotelbot/internal/model"
	"hotelbot/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubChat struct{}

func (stubChat) Handle(_ context.Context, _ string) *model.ChatResponse {
	return &model.ChatResponse{Reply: service.ReplyEmptyMessage}
}

func (stubChat) HandleStream(_ context.Context, _ string, _ service.SearchEventCallback) *model.ChatResponse {
	return &model.ChatResponse{Reply: service.ReplyEmptyMessage}
}

func testRouter(cfg *config.Config) *gin.Engine {
	return newRouter(cfg, routerDeps{chat: stubChat{}, log: logger.Nop()})
}

func TestRouter_Health(t *testing.T) {
	r := testRouter(&config.Config{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
	assert.Contains(t, w.Body.String(), `"search_log":false`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_Chat(t *testing.T) {
	r := testRouter(&config.Config{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":""}`)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), service.ReplyEmptyMessage)
}

func TestRouter_FeedbackNeedsDatabase(t *testing.T) {
	r := testRouter(&config.Config{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/feedback", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "API endpoint not found")
}

func TestRouter_ChatRateLimit(t *testing.T) {
	cfg := &config.Config{}
	cfg.RateLimit = config.RateLimitConfig{Requests: 1, Interval: time.Minute}
	r := testRouter(cfg)

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hi"}`)))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/version", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSplitOrigins(t *testing.T) {
	assert.Equal(t, []string{"*"}, splitOrigins(""))
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, splitOrigins(" https://a.test, ,https://b.test "))
}
