package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"haulgo/internal/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stubRateLimiter struct {
	allowed bool
	err     error
	lastKey string
}

func (s *stubRateLimiter) CheckRateLimit(ctx context.Context, key string, limit int64, window time.Duration) (*services.RateLimitResult, error) {
	s.lastKey = key
	if s.err != nil {
		return nil, s.err
	}
	return &services.RateLimitResult{Allowed: s.allowed, RetryAfter: window}, nil
}

func rateLimitedRouter(limiter *stubRateLimiter, userID *primitive.ObjectID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/pay", func(c *gin.Context) {
		if userID != nil {
			c.Set("user_id", *userID)
		}
	}, UserRateLimitMiddleware(limiter, 5, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestUserRateLimitMiddlewareAllows(t *testing.T) {
	limiter := &stubRateLimiter{allowed: true}
	userID := primitive.NewObjectID()
	router := rateLimitedRouter(limiter, &userID)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/pay", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if limiter.lastKey != userID.Hex() {
		t.Errorf("limited by key %q, want the authed user", limiter.lastKey)
	}
}

func TestUserRateLimitMiddlewareBlocks(t *testing.T) {
	limiter := &stubRateLimiter{allowed: false}
	userID := primitive.NewObjectID()
	router := rateLimitedRouter(limiter, &userID)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/pay", nil))

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q, want 60", w.Header().Get("Retry-After"))
	}
}

func TestUserRateLimitMiddlewareFailsOpen(t *testing.T) {
	limiter := &stubRateLimiter{err: errors.New("connection refused")}
	router := rateLimitedRouter(limiter, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/pay", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 when the counter is unreachable", w.Code)
	}
}
