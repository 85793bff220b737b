package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestNilLimiterAllows(t *testing.T) {
	var l *Limiter
	ok, err := l.Allow(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = New(nil, 1, time.Second).Allow(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestMiddlewareFailsOpenWhenRedisIsDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.POST("/send", New(client, 1, time.Minute).Middleware(nil), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/send", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestWithPrefixKeepsBudgetSeparate(t *testing.T) {
	var none *Limiter
	require.Nil(t, none.WithPrefix("rl:writes:"))

	base := New(nil, 3, time.Minute)
	writes := base.WithPrefix("rl:writes:")
	require.Equal(t, "rl:messages:", base.prefix)
	require.Equal(t, "rl:writes:", writes.prefix)
	require.Equal(t, base.limit, writes.limit)
	require.Equal(t, base.window, writes.window)
}
