package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return zap.New(core), recorded
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("logs completed request", func(t *testing.T) {
		log, recorded := newObservedLogger()
		engine := gin.New()
		engine.Use(func(c *gin.Context) { c.Set("request_id", "req-1") })
		engine.Use(GinMiddleware(log))
		engine.GET("/things", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/things?limit=5", nil)
		engine.ServeHTTP(w, req)

		entries := recorded.All()
		require.Len(t, entries, 1)
		entry := entries[0]
		assert.Equal(t, zapcore.InfoLevel, entry.Level)
		assert.Equal(t, "http request", entry.Message)

		fields := entry.ContextMap()
		assert.Equal(t, "req-1", fields["request_id"])
		assert.Equal(t, "GET", fields["method"])
		assert.Equal(t, "/things", fields["path"])
		assert.Equal(t, int64(http.StatusOK), fields["status"])
		assert.Equal(t, "limit=5", fields["query"])
	})

	t.Run("propagates request id into request context", func(t *testing.T) {
		log, _ := newObservedLogger()
		engine := gin.New()
		engine.Use(func(c *gin.Context) { c.Set("request_id", "req-ctx") })
		engine.Use(GinMiddleware(log))

		var seen string
		engine.GET("/", func(c *gin.Context) {
			seen = GetRequestID(c.Request.Context())
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/", nil)
		engine.ServeHTTP(w, req)

		assert.Equal(t, "req-ctx", seen)
	})

	t.Run("server errors log at error level", func(t *testing.T) {
		log, recorded := newObservedLogger()
		engine := gin.New()
		engine.Use(GinMiddleware(log))
		engine.GET("/", func(c *gin.Context) {
			c.Status(http.StatusInternalServerError)
		})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/", nil)
		engine.ServeHTTP(w, req)

		entries := recorded.All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	})

	t.Run("client errors log at warn level", func(t *testing.T) {
		log, recorded := newObservedLogger()
		engine := gin.New()
		engine.Use(GinMiddleware(log))
		engine.GET("/", func(c *gin.Context) {
			c.Status(http.StatusNotFound)
		})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/", nil)
		engine.ServeHTTP(w, req)

		entries := recorded.All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	})

	t.Run("successful probes are quiet", func(t *testing.T) {
		log, recorded := newObservedLogger()
		engine := gin.New()
		engine.Use(GinMiddleware(log))
		engine.GET("/api/v1/system/ping", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/system/ping", nil)
		engine.ServeHTTP(w, req)

		assert.Empty(t, recorded.All())
	})

	t.Run("failing probes are logged", func(t *testing.T) {
		log, recorded := newObservedLogger()
		engine := gin.New()
		engine.Use(GinMiddleware(log))
		engine.GET("/api/v1/system/health", func(c *gin.Context) {
			c.Status(http.StatusServiceUnavailable)
		})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/system/health", nil)
		engine.ServeHTTP(w, req)

		require.Len(t, recorded.All(), 1)
	})
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	log, recorded := newObservedLogger()
	engine := gin.New()
	engine.Use(Recovery(log))
	engine.GET("/boom", func(c *gin.Context) {
		panic("kaboom")
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/boom", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	entries := recorded.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "panic recovered", entries[0].Message)
	assert.Equal(t, "kaboom", entries[0].ContextMap()["error"])
}

func TestGetGinLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("returns stored logger", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		log := zap.NewNop()
		c.Set("logger", log)

		assert.Same(t, log, GetGinLogger(c))
	})

	t.Run("falls back to nop", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())

		assert.NotNil(t, GetGinLogger(c))
	})
}
