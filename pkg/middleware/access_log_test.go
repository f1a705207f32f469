package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestAccessLog_RecordsRequest(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	r := gin.New()
	r.Use(RequestID(), AccessLog(zap.New(core)))
	r.GET("/users", func(c *gin.Context) { c.JSON(http.StatusOK, []string{}) })
	r.DELETE("/users/:id", func(c *gin.Context) { c.JSON(http.StatusNotFound, gin.H{"message": "user not found"}) })

	req := httptest.NewRequest("GET", "/users", nil)
	req.Header.Set(RequestIDHeader, "rid-1")
	r.ServeHTTP(httptest.NewRecorder(), req)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("DELETE", "/users/x", nil))

	entries := logs.All()
	require.Len(t, entries, 2)

	first := entries[0]
	require.Equal(t, zapcore.InfoLevel, first.Level)
	fields := first.ContextMap()
	require.Equal(t, "GET", fields["method"])
	require.Equal(t, "/users", fields["path"])
	require.EqualValues(t, 200, fields["status"])
	require.Equal(t, "rid-1", fields["request_id"])

	second := entries[1]
	require.Equal(t, zapcore.WarnLevel, second.Level)
	require.EqualValues(t, 404, second.ContextMap()["status"])
}
