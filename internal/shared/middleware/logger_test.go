package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func TestLogger_EmitsRouteTemplateAndUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLog(t)
	userID := uuid.New()

	r := gin.New()
	r.Use(Logger())
	r.GET("/bookings/:id", func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bookings/"+uuid.NewString(), nil))

	line := buf.String()
	assert.Contains(t, line, `"route":"/bookings/:id"`)
	assert.Contains(t, line, `"user_id":"`+userID.String()+`"`)
	assert.Contains(t, line, `"level":"info"`)
}

func TestLogger_LevelsFollowStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		status int
		level  string
	}{
		{"server error", http.StatusBadGateway, "error"},
		{"client error", http.StatusConflict, "warn"},
		{"success", http.StatusCreated, "info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLog(t)

			r := gin.New()
			r.Use(Logger())
			r.GET("/bookings", func(c *gin.Context) { c.Status(tt.status) })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bookings", nil))

			assert.Contains(t, buf.String(), `"level":"`+tt.level+`"`)
		})
	}
}
