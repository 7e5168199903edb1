package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/pet-account/pkg/configpkg"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger := newLogger(configpkg.Config{Environment: "production"}, &buf)
	require.Equal(t, zerolog.InfoLevel, logger.GetLevel())

	logger.Debug().Msg("hidden")
	logger.Info().Msg("shown")

	require.NotContains(t, buf.String(), "hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "shown", entry["message"])

	dev := newLogger(configpkg.Config{Environment: "development"}, &buf)
	require.Equal(t, zerolog.TraceLevel, dev.GetLevel())
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var entries []map[string]any

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))

		entries = append(entries, entry)
	}

	return entries
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer

	logger := zerolog.New(&buf)

	server := gin.New()
	server.Use(RequestLogger(logger))
	server.GET("/ping", func(c *gin.Context) {
		zerolog.Ctx(c.Request.Context()).Info().Msg("handler")
		c.Status(http.StatusNoContent)
	})
	server.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	t.Run("GeneratesRequestID", func(t *testing.T) {
		buf.Reset()

		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		recorder := httptest.NewRecorder()
		server.ServeHTTP(recorder, req)

		require.Equal(t, http.StatusNoContent, recorder.Code)

		requestID := recorder.Header().Get(RequestIDHeader)
		require.Len(t, requestID, 36)

		entries := decodeLines(t, &buf)
		require.Len(t, entries, 2)

		for _, entry := range entries {
			require.Equal(t, requestID, entry["request_id"])
		}

		require.Equal(t, "handler", entries[0]["message"])
		require.EqualValues(t, http.StatusNoContent, entries[1]["status_code"])
	})

	t.Run("KeepsRequestID", func(t *testing.T) {
		for _, id := range []string{"first", "second"} {
			buf.Reset()

			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			req.Header.Set(RequestIDHeader, id)

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			require.Equal(t, id, recorder.Header().Get(RequestIDHeader))

			// The request id field appears once per entry.
			for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
				require.Equal(t, 1, strings.Count(line, `"request_id"`))
			}
		}
	})

	t.Run("RecoversPanic", func(t *testing.T) {
		buf.Reset()

		req := httptest.NewRequest(http.MethodGet, "/panic", nil)
		recorder := httptest.NewRecorder()
		server.ServeHTTP(recorder, req)

		require.Equal(t, http.StatusInternalServerError, recorder.Code)

		entries := decodeLines(t, &buf)
		require.Len(t, entries, 2)
		require.Equal(t, "error", entries[1]["level"])
	})
}
