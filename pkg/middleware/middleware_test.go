package middleware

import (
	"bitwise74/devdoc-api/internal/apperr"
	"bitwise74/devdoc-api/internal/model"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAuth map[string]error

func (f fakeAuth) Authenticate(_ context.Context, token string) (*model.User, error) {
	if err, ok := f[token]; ok {
		return nil, err
	}

	return &model.User{ID: "u-" + token}, nil
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(NewRequestIDMiddleware())
	r.Any("/", append(handlers, func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("userID"))
	})...)

	return r
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(NewRequestIDMiddleware())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.MustGet("requestID").(string))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Len(t, w.Body.String(), 10)
	assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))
}

func TestJWTMiddleware(t *testing.T) {
	auth := fakeAuth{
		"expired": apperr.Unauthorized("Authorization token expired"),
		"broken":  errors.New("db down"),
	}
	r := newEngine(NewJWTMiddleware(auth))

	cases := []struct {
		name   string
		header string
		status int
		error  string
	}{
		{"valid", "Bearer good", http.StatusOK, ""},
		{"lowercase scheme", "bearer good", http.StatusOK, ""},
		{"missing", "", http.StatusUnauthorized, "Authorization token missing"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "Authorization token missing"},
		{"empty token", "Bearer  ", http.StatusUnauthorized, "Authorization token missing"},
		{"rejected", "Bearer expired", http.StatusUnauthorized, "Authorization token expired"},
		{"unexpected", "Bearer broken", http.StatusInternalServerError, "Internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, tc.status, w.Code)

			if tc.status == http.StatusOK {
				assert.Equal(t, "u-good", w.Body.String())
				return
			}

			body := decode(t, w)
			assert.Equal(t, tc.error, body["error"])
			assert.NotEmpty(t, body["requestID"])
		})
	}
}

func TestBodySizeLimiter(t *testing.T) {
	r := gin.New()
	r.Use(NewRequestIDMiddleware())
	r.POST("/", BodySizeLimiter(8), func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		if IsBodyTooLarge(err) {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}

		c.Status(http.StatusNoContent)
	})

	t.Run("within limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("12345678")))
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("declared too large", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("123456789")))

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Equal(t, "Request body size exceeds limit", decode(t, w)["error"])
	})

	t.Run("undeclared too large", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("123456789"))
		req.ContentLength = -1

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	l := NewRateLimiter(RateLimiterConfig{Requests: 3, Window: 3 * time.Minute})
	l.now = func() time.Time { return now }

	for range 3 {
		assert.True(t, l.Allow("1.1.1.1"))
	}
	assert.False(t, l.Allow("1.1.1.1"))
	assert.True(t, l.Allow("2.2.2.2"), "clients are limited separately")

	now = now.Add(time.Minute)
	assert.True(t, l.Allow("1.1.1.1"), "a token refills every window/requests")
	assert.False(t, l.Allow("1.1.1.1"))

	now = now.Add(10 * time.Minute)
	l.Cleanup()
	assert.Empty(t, l.visitors)

	t.Run("middleware", func(t *testing.T) {
		r := newEngine(NewRateLimiter(RateLimiterConfig{Requests: 1, Window: time.Hour}).Middleware())

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "Too many requests", decode(t, w)["error"])
	})
}

func TestTurnstile(t *testing.T) {
	var got map[string]string

	verify := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"success":`+map[bool]string{true: "true", false: "false"}[got["response"] == "ok"]+`}`)
	}))
	t.Cleanup(verify.Close)

	r := newEngine(NewTurnstileMiddleware(TurnstileConfig{
		Enabled:     true,
		SecretToken: "shh",
		VerifyURL:   verify.URL,
	}))

	send := func(token string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		if token != "" {
			req.Header.Set("TurnstileToken", token)
		}

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusBadRequest, send(""))
	assert.Equal(t, http.StatusOK, send("ok"))
	assert.Equal(t, "shh", got["secret"])
	assert.Equal(t, http.StatusUnauthorized, send("forged"))

	t.Run("disabled", func(t *testing.T) {
		r := newEngine(NewTurnstileMiddleware(TurnstileConfig{}))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
