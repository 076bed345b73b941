package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venuedesk/internal/core/apperror"
	appctx "venuedesk/internal/core/context"
	"venuedesk/internal/core/id"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeValidator struct {
	staff *appctx.StaffContext
}

func (v fakeValidator) ValidateToken(token string) (*appctx.StaffContext, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return v.staff, nil
}

type errorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuth(t *testing.T) {
	staffID := id.New()
	r := gin.New()
	r.Use(ErrorHandler())
	r.Use(Auth(fakeValidator{staff: &appctx.StaffContext{StaffID: staffID, Name: "受付"}}))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ctx": appctx.GetStaffID(c.Request.Context()).String(),
			"gin": c.GetString("staff_id"),
		})
	})

	tests := []struct {
		name     string
		header   string
		wantCode int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"invalid token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer good", http.StatusOK},
		{"scheme is case insensitive", "bearer good", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode != http.StatusOK {
				assert.Equal(t, apperror.CodeUnauthorized, decodeError(t, w).Code)
				return
			}
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, staffID.String(), body["ctx"])
			assert.Equal(t, staffID.String(), body["gin"])
		})
	}
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "not found",
			err:        apperror.NewNotFound("room", "x"),
			wantStatus: http.StatusNotFound,
			wantCode:   apperror.CodeNotFound,
		},
		{
			name:       "wrapped app error keeps its status",
			err:        apperror.NewHoliday().WithCause(errors.New("closed")),
			wantStatus: http.StatusBadRequest,
			wantCode:   apperror.CodeHoliday,
		},
		{
			name:       "transition",
			err:        apperror.NewInvalidTransition(7, 1),
			wantStatus: http.StatusBadRequest,
			wantCode:   apperror.CodeInvalidTransition,
		},
		{
			name:       "serialization failure",
			err:        apperror.NewConcurrentModification("booking_detail", "x"),
			wantStatus: http.StatusConflict,
			wantCode:   apperror.CodeConcurrentModification,
		},
		{
			name:       "plain error is hidden",
			err:        errors.New("pq: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   apperror.CodeInternal,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(ErrorHandler())
			r.GET("/", func(c *gin.Context) {
				_ = c.Error(tt.err)
				c.Abort()
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.NotContains(t, w.Body.String(), "connection refused")
		})
	}
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.Use(Recovery())
	r.GET("/", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperror.CodeInternal, decodeError(t, w).Code)
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestTrace(t *testing.T) {
	r := gin.New()
	r.Use(Trace())
	r.GET("/", func(c *gin.Context) {
		tc := appctx.GetTrace(c.Request.Context())
		require.NotNil(t, tc)
		c.String(http.StatusOK, tc.RequestID)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-42", w.Body.String())
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://desk.example.jp"}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("preflight from allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
		req.Header.Set("Origin", "https://desk.example.jp")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "https://desk.example.jp", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unknown origin is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("exposes download headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "https://desk.example.jp")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "X-Archive-Key")
	})
}
