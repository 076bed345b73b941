package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	appctx "venuedesk/internal/core/context"
	"venuedesk/internal/core/id"
	"venuedesk/internal/infrastructure/http/v1/middleware"
)

var (
	jst         = time.FixedZone("JST", 9*60*60)
	testStaffID = id.MustParse("0190a3b2-0000-7000-8000-000000000001")
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestRouter wires the error middleware and an authenticated staff member.
func newTestRouter() *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.Use(func(c *gin.Context) {
		ctx := appctx.WithStaff(c.Request.Context(), &appctx.StaffContext{StaffID: testStaffID})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})
	return r
}

func newTestBase() *BaseHandler {
	base := NewBaseHandler(jst)
	base.now = func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, jst) }
	return base
}

func doJSON(t *testing.T, r http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// errorCode decodes the code field rendered by middleware.ErrorHandler.
func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Code
}
