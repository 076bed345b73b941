// Package middleware provides HTTP middleware components.
package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"venuedesk/internal/core/apperror"
	appctx "venuedesk/internal/core/context"
	"venuedesk/internal/core/id"
	"venuedesk/pkg/logger"
)

// Recovery turns a handler panic into an INTERNAL_ERROR for ErrorHandler.
// The stack goes to the log only.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			ctx := c.Request.Context()
			fields := []any{
				"panic", rec,
				"method", c.Request.Method,
				"route", c.FullPath(),
				"stack", string(debug.Stack()),
			}
			if staffID := appctx.GetStaffID(ctx); !id.IsNil(staffID) {
				fields = append(fields, "staff_id", staffID.String())
			}
			logger.Error(ctx, "panic recovered", fields...)

			_ = c.Error(
				apperror.NewInternal(fmt.Errorf("panic: %v", rec)).
					WithDetail("request_id", appctx.GetRequestID(ctx)),
			)
			c.Abort()
		}()
		c.Next()
	}
}
