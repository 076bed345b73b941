package middleware

import (
	"github.com/gin-gonic/gin"

	appctx "venuedesk/internal/core/context"
	"venuedesk/pkg/logger"
)

// StaffContext binds a request logger carrying the staff id to the request
// context, so that domain logs name the acting staff member.
//
// Must run after Auth.
func StaffContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if staff := appctx.GetStaff(ctx); staff != nil {
			log := logger.FromContext(ctx).With("staff_id", staff.StaffID.String())
			c.Request = c.Request.WithContext(logger.WithLogger(ctx, log))
		}
		c.Next()
	}
}
