package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS lets the front office call the API from origins. Workbook downloads
// need the file name and archive key headers exposed.
func CORS(origins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "Authorization",
			HeaderIdempotencyKey, HeaderRequestID,
		},
		ExposeHeaders: []string{
			"Content-Length", "Content-Disposition",
			HeaderRequestID, HeaderTraceID,
			"X-File-Name", "X-Archive-Key",
		},
		MaxAge: 12 * time.Hour,
	})
}
