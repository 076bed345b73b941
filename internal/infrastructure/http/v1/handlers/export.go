package handlers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"venuedesk/internal/infrastructure/export/xlsx"
	"venuedesk/internal/infrastructure/objectstore"
	"venuedesk/pkg/logger"
)

const (
	HeaderFileName   = "X-File-Name"
	HeaderArchiveKey = "X-Archive-Key"
)

// WorkbookSender streams rendered workbooks and archives a copy.
type WorkbookSender struct {
	archiver objectstore.Archiver
}

// NewWorkbookSender creates a sender. A nil archiver disables archiving.
func NewWorkbookSender(archiver objectstore.Archiver) *WorkbookSender {
	if archiver == nil {
		archiver = objectstore.Noop{}
	}
	return &WorkbookSender{archiver: archiver}
}

// Send writes wb as an attachment. Archiving is best-effort: a failed
// upload is logged and the download still succeeds.
func (s *WorkbookSender) Send(c *gin.Context, h *BaseHandler, wb *xlsx.Workbook, kind, label string) {
	defer func() { _ = wb.Close() }()
	ctx := c.Request.Context()

	data, err := wb.Bytes()
	if err != nil {
		h.Error(c, err)
		return
	}

	location, err := s.archiver.Archive(ctx, objectstore.ReportKey(kind, label, h.Now()), data, objectstore.XLSXContentType)
	if err != nil {
		logger.Warn(ctx, "report archive failed", "kind", kind, "error", err)
	} else if location != "" {
		c.Header(HeaderArchiveKey, location)
	}

	escaped := url.PathEscape(wb.FileName)
	c.Header(HeaderFileName, escaped)
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+escaped)
	c.Data(http.StatusOK, objectstore.XLSXContentType, data)
}
