package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"venuedesk/internal/domain/revenue"
	"venuedesk/internal/infrastructure/export/xlsx"
	"venuedesk/internal/infrastructure/http/v1/dto"
)

// RevenueService is implemented by revenue.Service.
type RevenueService interface {
	DayReport(ctx context.Context, day time.Time) (*revenue.PeriodReport, error)
	MonthlyReport(ctx context.Context, year int, month time.Month) (*revenue.PeriodReport, error)
	YearReport(ctx context.Context, year int) (*revenue.YearReport, error)
	DaysOfMonth(ctx context.Context, year int, month time.Month) (*revenue.DaysReport, error)
	ServiceSales(ctx context.Context, day time.Time) (*revenue.ServiceSalesReport, error)
}

// ReportHandler serves the revenue reports as JSON or as workbooks.
type ReportHandler struct {
	*BaseHandler
	service   RevenueService
	workbooks *WorkbookSender
}

// NewReportHandler creates a new report handler.
func NewReportHandler(base *BaseHandler, service RevenueService, workbooks *WorkbookSender) *ReportHandler {
	return &ReportHandler{BaseHandler: base, service: service, workbooks: workbooks}
}

// respond writes report as JSON, or renders and streams it when the
// workbook format was asked for.
func respond[R any](h *ReportHandler, c *gin.Context, format string, report R, render func(R) (*xlsx.Workbook, error), kind, label string) {
	if format != dto.FormatXLSX {
		c.JSON(http.StatusOK, report)
		return
	}
	wb, err := render(report)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.workbooks.Send(c, h.BaseHandler, wb, kind, label)
}

// DayRevenue handles GET /reports/day-revenue?date=yyyy-mm-dd
func (h *ReportHandler) DayRevenue(c *gin.Context) {
	var req dto.DayReportRequest
	if !h.BindQuery(c, &req) {
		return
	}
	day, err := dto.ParseDay(req.Date)
	if err != nil {
		h.Error(c, err)
		return
	}

	report, err := h.service.DayReport(c.Request.Context(), h.Midnight(day))
	if err != nil {
		h.Error(c, err)
		return
	}
	respond(h, c, req.Format, report, xlsx.DayRevenue, "day-revenue", day.Format("20060102"))
}

// MonthlyRevenue handles GET /reports/monthly-revenue?year=&month=
func (h *ReportHandler) MonthlyRevenue(c *gin.Context) {
	var req dto.MonthReportRequest
	if !h.BindQuery(c, &req) {
		return
	}
	year, month := req.YearMonth()

	report, err := h.service.MonthlyReport(c.Request.Context(), year, month)
	if err != nil {
		h.Error(c, err)
		return
	}
	respond(h, c, req.Format, report, xlsx.MonthlyRevenue, "monthly-revenue", fmt.Sprintf("%04d%02d", year, month))
}

// MonthRevenue handles GET /reports/month-revenue?year=. One column per
// month of the year.
func (h *ReportHandler) MonthRevenue(c *gin.Context) {
	var req dto.YearReportRequest
	if !h.BindQuery(c, &req) {
		return
	}

	report, err := h.service.YearReport(c.Request.Context(), req.Year)
	if err != nil {
		h.Error(c, err)
		return
	}
	respond(h, c, req.Format, report, xlsx.YearRevenue, "month-revenue", fmt.Sprintf("%04d", req.Year))
}

// RevenueBetweenMonths handles GET /reports/revenue-between-months?year=&month=.
// One column per day of the month.
func (h *ReportHandler) RevenueBetweenMonths(c *gin.Context) {
	var req dto.MonthReportRequest
	if !h.BindQuery(c, &req) {
		return
	}
	year, month := req.YearMonth()

	report, err := h.service.DaysOfMonth(c.Request.Context(), year, month)
	if err != nil {
		h.Error(c, err)
		return
	}
	respond(h, c, req.Format, report, xlsx.DaysRevenue, "revenue-between-months", fmt.Sprintf("%04d%02d", year, month))
}

// ServiceSales handles GET /reports/services?date=yyyy-mm-dd
func (h *ReportHandler) ServiceSales(c *gin.Context) {
	var req dto.DayReportRequest
	if !h.BindQuery(c, &req) {
		return
	}
	day, err := dto.ParseDay(req.Date)
	if err != nil {
		h.Error(c, err)
		return
	}

	report, err := h.service.ServiceSales(c.Request.Context(), h.Midnight(day))
	if err != nil {
		h.Error(c, err)
		return
	}
	respond(h, c, req.Format, report, xlsx.ServiceSales, "service-sales", day.Format("20060102"))
}
