package dto

import "time"

// FormatXLSX asks a report endpoint for the workbook instead of JSON.
const FormatXLSX = "xlsx"

// DayReportRequest selects the day journal.
type DayReportRequest struct {
	Date   string `form:"date" binding:"required"`
	Format string `form:"format" binding:"omitempty,oneof=json xlsx"`
}

// MonthReportRequest selects a month.
type MonthReportRequest struct {
	Year   int    `form:"year" binding:"required,min=2000,max=2100"`
	Month  int    `form:"month" binding:"required,min=1,max=12"`
	Format string `form:"format" binding:"omitempty,oneof=json xlsx"`
}

// YearMonth returns the selected month.
func (r MonthReportRequest) YearMonth() (int, time.Month) {
	return r.Year, time.Month(r.Month)
}

// YearReportRequest selects a year.
type YearReportRequest struct {
	Year   int    `form:"year" binding:"required,min=2000,max=2100"`
	Format string `form:"format" binding:"omitempty,oneof=json xlsx"`
}

// DailyBusinessRequest selects the day of the daily business report.
type DailyBusinessRequest struct {
	BookingDate string `form:"bookingDate" binding:"required"`
	Format      string `form:"format" binding:"omitempty,oneof=json xlsx"`
}
