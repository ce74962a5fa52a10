package request

// ReportFilterRequest represents report query parameters. Dates are
// YYYY-MM-DD; the default period is the last 30 days.
type ReportFilterRequest struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Limit     int    `form:"limit"` // top-products only
}
