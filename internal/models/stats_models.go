package models

// StatusCounts breaks a set of orders down by lifecycle state.
type StatusCounts struct {
	Pending    int `json:"pending"`
	Accepted   int `json:"accepted"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Cancelled  int `json:"cancelled"`
}

// StatsOverview is the whole-collection snapshot shown on the admin
// dashboard. The *Today counters are calendar-day matches on the
// corresponding timestamps.
type StatsOverview struct {
	Total          int          `json:"total"`
	ByStatus       StatusCounts `json:"by_status"`
	CreatedToday   int          `json:"created_today"`
	AcceptedToday  int          `json:"accepted_today"`
	CompletedToday int          `json:"completed_today"`
}

// DateStats is the overview restricted to a single calendar day: ByStatus
// covers orders created that day, while Created/Accepted/Completed count
// timestamp matches across the whole collection.
type DateStats struct {
	Date      string       `json:"date"`
	Total     int          `json:"total"`
	ByStatus  StatusCounts `json:"by_status"`
	Created   int          `json:"created"`
	Accepted  int          `json:"accepted"`
	Completed int          `json:"completed"`
}

// RangeSummary totals a date range.
type RangeSummary struct {
	Created   int `json:"created"`
	Accepted  int `json:"accepted"`
	Completed int `json:"completed"`
}

// RangeStats is a per-day breakdown across an inclusive date range.
type RangeStats struct {
	Start   string       `json:"start"`
	End     string       `json:"end"`
	Days    []DateStats  `json:"days"`
	Summary RangeSummary `json:"summary"`
}

// ChartPoint is one day of the trailing-days chart. A day with no activity
// still produces a point with zero counts.
type ChartPoint struct {
	Date        string `json:"date"`
	TotalOrders int    `json:"total_orders"`
	Completed   int    `json:"completed"`
	Pending     int    `json:"pending"`
}
