package model

// StatsSummary aggregates all links of one owner.
type StatsSummary struct {
	TotalLinks    int64   `json:"total_links"`
	TotalClicks   int64   `json:"total_clicks"`
	ActiveLinks   int64   `json:"active_links"`
	AverageClicks float64 `json:"average_clicks"`
}

// DailyClicks is the number of clicks on one UTC calendar day.
type DailyClicks struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int64  `json:"count"`
}
