package dto

import (
	"github.com/vex-labs/ticket-view/internal/domain"
)

// CountEntry is one bucket of a histogram.
type CountEntry struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// StatsResponse is the dashboard summary.
type StatsResponse struct {
	Total                int          `json:"total"`
	Open                 int          `json:"open"`
	ByStatus             []CountEntry `json:"by_status"`
	ByType               []CountEntry `json:"by_type"`
	ByPriority           []CountEntry `json:"by_priority"`
	AvgResolutionSeconds float64      `json:"avg_resolution_seconds"`
	Timeline             []CountEntry `json:"timeline"`
}

// NewStatsResponse maps computed stats. Statuses are listed in display order.
func NewStatsResponse(s domain.TicketStats) StatsResponse {
	resp := StatsResponse{
		Total:                s.Total,
		Open:                 s.Open,
		ByStatus:             make([]CountEntry, 0, len(domain.StatusLabels)),
		ByType:               make([]CountEntry, 0, len(s.ByType)),
		ByPriority:           make([]CountEntry, 0, len(s.ByPriority)),
		AvgResolutionSeconds: s.AvgResolution.Seconds(),
		Timeline:             make([]CountEntry, 0, len(s.Timeline)),
	}
	for _, label := range domain.StatusLabels {
		resp.ByStatus = append(resp.ByStatus, CountEntry{Label: string(label), Count: s.ByStatus[label]})
	}
	for _, t := range s.ByType {
		resp.ByType = append(resp.ByType, CountEntry{Label: t.Type, Count: t.Count})
	}
	for _, p := range s.ByPriority {
		resp.ByPriority = append(resp.ByPriority, CountEntry{Label: p.Label, Count: p.Count})
	}
	for _, d := range s.Timeline {
		resp.Timeline = append(resp.Timeline, CountEntry{Label: d.Day, Count: d.Count})
	}
	return resp
}
