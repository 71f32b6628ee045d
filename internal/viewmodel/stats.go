package viewmodel

import (
	"math"
	"math/big"
	"sort"
	"time"

	"github.com/vex-labs/ticket-view/internal/domain"
)

// TimelineLayout labels the days of the creation timeline.
const TimelineLayout = "Jan 2, 2006"

var priorityLabels = []string{"P1", "P2", "P3", "P4"}

// ComputeStats summarises the valid tickets of a sanitized collection.
// Priorities outside 1-4 are counted in the total but not in the histogram.
func ComputeStats(tickets []domain.TicketView, opts Options) domain.TicketStats {
	opts = opts.withDefaults()
	stats := domain.TicketStats{
		ByStatus:   make(map[domain.StatusLabel]int, len(domain.StatusLabels)),
		ByType:     []domain.TypeCount{},
		ByPriority: make([]domain.PriorityCount, len(priorityLabels)),
		Timeline:   []domain.DayCount{},
	}
	for _, label := range domain.StatusLabels {
		stats.ByStatus[label] = 0
	}
	for i, label := range priorityLabels {
		stats.ByPriority[i] = domain.PriorityCount{Label: label}
	}

	typeIndex := map[string]int{}
	days := map[time.Time]int{}
	resolvedTotal := new(big.Int)
	var resolvedCount int64

	for _, ticket := range tickets {
		if !ticket.Valid() {
			continue
		}
		stats.Total++
		stats.ByStatus[ticket.StatusLabel]++
		if ticket.StatusLabel == domain.StatusOpen {
			stats.Open++
		}

		if i, ok := typeIndex[ticket.TypeLabel]; ok {
			stats.ByType[i].Count++
		} else {
			typeIndex[ticket.TypeLabel] = len(stats.ByType)
			stats.ByType = append(stats.ByType, domain.TypeCount{Type: ticket.TypeLabel, Count: 1})
		}

		if ticket.Priority >= 1 && ticket.Priority <= int64(len(priorityLabels)) {
			stats.ByPriority[ticket.Priority-1].Count++
		}

		if !ticket.CreatedAt.IsZero() {
			local := ticket.CreatedAt.In(opts.Location)
			day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, opts.Location)
			days[day]++
			if !ticket.ResolvedAt.IsZero() && !ticket.ResolvedAt.Before(ticket.CreatedAt) {
				resolvedTotal.Add(resolvedTotal, big.NewInt(int64(ticket.ResolvedAt.Sub(ticket.CreatedAt))))
				resolvedCount++
			}
		}
	}

	if resolvedCount > 0 {
		stats.AvgResolution = averageDuration(resolvedTotal, resolvedCount)
	}

	ordered := make([]time.Time, 0, len(days))
	for day := range days {
		ordered = append(ordered, day)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Before(ordered[j]) })
	for _, day := range ordered {
		stats.Timeline = append(stats.Timeline, domain.DayCount{Day: day.Format(TimelineLayout), Count: days[day]})
	}
	return stats
}

// averageDuration divides a nanosecond total that may exceed int64 and
// clamps the quotient to the largest Duration.
func averageDuration(total *big.Int, count int64) time.Duration {
	avg := new(big.Int).Quo(total, big.NewInt(count))
	if !avg.IsInt64() {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(avg.Int64())
}
