package viewmodel

import (
	"math"
	"math/big"
	"reflect"
	"testing"
	"time"

	"github.com/vex-labs/ticket-view/internal/domain"
)

func TestComputeStats(t *testing.T) {
	day := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	tickets := []domain.TicketView{
		{ID: 1, StatusLabel: domain.StatusOpen, TypeLabel: "Bug", Priority: 1, CreatedAt: day.Add(24 * time.Hour)},
		{ID: 2, StatusLabel: domain.StatusResolved, TypeLabel: "Feature", Priority: 2, CreatedAt: day, ResolvedAt: day.Add(2 * time.Hour)},
		{ID: 3, StatusLabel: domain.StatusResolved, TypeLabel: "Bug", Priority: 2, CreatedAt: day.Add(time.Hour), ResolvedAt: day.Add(5 * time.Hour)},
		{ID: 4, StatusLabel: domain.StatusOpen, TypeLabel: "Bug", Priority: 7},
		{ID: 0, StatusLabel: domain.StatusOpen, TypeLabel: "Bug", Diagnostic: "boom"},
	}

	stats := ComputeStats(tickets, Options{})

	if stats.Total != 4 || stats.Open != 2 {
		t.Fatalf("unexpected totals %d/%d", stats.Total, stats.Open)
	}
	wantStatus := map[domain.StatusLabel]int{
		domain.StatusOpen: 2, domain.StatusOnGoing: 0, domain.StatusOnHold: 0,
		domain.StatusResolved: 2, domain.StatusClosed: 0,
	}
	if !reflect.DeepEqual(stats.ByStatus, wantStatus) {
		t.Fatalf("unexpected status counts %v", stats.ByStatus)
	}
	wantTypes := []domain.TypeCount{{Type: "Bug", Count: 3}, {Type: "Feature", Count: 1}}
	if !reflect.DeepEqual(stats.ByType, wantTypes) {
		t.Fatalf("unexpected type counts %v", stats.ByType)
	}
	wantPriority := []domain.PriorityCount{{Label: "P1", Count: 1}, {Label: "P2", Count: 2}, {Label: "P3"}, {Label: "P4"}}
	if !reflect.DeepEqual(stats.ByPriority, wantPriority) {
		t.Fatalf("unexpected priority counts %v", stats.ByPriority)
	}
	if stats.AvgResolution != 3*time.Hour {
		t.Fatalf("unexpected average resolution %v", stats.AvgResolution)
	}
	wantTimeline := []domain.DayCount{{Day: "Mar 1, 2024", Count: 2}, {Day: "Mar 2, 2024", Count: 1}}
	if !reflect.DeepEqual(stats.Timeline, wantTimeline) {
		t.Fatalf("unexpected timeline %v", stats.Timeline)
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil, Options{})
	if stats.Total != 0 || stats.AvgResolution != 0 || len(stats.Timeline) != 0 || len(stats.ByType) != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if len(stats.ByStatus) != len(domain.StatusLabels) {
		t.Fatalf("expected every status seeded, got %v", stats.ByStatus)
	}
}

func TestComputeStatsAverageResolutionDoesNotWrap(t *testing.T) {
	epoch := time.Unix(0, 0).UTC()
	farFuture := time.Unix(9_000_000_000_000_000, 0).UTC()
	tickets := []domain.TicketView{
		{ID: 1, StatusLabel: domain.StatusResolved, CreatedAt: epoch, ResolvedAt: farFuture},
		{ID: 2, StatusLabel: domain.StatusResolved, CreatedAt: epoch, ResolvedAt: farFuture},
		{ID: 3, StatusLabel: domain.StatusResolved, CreatedAt: epoch, ResolvedAt: epoch.Add(time.Hour)},
	}

	stats := ComputeStats(tickets, Options{})

	total := new(big.Int).Mul(big.NewInt(math.MaxInt64), big.NewInt(2))
	total.Add(total, big.NewInt(int64(time.Hour)))
	want := time.Duration(new(big.Int).Quo(total, big.NewInt(3)).Int64())
	if stats.AvgResolution != want {
		t.Fatalf("expected average %v, got %v", want, stats.AvgResolution)
	}
	if stats.AvgResolution < time.Hour {
		t.Fatalf("average wrapped to %v", stats.AvgResolution)
	}
}

func TestAverageDurationClamps(t *testing.T) {
	total := new(big.Int).Mul(big.NewInt(math.MaxInt64), big.NewInt(4))
	if got := averageDuration(total, 2); got != time.Duration(math.MaxInt64) {
		t.Fatalf("expected clamp, got %v", got)
	}
	if got := averageDuration(big.NewInt(int64(3*time.Hour)), 3); got != time.Hour {
		t.Fatalf("expected one hour, got %v", got)
	}
}
