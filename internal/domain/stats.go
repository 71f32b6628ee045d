package domain

import "time"

// TypeCount is the number of tickets carrying one type label.
type TypeCount struct {
	Type  string
	Count int
}

// PriorityCount is the number of tickets at one priority level.
type PriorityCount struct {
	Label string
	Count int
}

// DayCount is the number of tickets created on one calendar day.
type DayCount struct {
	Day   string
	Count int
}

// TicketStats summarises a ticket collection for the dashboard.
type TicketStats struct {
	Total         int
	Open          int
	ByStatus      map[StatusLabel]int
	ByType        []TypeCount
	ByPriority    []PriorityCount
	AvgResolution time.Duration
	Timeline      []DayCount
}
