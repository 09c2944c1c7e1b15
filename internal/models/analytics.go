package models

import "time"

// Timeframe is an enumerated relative date range scoping analytics queries.
type Timeframe string

const (
	TimeframeDay     Timeframe = "24h"
	TimeframeWeek    Timeframe = "7d"
	TimeframeMonth   Timeframe = "30d"
	TimeframeQuarter Timeframe = "90d"
	TimeframeAll     Timeframe = "all"
)

// Valid reports whether the timeframe is one of the enumerated values.
func (tf Timeframe) Valid() bool {
	switch tf {
	case TimeframeDay, TimeframeWeek, TimeframeMonth, TimeframeQuarter, TimeframeAll:
		return true
	}
	return false
}

// Since returns the start of the timeframe's window relative to now.
// The zero time means the window is unbounded.
func (tf Timeframe) Since(now time.Time) time.Time {
	switch tf {
	case TimeframeDay:
		return now.Add(-24 * time.Hour)
	case TimeframeWeek:
		return now.AddDate(0, 0, -7)
	case TimeframeMonth:
		return now.AddDate(0, 0, -30)
	case TimeframeQuarter:
		return now.AddDate(0, 0, -90)
	}
	return time.Time{}
}

// BucketCount is a grouped count of clicks for a single bucket value,
// e.g. one date, country, referrer or device.
type BucketCount struct {
	Key   string
	Count int64
}

// AggregateReport summarizes recorded clicks over a timeframe.
type AggregateReport struct {
	Timeframe   Timeframe
	TotalClicks int64
	UniqueIPs   int64
	ByDate      []BucketCount
	ByCountry   []BucketCount
	ByReferrer  []BucketCount
	ByDevice    []BucketCount
}

// OwnerStats extends the aggregate report with per-owner link totals.
type OwnerStats struct {
	AggregateReport
	TotalLinks int64
	TopLinks   []LinkClicks
}

// LinkClicks pairs a short code with its click count within a window.
type LinkClicks struct {
	ShortCode string
	Clicks    int64
}
