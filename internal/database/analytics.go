package database

import "time"

// Dimension selects the grouping column of a click aggregation query.
// The enum is closed so user input never reaches the generated SQL.
type Dimension int

const (
	ByDate Dimension = iota
	ByCountry
	ByReferrer
	ByDevice
)

// EventFilter scopes click aggregation queries to one link or one owner
// over an optional time window. A zero Since means the window is unbounded.
type EventFilter struct {
	LinkID  *int64
	OwnerID *int64
	Since   time.Time
}
