package models

import (
	"time"
)

// QueryRecord is the provenance entry for one fetch cycle. It is
// written exactly once, after all of its activities, and never mutated.
type QueryRecord struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	ResultCount int       `json:"result_count"`
	QueryType   string    `json:"query_type"`
	QueryText   string    `json:"query_text"`
}

// AgeDays returns the record's age in whole days at the given instant.
// Fractional days below one do not round up.
func (r QueryRecord) AgeDays(now time.Time) int {
	if now.Before(r.Timestamp) {
		return 0
	}
	return int(now.Sub(r.Timestamp).Hours() / 24)
}
