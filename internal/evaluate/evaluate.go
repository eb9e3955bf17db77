// Package evaluate implements the analysis passes that turn a list of
// activities into the profiler's summaries: dominant topics, topics
// clustered by time period, a weekly activity-time histogram, and a
// ranking of most-retweeted sources.
//
// Modules are pure functions of their input: they never mutate the
// activities they are given and hold no state across invocations.
// Data-quality problems local to one module (missing metadata keys,
// too little input for a statistical pass) are absorbed into empty or
// partial results; only the histogram's undefined-percentage case is
// surfaced as an error.
package evaluate

import (
	"errors"
	"time"

	"github.com/sociograph/sociograph/internal/models"
)

// ErrNoTimestamps is returned when an analysis needs at least one
// timestamped activity and none exists. Unlike a day with zero
// activities, a percentage over an empty set is undefined.
var ErrNoTimestamps = errors.New("no timestamped activities")

// Module names used in logs and metrics labels.
const (
	moduleTopics     = "topics"
	moduleCluster    = "cluster"
	moduleTimeTopics = "time_topics"
	moduleActivity   = "activity"
	moduleRetweets   = "retweets"
)

// timestamped returns the activities that carry a resolvable date,
// paired with their parsed timestamps.
func timestamped(activities []models.Activity) ([]models.Activity, []time.Time) {
	kept := make([]models.Activity, 0, len(activities))
	times := make([]time.Time, 0, len(activities))
	for _, activity := range activities {
		if ts, ok := activity.Timestamp(); ok {
			kept = append(kept, activity)
			times = append(times, ts)
		}
	}
	return kept, times
}
