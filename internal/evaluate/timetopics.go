package evaluate

import (
	"log/slog"
	"sort"
	"time"

	"github.com/sociograph/sociograph/internal/metrics"
	"github.com/sociograph/sociograph/internal/models"
)

// TopicCluster summarizes one temporal group: its topic labels, its
// size, and the raw timestamp strings of its members.
type TopicCluster struct {
	Topics []string `json:"topics"`
	Count  int      `json:"count"`
	Dates  []string `json:"dates"`
}

// TimeClusteredTopics composes temporal clustering with topic
// extraction: activities are grouped by time period and each group is
// summarized by its own topic labels.
type TimeClusteredTopics struct {
	clusterer *TemporalClusterer
	topics    *TopicExtractor
	logger    *slog.Logger
	collector *metrics.Collector
}

// NewTimeClusteredTopics constructs the composition. The collector may be nil.
func NewTimeClusteredTopics(clusterer *TemporalClusterer, topics *TopicExtractor, logger *slog.Logger, collector *metrics.Collector) *TimeClusteredTopics {
	return &TimeClusteredTopics{
		clusterer: clusterer,
		topics:    topics,
		logger:    logger,
		collector: collector,
	}
}

// Evaluate returns a map from each group's representative timestamp
// (the mean of its members' timestamps, in local time) to the group
// summary. When two groups share a mean timestamp the later write
// wins; this is expected and non-fatal.
func (e *TimeClusteredTopics) Evaluate(activities []models.Activity) map[string]TopicCluster {
	start := time.Now()
	defer func() {
		e.collector.ObserveEvaluation(moduleTimeTopics, time.Since(start))
	}()

	kept, times := timestamped(activities)

	order := make([]int, len(kept))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return times[order[a]].After(times[order[b]])
	})
	sorted := make([]models.Activity, len(kept))
	for i, idx := range order {
		sorted[i] = kept[idx]
	}

	results := make(map[string]TopicCluster)
	for _, group := range e.clusterer.Evaluate(sorted) {
		var sum int64
		dates := make([]string, 0, len(group))
		for _, activity := range group {
			ts, _ := activity.Timestamp()
			sum += ts.Unix()
			dates = append(dates, activity.Metadata.Date)
		}

		mean := time.Unix(sum/int64(len(group)), 0)
		key := mean.Format("2006-01-02T15:04:05")

		results[key] = TopicCluster{
			Topics: e.topics.Evaluate(group),
			Count:  len(group),
			Dates:  dates,
		}
	}

	return results
}
