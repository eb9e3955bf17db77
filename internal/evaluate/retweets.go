package evaluate

import (
	"log/slog"
	"sort"
	"time"

	"github.com/sociograph/sociograph/internal/metrics"
	"github.com/sociograph/sociograph/internal/models"
)

// RetweetRank is one ranked source: who was retweeted, and how often.
type RetweetRank struct {
	Username string `json:"username"`
	Count    int    `json:"count"`
}

// RetweetRanking tallies retweeted sources by frequency.
type RetweetRanking struct {
	logger    *slog.Logger
	collector *metrics.Collector
}

// NewRetweetRanking constructs the ranking module. The collector may be nil.
func NewRetweetRanking(logger *slog.Logger, collector *metrics.Collector) *RetweetRanking {
	return &RetweetRanking{logger: logger, collector: collector}
}

// Evaluate returns the retweeted sources in descending count order.
// Ties keep first-encountered order. Activities missing the retweet or
// username metadata keys are excluded; that is a data-quality problem
// of the ingest layer, so it is logged rather than silently treated as
// "not a retweet".
func (e *RetweetRanking) Evaluate(activities []models.Activity) []RetweetRank {
	start := time.Now()
	defer func() {
		e.collector.ObserveEvaluation(moduleRetweets, time.Since(start))
	}()

	counts := make(map[string]int)
	var order []string
	malformed := 0
	for _, activity := range activities {
		retweet, username, ok := activity.RetweetInfo()
		if !ok {
			malformed++
			e.collector.ObserveMalformedMetadata(moduleRetweets)
			continue
		}
		if !retweet {
			continue
		}
		if _, seen := counts[username]; !seen {
			order = append(order, username)
		}
		counts[username]++
	}

	if malformed > 0 {
		e.logger.Warn("activities missing retweet metadata excluded from ranking",
			"count", malformed,
		)
	}

	ranking := make([]RetweetRank, 0, len(order))
	for _, username := range order {
		ranking = append(ranking, RetweetRank{Username: username, Count: counts[username]})
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Count > ranking[j].Count
	})

	return ranking
}
