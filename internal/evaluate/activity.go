package evaluate

import (
	"log/slog"
	"time"

	"github.com/sociograph/sociograph/internal/metrics"
	"github.com/sociograph/sociograph/internal/models"
)

// dayNames holds the histogram's keys in week order.
var dayNames = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// DayActivity is one day's share of the week's activity. Hour
// percentages use the global activity total as denominator, so they
// sum to ActivityPercent rather than 100.
type DayActivity struct {
	ActivityPercent float64     `json:"activity_percent"`
	HourPercent     [24]float64 `json:"hour_percent"`
}

// ActivityHistogram buckets activity timestamps by day of week and
// hour of day.
type ActivityHistogram struct {
	logger    *slog.Logger
	collector *metrics.Collector
}

// NewActivityHistogram constructs the histogram module. The collector may be nil.
func NewActivityHistogram(logger *slog.Logger, collector *metrics.Collector) *ActivityHistogram {
	return &ActivityHistogram{logger: logger, collector: collector}
}

// Evaluate computes the weekly distribution. Days without activity
// yield all-zero rows; an input with no timestamped activities at all
// is an error because the percentages are undefined.
func (e *ActivityHistogram) Evaluate(activities []models.Activity) (map[string]DayActivity, error) {
	start := time.Now()
	defer func() {
		e.collector.ObserveEvaluation(moduleActivity, time.Since(start))
	}()

	_, times := timestamped(activities)
	if len(times) == 0 {
		return nil, ErrNoTimestamps
	}

	var dayCounts [7]int
	var hourCounts [7][24]int
	for _, ts := range times {
		day := weekIndex(ts.Weekday())
		dayCounts[day]++
		hourCounts[day][ts.Hour()]++
	}

	total := float64(len(times))
	summary := make(map[string]DayActivity, len(dayNames))
	for i, name := range dayNames {
		row := DayActivity{ActivityPercent: 100 / total * float64(dayCounts[i])}
		for h := 0; h < 24; h++ {
			row.HourPercent[h] = 100 / total * float64(hourCounts[i][h])
		}
		summary[name] = row
	}

	return summary, nil
}

// weekIndex maps time.Weekday (Sunday = 0) onto Monday-first indexing.
func weekIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}
