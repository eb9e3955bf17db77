package evaluate

import (
	"log/slog"
	"sort"
	"time"

	"github.com/sociograph/sociograph/internal/config"
	"github.com/sociograph/sociograph/internal/metrics"
	"github.com/sociograph/sociograph/internal/models"
)

// noiseLabel marks points that belong to no cluster.
const noiseLabel = -1

// TemporalClusterer groups activities by density along the timeline.
// The number of groups is discovered from the data; points without
// enough near neighbors are noise and appear in no group.
type TemporalClusterer struct {
	cfg       config.ClusterConfig
	logger    *slog.Logger
	collector *metrics.Collector
}

// NewTemporalClusterer constructs a clusterer. The collector may be nil.
func NewTemporalClusterer(cfg config.ClusterConfig, logger *slog.Logger, collector *metrics.Collector) *TemporalClusterer {
	return &TemporalClusterer{cfg: cfg, logger: logger, collector: collector}
}

// Evaluate partitions the timestamped activities into density-based
// groups. Activities without a date are skipped; an input too small to
// seed any cluster yields an empty result.
func (c *TemporalClusterer) Evaluate(activities []models.Activity) [][]models.Activity {
	start := time.Now()
	defer func() {
		c.collector.ObserveEvaluation(moduleCluster, time.Since(start))
	}()

	kept, times := timestamped(activities)
	if len(kept) < c.cfg.MinClusterSize {
		c.logger.Debug("too few timestamped activities to cluster",
			"count", len(kept),
			"min_cluster_size", c.cfg.MinClusterSize,
		)
		return nil
	}

	points := make([]point, len(kept))
	for i := range kept {
		points[i] = point{ts: times[i].Unix(), activity: kept[i]}
	}
	sort.Slice(points, func(i, j int) bool { return points[i].ts < points[j].ts })

	labels := c.scan(points)

	// Labels are opaque cluster identities; collect groups empirically
	// from the labeling rather than assuming a contiguous numbering.
	groupByLabel := make(map[int][]models.Activity)
	var order []int
	for i, label := range labels {
		if label == noiseLabel {
			continue
		}
		if _, seen := groupByLabel[label]; !seen {
			order = append(order, label)
		}
		groupByLabel[label] = append(groupByLabel[label], points[i].activity)
	}

	groups := make([][]models.Activity, 0, len(order))
	for _, label := range order {
		groups = append(groups, groupByLabel[label])
	}

	c.logger.Debug("temporal clustering complete",
		"points", len(points),
		"clusters", len(groups),
	)
	return groups
}

type point struct {
	ts       int64
	activity models.Activity
}

// scan runs DBSCAN over the sorted 1-D timeline. The distance metric
// is the absolute difference of epoch seconds; a point is a core point
// when its neighborhood (itself included) holds at least
// MinClusterSize points.
func (c *TemporalClusterer) scan(points []point) []int {
	radius := int64(c.cfg.Radius / time.Second)

	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = noiseLabel
	}
	visited := make([]bool, len(points))

	nextLabel := 0
	for i := range points {
		if visited[i] {
			continue
		}
		visited[i] = true

		neighbors := c.neighborhood(points, i, radius)
		if len(neighbors) < c.cfg.MinClusterSize {
			continue
		}

		label := nextLabel
		nextLabel++
		labels[i] = label

		// Expand the cluster from the seed's neighborhood.
		queue := append([]int(nil), neighbors...)
		for len(queue) > 0 {
			j := queue[0]
			queue = queue[1:]

			if labels[j] == noiseLabel {
				labels[j] = label
			}
			if visited[j] {
				continue
			}
			visited[j] = true

			reachable := c.neighborhood(points, j, radius)
			if len(reachable) >= c.cfg.MinClusterSize {
				queue = append(queue, reachable...)
			}
		}
	}

	return labels
}

// neighborhood returns the indices within radius of points[i]. The
// slice is sorted by timestamp, so the neighborhood is a contiguous run.
func (c *TemporalClusterer) neighborhood(points []point, i int, radius int64) []int {
	lo := i
	for lo > 0 && points[i].ts-points[lo-1].ts <= radius {
		lo--
	}
	hi := i
	for hi < len(points)-1 && points[hi+1].ts-points[i].ts <= radius {
		hi++
	}

	neighbors := make([]int, 0, hi-lo+1)
	for j := lo; j <= hi; j++ {
		neighbors = append(neighbors, j)
	}
	return neighbors
}
