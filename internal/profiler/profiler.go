package profiler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sociograph/sociograph/internal/config"
	"github.com/sociograph/sociograph/internal/metrics"
	"github.com/sociograph/sociograph/internal/models"
)

// ErrNeedsFetch is returned by Resolve when no stored query record is
// fresh enough to reuse and the caller must invoke the fetch
// collaborator.
var ErrNeedsFetch = errors.New("no fresh cached query available")

// Store is the record store collaborator. Implementations must return
// query records in insertion order and must surface connectivity
// failures as errors; an unreachable store is never a cache miss.
type Store interface {
	Append(ctx context.Context, activity models.Activity) error
	AppendBatch(ctx context.Context, activities []models.Activity) error
	AppendQueryRecord(ctx context.Context, record models.QueryRecord) error
	FindQueryRecords(ctx context.Context, queryText, queryType string) ([]models.QueryRecord, error)
	FindActivitiesByQueryID(ctx context.Context, queryID string) ([]models.Activity, error)
}

// RawPost is one post as produced by a fetch collaborator, before it
// becomes an Activity.
type RawPost struct {
	Date     time.Time
	PostID   string
	Text     string
	Retweet  bool
	Username string
	Fullname string
	URLs     []string
	Hashtags []string
}

// Fetcher is the network collaborator that produces raw posts for a
// logical query. A nil or empty result means "no data available" and
// is not an error.
type Fetcher interface {
	// Type identifies the profiler kind; it partitions the query cache.
	Type() string

	Fetch(ctx context.Context, query string) ([]RawPost, error)
}

// Profiler resolves logical queries against the record store, falling
// back to the fetch collaborator when no cached batch is fresh enough.
type Profiler struct {
	store     Store
	fetcher   Fetcher
	cfg       config.CacheConfig
	logger    *slog.Logger
	collector *metrics.Collector
	now       func() time.Time
}

// New constructs a Profiler. The collector may be nil.
func New(store Store, fetcher Fetcher, cfg config.CacheConfig, logger *slog.Logger, collector *metrics.Collector) *Profiler {
	return &Profiler{
		store:     store,
		fetcher:   fetcher,
		cfg:       cfg,
		logger:    logger,
		collector: collector,
		now:       time.Now,
	}
}

// Resolve returns the cached activities for the logical query, or
// ErrNeedsFetch when no stored query record satisfies the freshness
// window and minimum result threshold. Store failures propagate.
func (p *Profiler) Resolve(ctx context.Context, query string) ([]models.Activity, error) {
	records, err := p.store.FindQueryRecords(ctx, query, p.fetcher.Type())
	if err != nil {
		return nil, fmt.Errorf("failed to look up query records: %w", err)
	}

	now := p.now()
	for i := len(records) - 1; i >= 0; i-- {
		record := records[i]
		if record.AgeDays(now) >= p.cfg.FreshnessDays {
			continue
		}
		if record.ResultCount <= p.cfg.MinResults {
			continue
		}

		activities, err := p.store.FindActivitiesByQueryID(ctx, record.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load cached activities: %w", err)
		}

		p.collector.ObserveCacheLookup(metrics.OutcomeHit)
		p.logger.Info("using cached query results",
			"query", query,
			"query_id", record.ID,
			"age_days", record.AgeDays(now),
			"count", len(activities),
		)
		return activities, nil
	}

	p.collector.ObserveCacheLookup(metrics.OutcomeMiss)
	return nil, ErrNeedsFetch
}

// QueryCached resolves the logical query, fetching and persisting a new
// batch when the cache cannot serve it. A fetch that yields no posts
// produces an empty activity list, not an error.
func (p *Profiler) QueryCached(ctx context.Context, query string) ([]models.Activity, error) {
	activities, err := p.Resolve(ctx, query)
	if err == nil {
		return activities, nil
	}
	if !errors.Is(err, ErrNeedsFetch) {
		return nil, err
	}

	return p.fetch(ctx, query)
}

// fetch runs one fetch cycle: invoke the collaborator, persist the
// batch, then persist the provenance record. Activities are written
// before the query record so a partially written batch never looks
// complete to a concurrent reader.
func (p *Profiler) fetch(ctx context.Context, query string) ([]models.Activity, error) {
	start := p.now()

	posts, err := p.fetcher.Fetch(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetch failed for %q: %w", query, err)
	}

	queryID := uuid.New().String()
	activities := make([]models.Activity, 0, len(posts))
	for _, post := range posts {
		activities = append(activities, p.activityFromPost(queryID, post))
	}

	if err := p.store.AppendBatch(ctx, activities); err != nil {
		return nil, fmt.Errorf("failed to persist activities: %w", err)
	}

	record := models.QueryRecord{
		ID:          queryID,
		Timestamp:   p.now().UTC(),
		ResultCount: len(activities),
		QueryType:   p.fetcher.Type(),
		QueryText:   query,
	}
	if err := p.store.AppendQueryRecord(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist query record: %w", err)
	}

	p.collector.ObserveFetch(len(activities), p.now().Sub(start))
	p.logger.Info("fetched and persisted batch",
		"query", query,
		"query_id", queryID,
		"count", len(activities),
	)

	return activities, nil
}

func (p *Profiler) activityFromPost(queryID string, post RawPost) models.Activity {
	retweet := post.Retweet
	metadata := models.Metadata{
		PostID:   post.PostID,
		URLs:     post.URLs,
		Hashtags: post.Hashtags,
		Retweet:  &retweet,
		Username: post.Username,
		Fullname: post.Fullname,
	}
	if !post.Date.IsZero() {
		metadata.Date = post.Date.Format(time.RFC3339)
	}

	return models.NewActivity("", queryID, p.fetcher.Type(), post.Text, metadata)
}
