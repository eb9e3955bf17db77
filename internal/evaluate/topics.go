package evaluate

import (
	"log/slog"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/sociograph/sociograph/internal/config"
	"github.com/sociograph/sociograph/internal/metrics"
	"github.com/sociograph/sociograph/internal/models"
)

// TopicExtractor derives ranked topic labels from activity content.
// Each label is a space-joined set of a topic's most probable words.
type TopicExtractor struct {
	cfg       config.TopicsConfig
	logger    *slog.Logger
	collector *metrics.Collector
}

// NewTopicExtractor constructs an extractor. The collector may be nil.
func NewTopicExtractor(cfg config.TopicsConfig, logger *slog.Logger, collector *metrics.Collector) *TopicExtractor {
	return &TopicExtractor{cfg: cfg, logger: logger, collector: collector}
}

// Evaluate runs the topic pipeline over the activities' content. A
// corpus too small or fully consumed by filtering yields an empty
// result rather than an error.
func (e *TopicExtractor) Evaluate(activities []models.Activity) []string {
	start := time.Now()
	defer func() {
		e.collector.ObserveEvaluation(moduleTopics, time.Since(start))
	}()

	docs, vocabSize := e.prepareCorpus(activities)
	if len(docs) < 2 || vocabSize == 0 {
		e.logger.Debug("degenerate topic corpus",
			"documents", len(docs),
			"vocabulary", vocabSize,
		)
		return nil
	}

	vocab := make([]string, vocabSize)
	corpus := make([][]int, len(docs))
	ids := make(map[string]int, vocabSize)
	next := 0
	for i, doc := range docs {
		corpus[i] = make([]int, 0, len(doc))
		for _, token := range doc {
			id, seen := ids[token]
			if !seen {
				id = next
				next++
				ids[token] = id
				vocab[id] = token
			}
			corpus[i] = append(corpus[i], id)
		}
	}

	model := fitLDA(corpus, vocabSize, e.cfg.TopicCount, e.cfg.Passes, e.cfg.Seed)

	labels := make([]string, 0, e.cfg.TopicCount)
	seen := make(map[string]struct{})
	for topic := 0; topic < model.topics; topic++ {
		if model.maxAssignment(topic) < e.cfg.MinProbability {
			continue
		}
		words := model.topWords(topic, e.cfg.TopicWords)
		if len(words) == 0 {
			continue
		}
		parts := make([]string, len(words))
		for i, id := range words {
			parts[i] = vocab[id]
		}
		label := strings.Join(parts, " ")
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		labels = append(labels, label)
	}

	return labels
}

// prepareCorpus runs the token pipeline: lowercase whitespace split,
// stopword/URL/http-prefix removal, non-alphanumeric stripping, short
// token removal, and corpus-wide hapax removal. It returns the token
// lists of the surviving documents and the vocabulary size.
func (e *TopicExtractor) prepareCorpus(activities []models.Activity) ([][]string, int) {
	urls := make(map[string]struct{})
	for _, activity := range activities {
		for _, url := range activity.Metadata.URLs {
			urls[url] = struct{}{}
		}
	}

	var docs [][]string
	for _, activity := range activities {
		if activity.Content == "" {
			continue
		}

		var tokens []string
		for _, token := range strings.Fields(strings.ToLower(activity.Content)) {
			if _, stop := stopwords[token]; stop {
				continue
			}
			if _, url := urls[token]; url {
				continue
			}
			if strings.HasPrefix(token, "http") {
				continue
			}
			token = stripNonAlnum(token)
			if utf8.RuneCountInString(token) < e.cfg.MinWordLength {
				continue
			}
			tokens = append(tokens, token)
		}
		docs = append(docs, tokens)
	}

	// Hapax removal is corpus-wide, not per document.
	frequency := make(map[string]int)
	for _, doc := range docs {
		for _, token := range doc {
			frequency[token]++
		}
	}

	vocab := make(map[string]struct{})
	for i, doc := range docs {
		filtered := doc[:0]
		for _, token := range doc {
			if frequency[token] > 1 {
				filtered = append(filtered, token)
				vocab[token] = struct{}{}
			}
		}
		docs[i] = filtered
	}

	return docs, len(vocab)
}

func stripNonAlnum(token string) string {
	var b strings.Builder
	for _, r := range token {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
