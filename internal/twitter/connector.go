package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sociograph/sociograph/internal/config"
	"github.com/sociograph/sociograph/internal/profiler"
)

// Connector fetches an account's recent tweets using the Twitter API
// v2 and adapts them to raw posts. Pagination and rate-limit handling
// are deliberately not implemented; one fetch returns one page.
type Connector struct {
	cfg     config.TwitterConfig
	logger  *slog.Logger
	client  *http.Client
	baseURL string
}

// NewConnector creates a new Twitter connector.
func NewConnector(cfg config.TwitterConfig, logger *slog.Logger) *Connector {
	return &Connector{
		cfg:    cfg,
		logger: logger,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: "https://api.twitter.com/2",
	}
}

// Type identifies this profiler kind in query provenance.
func (c *Connector) Type() string { return "twitter" }

type userResponse struct {
	Data struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Name     string `json:"name"`
	} `json:"data"`
}

type tweet struct {
	ID               string    `json:"id"`
	Text             string    `json:"text"`
	CreatedAt        time.Time `json:"created_at"`
	ReferencedTweets []struct {
		Type string `json:"type"`
		ID   string `json:"id"`
	} `json:"referenced_tweets"`
	Entities struct {
		URLs []struct {
			ExpandedURL string `json:"expanded_url"`
			URL         string `json:"url"`
		} `json:"urls"`
		Hashtags []struct {
			Tag string `json:"tag"`
		} `json:"hashtags"`
	} `json:"entities"`
}

type timelineResponse struct {
	Data []tweet `json:"data"`
	Meta struct {
		ResultCount int `json:"result_count"`
	} `json:"meta"`
}

// Fetch retrieves the account's recent tweets. An account with no
// tweets yields an empty slice, not an error.
func (c *Connector) Fetch(ctx context.Context, query string) ([]profiler.RawPost, error) {
	handle := strings.TrimPrefix(query, "@")

	user, err := c.getUser(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user %q: %w", handle, err)
	}

	tweets, err := c.getTimeline(ctx, user.Data.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch timeline for %q: %w", handle, err)
	}

	c.logger.Info("fetched tweets", "username", handle, "count", len(tweets))

	posts := make([]profiler.RawPost, 0, len(tweets))
	for _, tw := range tweets {
		posts = append(posts, c.rawPost(tw, user.Data.Username, user.Data.Name))
	}
	return posts, nil
}

func (c *Connector) rawPost(tw tweet, handle, fullname string) profiler.RawPost {
	retweet := false
	for _, ref := range tw.ReferencedTweets {
		if ref.Type == "retweeted" {
			retweet = true
			break
		}
	}

	// A retweet is attributed to the original author; everything else
	// to the profiled account.
	username := "@" + handle
	if retweet {
		if source, ok := retweetSource(tw.Text); ok {
			username = source
		}
	}

	urls := make([]string, 0, len(tw.Entities.URLs))
	for _, u := range tw.Entities.URLs {
		if u.ExpandedURL != "" {
			urls = append(urls, u.ExpandedURL)
			continue
		}
		urls = append(urls, u.URL)
	}

	hashtags := make([]string, 0, len(tw.Entities.Hashtags))
	for _, h := range tw.Entities.Hashtags {
		hashtags = append(hashtags, h.Tag)
	}

	return profiler.RawPost{
		Date:     tw.CreatedAt,
		PostID:   tw.ID,
		Text:     tw.Text,
		Retweet:  retweet,
		Username: username,
		Fullname: fullname,
		URLs:     urls,
		Hashtags: hashtags,
	}
}

// retweetSource extracts the original author from the conventional
// "RT @user: ..." text prefix.
func retweetSource(text string) (string, bool) {
	if !strings.HasPrefix(text, "RT @") {
		return "", false
	}
	rest := text[len("RT "):]
	if idx := strings.IndexAny(rest, ": "); idx > 1 {
		return rest[:idx], true
	}
	return "", false
}

func (c *Connector) getUser(ctx context.Context, handle string) (*userResponse, error) {
	var user userResponse
	url := fmt.Sprintf("%s/users/by/username/%s", c.baseURL, handle)
	if err := c.get(ctx, url, &user); err != nil {
		return nil, err
	}
	if user.Data.ID == "" {
		return nil, fmt.Errorf("user not found")
	}
	return &user, nil
}

func (c *Connector) getTimeline(ctx context.Context, userID string) ([]tweet, error) {
	url := fmt.Sprintf(
		"%s/users/%s/tweets?max_results=100&tweet.fields=created_at,entities,referenced_tweets",
		c.baseURL, userID,
	)
	var timeline timelineResponse
	if err := c.get(ctx, url, &timeline); err != nil {
		return nil, err
	}
	return timeline.Data, nil
}

func (c *Connector) get(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.BearerToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
