package twitter

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sociograph/sociograph/internal/config"
)

func testConnector(t *testing.T, handler http.Handler) *Connector {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.TwitterConfig{BearerToken: "test-token", Timeout: 5 * time.Second}
	connector := NewConnector(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	connector.baseURL = server.URL
	return connector
}

func TestConnector_FetchMapsTweets(t *testing.T) {
	var sawAuth string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAuth = r.Header.Get("Authorization")

		switch {
		case strings.HasPrefix(r.URL.Path, "/users/by/username/"):
			w.Write([]byte(`{"data":{"id":"99","username":"someone","name":"Some One"}}`))
		case strings.HasPrefix(r.URL.Path, "/users/99/tweets"):
			w.Write([]byte(`{"data":[
				{"id":"1","text":"plain update","created_at":"2021-03-01T08:30:00Z",
				 "entities":{"urls":[{"url":"https://t.co/x","expanded_url":"https://example.com/x"}],
				             "hashtags":[{"tag":"release"}]}},
				{"id":"2","text":"RT @other: interesting news","created_at":"2021-03-01T09:00:00Z",
				 "referenced_tweets":[{"type":"retweeted","id":"7"}]}
			],"meta":{"result_count":2}}`))
		default:
			http.NotFound(w, r)
		}
	})

	posts, err := testConnector(t, handler).Fetch(context.Background(), "@someone")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if sawAuth != "Bearer test-token" {
		t.Errorf("expected bearer auth header, got %q", sawAuth)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}

	first := posts[0]
	if first.PostID != "1" || first.Retweet || first.Username != "@someone" {
		t.Errorf("unexpected first post: %+v", first)
	}
	if len(first.URLs) != 1 || first.URLs[0] != "https://example.com/x" {
		t.Errorf("expected expanded URL, got %v", first.URLs)
	}
	if len(first.Hashtags) != 1 || first.Hashtags[0] != "release" {
		t.Errorf("expected hashtag release, got %v", first.Hashtags)
	}
	if first.Date.IsZero() {
		t.Error("expected parsed creation date")
	}

	second := posts[1]
	if !second.Retweet {
		t.Error("expected referenced retweet to set the retweet flag")
	}
	if second.Username != "@other" {
		t.Errorf("expected retweet attributed to @other, got %q", second.Username)
	}
}

func TestConnector_EmptyTimeline(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/users/by/username/") {
			w.Write([]byte(`{"data":{"id":"99","username":"quiet","name":"Quiet"}}`))
			return
		}
		w.Write([]byte(`{"meta":{"result_count":0}}`))
	})

	posts, err := testConnector(t, handler).Fetch(context.Background(), "quiet")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if len(posts) != 0 {
		t.Errorf("expected no posts, got %d", len(posts))
	}
}

func TestConnector_UpstreamFailure(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	if _, err := testConnector(t, handler).Fetch(context.Background(), "someone"); err == nil {
		t.Fatal("expected error from failing upstream")
	}
}

func TestRetweetSource(t *testing.T) {
	tests := []struct {
		text   string
		want   string
		wantOK bool
	}{
		{"RT @user: hello", "@user", true},
		{"RT @user hello", "@user", true},
		{"plain text", "", false},
		{"RT @: empty", "", false},
	}

	for _, tt := range tests {
		got, ok := retweetSource(tt.text)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("retweetSource(%q) = (%q, %v), want (%q, %v)", tt.text, got, ok, tt.want, tt.wantOK)
		}
	}
}
