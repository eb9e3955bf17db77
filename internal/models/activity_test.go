package models

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func TestNewActivity_GeneratesID(t *testing.T) {
	a := NewActivity("", "query-1", "twitter", "hello", Metadata{})
	if a.ID == "" {
		t.Error("expected generated ID, got empty string")
	}

	b := NewActivity("fixed-id", "query-1", "twitter", "hello", Metadata{})
	if b.ID != "fixed-id" {
		t.Errorf("expected provided ID to be kept, got %s", b.ID)
	}
}

func TestActivity_Timestamp(t *testing.T) {
	tests := []struct {
		name   string
		date   string
		wantOK bool
	}{
		{"RFC3339", "2021-03-01T08:30:00Z", true},
		{"naive ISO", "2021-03-01T08:30:00", true},
		{"date only", "2021-03-01", true},
		{"empty", "", false},
		{"garbage", "not-a-date", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Activity{Metadata: Metadata{Date: tt.date}}
			ts, ok := a.Timestamp()
			if ok != tt.wantOK {
				t.Fatalf("Timestamp() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && ts.IsZero() {
				t.Error("expected non-zero timestamp")
			}
		})
	}
}

func TestActivity_RetweetInfo(t *testing.T) {
	yes := true

	tests := []struct {
		name         string
		metadata     Metadata
		wantRetweet  bool
		wantUsername string
		wantOK       bool
	}{
		{"complete", Metadata{Retweet: &yes, Username: "@a"}, true, "@a", true},
		{"flag missing", Metadata{Username: "@a"}, false, "", false},
		{"username missing", Metadata{Retweet: &yes}, false, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Activity{Metadata: tt.metadata}
			retweet, username, ok := a.RetweetInfo()
			if retweet != tt.wantRetweet || username != tt.wantUsername || ok != tt.wantOK {
				t.Errorf("RetweetInfo() = (%v, %q, %v), want (%v, %q, %v)",
					retweet, username, ok, tt.wantRetweet, tt.wantUsername, tt.wantOK)
			}
		})
	}
}

func TestMetadata_JSONRoundTrip(t *testing.T) {
	retweet := true
	original := Metadata{
		Date:     "2021-03-01T08:30:00Z",
		PostID:   "1366001234567890",
		URLs:     []string{"https://example.com/a", "https://example.com/b"},
		Hashtags: []string{"golang"},
		Retweet:  &retweet,
		Username: "@someone",
		Fullname: "Someone",
		Extra:    map[string]string{"lang": "en"},
	}

	raw, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded Metadata
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if !reflect.DeepEqual(original, decoded) {
		t.Errorf("round trip mismatch:\n  original: %+v\n  decoded:  %+v", original, decoded)
	}
}

func TestQueryRecord_AgeDays(t *testing.T) {
	now := time.Date(2021, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		ts   time.Time
		want int
	}{
		{"same instant", now, 0},
		{"under a day", now.Add(-23 * time.Hour), 0},
		{"exactly seven days", now.AddDate(0, 0, -7), 7},
		{"six and a half days", now.Add(-156 * time.Hour), 6},
		{"future timestamp", now.Add(time.Hour), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := QueryRecord{Timestamp: tt.ts}
			if got := r.AgeDays(now); got != tt.want {
				t.Errorf("AgeDays() = %d, want %d", got, tt.want)
			}
		})
	}
}
