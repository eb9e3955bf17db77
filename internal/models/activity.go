package models

import (
	"time"

	"github.com/google/uuid"
)

// Activity represents one ingested post from a profiled account.
type Activity struct {
	ID       string   `json:"id"`
	QueryID  string   `json:"query_id"`
	Type     string   `json:"type"`
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}

// Metadata holds the per-activity fields extracted from the source
// platform. Retweet is a pointer so that "flag absent" is
// distinguishable from "not a retweet" (see RetweetInfo).
type Metadata struct {
	Date     string            `json:"date,omitempty"`
	PostID   string            `json:"post_id,omitempty"`
	URLs     []string          `json:"urls,omitempty"`
	Hashtags []string          `json:"hashtags,omitempty"`
	Retweet  *bool             `json:"retweet,omitempty"`
	Username string            `json:"username,omitempty"`
	Fullname string            `json:"fullname,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

// NewActivity constructs an Activity, generating an ID when none is provided.
func NewActivity(id, queryID, activityType, content string, metadata Metadata) Activity {
	if id == "" {
		id = uuid.New().String()
	}
	return Activity{
		ID:       id,
		QueryID:  queryID,
		Type:     activityType,
		Content:  content,
		Metadata: metadata,
	}
}

// Timestamp parses the activity's date metadata. The second return
// value is false when the activity has no temporal position (missing
// or unparseable date).
func (a Activity) Timestamp() (time.Time, bool) {
	return ParseTimestamp(a.Metadata.Date)
}

// RetweetInfo reports the retweet flag and source identity. ok is
// false when either required key is absent, which callers should
// treat as a data-quality signal rather than "not a retweet".
func (a Activity) RetweetInfo() (retweet bool, username string, ok bool) {
	if a.Metadata.Retweet == nil || a.Metadata.Username == "" {
		return false, "", false
	}
	return *a.Metadata.Retweet, a.Metadata.Username, true
}

// timestampLayouts are tried in order when parsing date metadata.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 timestamp string as stored in
// activity metadata.
func ParseTimestamp(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
