package reddit

import (
	"strings"
	"time"
)

// Post is the slice of a submission the pipeline needs. No author fields are
// ever decoded or stored.
type Post struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Permalink   string  `json:"permalink"`
	Subreddit   string  `json:"subreddit"`
	CreatedUTC  float64 `json:"created_utc"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
}

// SourceURL canonicalizes the permalink into the dedup/staging key.
func (p Post) SourceURL() string {
	if strings.HasPrefix(p.Permalink, "/") {
		return "https://reddit.com" + p.Permalink
	}
	return p.Permalink
}

// FullText is what the extractor scans: title plus body.
func (p Post) FullText() string {
	return p.Title + "\n" + p.Selftext
}

// Created returns the post creation time in UTC, zero when unknown.
func (p Post) Created() time.Time {
	if p.CreatedUTC == 0 {
		return time.Time{}
	}
	return time.Unix(int64(p.CreatedUTC), 0).UTC()
}
