package feed

import (
	"time"
)

type Metadata struct {
	Title       string
	Link        string
	Description string
	Language    string
	UpdatedAt   *time.Time
}

// RawEntry is the typed view of a single feed entry before normalization.
// Optional fields are pointers so that absence stays representable instead
// of turning into zero values downstream.
type RawEntry struct {
	GUID         string
	Title        string
	Link         string
	Summary      string
	Content      string
	Author       string
	PublishedAt  *time.Time
	UpdatedAt    *time.Time
	PublishedRaw string
	UpdatedRaw   string
}

// Article is the canonical record the store persists. FeedID is the stable
// identifier taken from the entry GUID (falling back to the link).
type Article struct {
	FeedID       string
	Title        string
	Link         string
	Summary      string
	BodyText     *string
	Organisation *string
	PublishedAt  time.Time
	FetchedAt    time.Time
}
