package database

import (
	"fmt"
	"time"
)

// StorageError wraps a database I/O failure. It is fatal to the current
// run; nothing in the pipeline retries storage operations.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Article is an article row joined with its organisation name.
// Organisation is nil when the article has no publishing organisation.
type Article struct {
	ID           int64
	FeedID       string
	Title        string
	Link         string
	Summary      string
	BodyText     *string
	Organisation *string
	PublishedAt  time.Time
	FetchedAt    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// OrganisationCount is one bucket of the per-organisation aggregation.
// Articles without an organisation appear under the name "unknown".
type OrganisationCount struct {
	Name  string
	Count int
}

type DayCount struct {
	Day   time.Time
	Count int
}

// DayOrganisationCount is one bucket of the per-day, per-organisation
// aggregation. Articles without an organisation count under "unknown".
type DayOrganisationCount struct {
	Day          time.Time
	Organisation string
	Count        int
}

type HourCount struct {
	Hour  int
	Count int
}
