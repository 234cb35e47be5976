package feed

import (
	"cmp"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

// MalformedEntryError reports a feed entry that cannot be turned into an
// Article because a required field is missing or unparsable.
type MalformedEntryError struct {
	GUID   string
	Field  string
	Reason string
}

func (e *MalformedEntryError) Error() string {
	if e.GUID != "" {
		return fmt.Sprintf("malformed entry %s: %s %s", e.GUID, e.Field, e.Reason)
	}
	return fmt.Sprintf("malformed entry: %s %s", e.Field, e.Reason)
}

// Fallback formats tried on the raw date strings when gofeed itself could
// not parse the entry timestamps.
var dateFormats = []string{
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02T15:04:05-07:00",
	"2006-01-02 15:04:05",
}

var whitespaceRe = regexp.MustCompile(`\s+`)

type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Run maps one raw entry into a canonical Article. The identifier falls back
// from GUID to link; an entry with neither, with a blank title, or without a
// parsable timestamp fails with *MalformedEntryError. An unparsable date is
// an error rather than a default so time-series output stays trustworthy.
func (n *Normalizer) Run(entry RawEntry, fetchedAt time.Time) (Article, error) {
	feedID := cmp.Or(entry.GUID, entry.Link)
	if feedID == "" {
		return Article{}, &MalformedEntryError{Field: "id", Reason: "is missing"}
	}

	title := collapseWhitespace(entry.Title)
	if title == "" {
		return Article{}, &MalformedEntryError{GUID: feedID, Field: "title", Reason: "is missing"}
	}

	publishedAt, err := n.resolvePublishedAt(entry)
	if err != nil {
		return Article{}, &MalformedEntryError{GUID: feedID, Field: "date", Reason: err.Error()}
	}

	summary := StripMarkup(cmp.Or(entry.Summary, entry.Content))

	article := Article{
		FeedID:      feedID,
		Title:       title,
		Link:        entry.Link,
		Summary:     summary,
		PublishedAt: publishedAt.UTC(),
		FetchedAt:   fetchedAt.UTC(),
	}

	// Absent organisation stays nil; the store keeps it nullable and the
	// renderer buckets it as "unknown".
	if org := collapseWhitespace(entry.Author); org != "" {
		article.Organisation = &org
	}

	return article, nil
}

func (n *Normalizer) resolvePublishedAt(entry RawEntry) (time.Time, error) {
	if entry.PublishedAt != nil {
		return *entry.PublishedAt, nil
	}
	if entry.UpdatedAt != nil {
		return *entry.UpdatedAt, nil
	}

	raw := cmp.Or(entry.PublishedRaw, entry.UpdatedRaw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("is missing")
	}

	for _, format := range dateFormats {
		if parsed, err := time.Parse(format, raw); err == nil {
			return parsed, nil
		}
	}

	return time.Time{}, fmt.Errorf("'%s' is unparsable", raw)
}

// StripMarkup reduces an HTML fragment to plain text: tags removed,
// whitespace collapsed, text NFC-normalized. Plain input passes through
// with the same whitespace treatment. Empty output is valid.
func StripMarkup(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return ""
	}

	if strings.Contains(trimmed, "<") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(trimmed))
		if err == nil {
			doc.Find("script, style").Remove()
			trimmed = doc.Text()
		}
	}

	return collapseWhitespace(norm.NFC.String(trimmed))
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
