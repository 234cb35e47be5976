package feed

import (
	"bytes"
	"fmt"

	"github.com/mmcdole/gofeed"
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run parses an Atom or RSS document and returns feed metadata plus the raw
// entries in document order. Entry-level validation happens in the
// Normalizer, not here.
func (p *Parser) Run(data []byte) (*Metadata, []RawEntry, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	metadata := &Metadata{
		Title:       parsed.Title,
		Link:        parsed.Link,
		Description: parsed.Description,
		Language:    parsed.Language,
	}

	if parsed.UpdatedParsed != nil {
		metadata.UpdatedAt = parsed.UpdatedParsed
	}

	entries := make([]RawEntry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		entries = append(entries, p.rawEntry(item))
	}

	return metadata, entries, nil
}

func (p *Parser) rawEntry(item *gofeed.Item) RawEntry {
	entry := RawEntry{
		GUID:         item.GUID,
		Title:        item.Title,
		Link:         item.Link,
		Summary:      item.Description,
		Content:      item.Content,
		PublishedRaw: item.Published,
		UpdatedRaw:   item.Updated,
	}

	if item.PublishedParsed != nil {
		entry.PublishedAt = item.PublishedParsed
	}

	if item.UpdatedParsed != nil {
		entry.UpdatedAt = item.UpdatedParsed
	}

	entry.Author = p.extractAuthor(item)

	return entry
}

// extractAuthor returns the first author name on the entry. Government
// feeds put the publishing body there; entries without one return "".
func (p *Parser) extractAuthor(item *gofeed.Item) string {
	if len(item.Authors) > 0 && item.Authors[0] != nil {
		return item.Authors[0].Name
	}
	if item.Author != nil {
		return item.Author.Name
	}
	return ""
}
