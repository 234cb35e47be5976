package feed

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

const (
	govspeakSelector         = "div.gem-c-govspeak"
	organisationMetaName     = "govuk:primary-publishing-organisation"
	organisationMetaFallback = "govuk:publishing-organisation"
)

// PageDetails holds what could be scraped from a linked article page.
// Either field may be nil when the page does not carry it; callers store
// nulls rather than failing the article.
type PageDetails struct {
	BodyText     *string
	Organisation *string
}

type PageExtractor struct{}

func NewPageExtractor() *PageExtractor {
	return &PageExtractor{}
}

// Run extracts body text and publishing organisation from an article page.
// Body text comes from the govspeak container GOV.UK pages render content
// in; pages without one fall back to readability main-content extraction.
func (e *PageExtractor) Run(data []byte) (PageDetails, error) {
	if len(data) == 0 {
		return PageDetails{}, fmt.Errorf("HTML data is empty")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return PageDetails{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	details := PageDetails{
		Organisation: e.extractOrganisation(doc),
	}

	body := e.extractBodyText(doc, data)
	if body != "" {
		details.BodyText = &body
	}

	slog.Debug("Page extracted",
		"body_length", len(body),
		"organisation", details.Organisation)

	return details, nil
}

func (e *PageExtractor) extractBodyText(doc *goquery.Document, data []byte) string {
	govspeak := doc.Find(govspeakSelector)
	if govspeak.Length() > 0 {
		govspeak.Find("script, style").Remove()
		return collapseWhitespace(govspeak.Text())
	}

	article, err := readability.FromReader(strings.NewReader(string(data)), nil)
	if err != nil {
		slog.Debug("Readability fallback failed", "error", err)
		return ""
	}

	return StripMarkup(article.Content)
}

func (e *PageExtractor) extractOrganisation(doc *goquery.Document) *string {
	for _, name := range []string{organisationMetaName, organisationMetaFallback} {
		selector := fmt.Sprintf(`meta[name="%s"]`, name)
		if content, ok := doc.Find(selector).Attr("content"); ok {
			org := collapseWhitespace(content)
			if org != "" {
				return &org
			}
		}
	}
	return nil
}
