package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nharvey/govpulse/app/database"
	"github.com/nharvey/govpulse/app/feed"
	"github.com/nharvey/govpulse/app/fetch"
	"github.com/nharvey/govpulse/app/sources"
)

// HarvestTask runs the full ingest path for one source: fetch the feed,
// normalize every entry, optionally scrape the linked article pages, and
// upsert the records. A malformed entry or a storage failure aborts the
// task; a failed page scrape stores nulls and continues.
type HarvestTask struct {
	Task
	Source        *sources.Source
	client        *fetch.Client
	parser        *feed.Parser
	normalizer    *feed.Normalizer
	pageExtractor *feed.PageExtractor
	repo          database.ArticleRepository
}

func NewHarvestTask(source *sources.Source, client *fetch.Client, parser *feed.Parser,
	normalizer *feed.Normalizer, pageExtractor *feed.PageExtractor,
	repo database.ArticleRepository) *HarvestTask {
	return &HarvestTask{
		Task:          NewTask(TaskTypeHarvest, source.Name),
		Source:        source,
		client:        client,
		parser:        parser,
		normalizer:    normalizer,
		pageExtractor: pageExtractor,
		repo:          repo,
	}
}

func (t *HarvestTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.Source.Settings.Enabled {
		slog.Debug("Source disabled, skipping", "source", t.SourceName)
		return nil
	}

	fetchCtx, cancel := t.fetchContext(ctx)
	data, err := t.client.Fetch(fetchCtx, t.Source.URL)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to fetch feed: %w", err)
	}

	metadata, entries, err := t.parser.Run(data)
	if err != nil {
		return fmt.Errorf("failed to parse feed: %w", err)
	}

	if max := t.Source.Settings.MaxEntries; max > 0 && len(entries) > max {
		entries = entries[:max]
	}

	slog.Debug("Feed parsed", "source", t.SourceName, "title", metadata.Title, "entries", len(entries))

	fetchedAt := time.Now().UTC()
	newCount := 0
	updatedCount := 0
	pageFailures := 0

	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		article, err := t.normalizer.Run(entry, fetchedAt)
		if err != nil {
			return fmt.Errorf("failed to normalize entry: %w", err)
		}

		existing, err := t.repo.GetArticleByFeedID(article.FeedID)
		if err != nil {
			return fmt.Errorf("failed to look up article: %w", err)
		}

		if existing == nil {
			newCount++
		} else {
			updatedCount++
			// Page content was scraped on first sighting; carry it over
			// so the upsert does not null it out.
			article.BodyText = existing.BodyText
			if article.Organisation == nil {
				article.Organisation = existing.Organisation
			}
		}

		if t.Source.Settings.ExtractPages && article.BodyText == nil && article.Link != "" {
			if !t.scrapePage(ctx, &article) {
				pageFailures++
			}
		}

		if err := t.repo.UpsertArticle(article); err != nil {
			return fmt.Errorf("failed to upsert article: %w", err)
		}
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"source", t.SourceName,
		"duration", t.GetDuration(),
		"total", len(entries),
		"new", newCount,
		"updated", updatedCount,
		"page_failures", pageFailures)

	return nil
}

// fetchContext bounds one fetch with the per-source timeout when set.
func (t *HarvestTask) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.Source.Settings.Timeout > 0 {
		return context.WithTimeout(ctx, time.Duration(t.Source.Settings.Timeout)*time.Second)
	}
	return context.WithCancel(ctx)
}

// scrapePage fills BodyText and Organisation from the linked article page.
// Failures leave both nil and report false; the article is still stored.
func (t *HarvestTask) scrapePage(ctx context.Context, article *feed.Article) bool {
	fetchCtx, cancel := t.fetchContext(ctx)
	defer cancel()

	data, err := t.client.Fetch(fetchCtx, article.Link)
	if err != nil {
		slog.Warn("Failed to fetch article page", "source", t.SourceName, "url", article.Link, "error", err)
		return false
	}

	details, err := t.pageExtractor.Run(data)
	if err != nil {
		slog.Warn("Failed to extract article page", "source", t.SourceName, "url", article.Link, "error", err)
		return false
	}

	if details.BodyText != nil {
		article.BodyText = details.BodyText
	}
	if details.Organisation != nil {
		article.Organisation = details.Organisation
	}

	return details.BodyText != nil || details.Organisation != nil
}
