package database

import (
	"testing"
	"time"

	"github.com/nharvey/govpulse/app/feed"
)

func newTestRepo(t *testing.T) *SQLArticleRepository {
	t.Helper()

	db, err := NewConnection(t.TempDir(), "test.db")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return NewArticleRepository(db)
}

func strPtr(s string) *string {
	return &s
}

func testArticle(feedID string) feed.Article {
	return feed.Article{
		FeedID:      feedID,
		Title:       "Budget update",
		Link:        "https://www.gov.uk/government/news/budget-update",
		Summary:     "The budget has been updated.",
		PublishedAt: time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC),
		FetchedAt:   time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC),
	}
}

func TestUpsertIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)

	article := testArticle("article-a")
	article.Organisation = strPtr("HM Treasury")

	if err := repo.UpsertArticle(article); err != nil {
		t.Fatalf("First upsert failed: %v", err)
	}
	if err := repo.UpsertArticle(article); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}

	count, err := repo.GetArticleCount()
	if err != nil {
		t.Fatalf("Failed to count articles: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 row after repeated upsert, got: %d", count)
	}
}

func TestUpsertReplacesFields(t *testing.T) {
	repo := newTestRepo(t)

	article := testArticle("article-a")
	if err := repo.UpsertArticle(article); err != nil {
		t.Fatalf("First upsert failed: %v", err)
	}

	article.Title = "Budget update (revised)"
	article.Summary = "Revised summary."
	article.Organisation = strPtr("HM Treasury")
	article.BodyText = strPtr("Full body text.")
	if err := repo.UpsertArticle(article); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}

	stored, err := repo.GetArticleByFeedID("article-a")
	if err != nil {
		t.Fatalf("Failed to get article: %v", err)
	}
	if stored == nil {
		t.Fatal("Expected article to exist")
	}

	if stored.Title != "Budget update (revised)" {
		t.Errorf("Expected replaced title, got: %s", stored.Title)
	}
	if stored.Summary != "Revised summary." {
		t.Errorf("Expected replaced summary, got: %s", stored.Summary)
	}
	if stored.Organisation == nil || *stored.Organisation != "HM Treasury" {
		t.Errorf("Expected organisation 'HM Treasury', got: %v", stored.Organisation)
	}
	if stored.BodyText == nil || *stored.BodyText != "Full body text." {
		t.Errorf("Expected body text to be stored, got: %v", stored.BodyText)
	}
}

func TestGetAllArticlesOrderedByPublishedAt(t *testing.T) {
	repo := newTestRepo(t)

	later := testArticle("article-b")
	later.Title = "Health notice"
	later.PublishedAt = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	earlier := testArticle("article-a")
	earlier.PublishedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// Insert out of order; the query must sort by published_at.
	if err := repo.UpsertArticle(later); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := repo.UpsertArticle(earlier); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	articles, err := repo.GetAllArticles()
	if err != nil {
		t.Fatalf("Failed to get articles: %v", err)
	}

	if len(articles) != 2 {
		t.Fatalf("Expected 2 articles, got: %d", len(articles))
	}
	if articles[0].FeedID != "article-a" {
		t.Errorf("Expected 'article-a' first, got: %s", articles[0].FeedID)
	}
	if articles[1].FeedID != "article-b" {
		t.Errorf("Expected 'article-b' second, got: %s", articles[1].FeedID)
	}
	if !articles[0].PublishedAt.Before(articles[1].PublishedAt) {
		t.Error("Expected ascending published_at order")
	}
}

func TestGetArticleByFeedIDMissing(t *testing.T) {
	repo := newTestRepo(t)

	stored, err := repo.GetArticleByFeedID("never-seen")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if stored != nil {
		t.Errorf("Expected nil for unseen feed ID, got: %+v", stored)
	}
}

func TestCountByOrganisationUnknownBucket(t *testing.T) {
	repo := newTestRepo(t)

	treasury := testArticle("article-a")
	treasury.Organisation = strPtr("HM Treasury")

	unknown := testArticle("article-b")
	unknown.Title = "Health notice"
	unknown.PublishedAt = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	if err := repo.UpsertArticle(treasury); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := repo.UpsertArticle(unknown); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	counts, err := repo.CountByOrganisation()
	if err != nil {
		t.Fatalf("Failed to count by organisation: %v", err)
	}

	if len(counts) != 2 {
		t.Fatalf("Expected 2 buckets, got: %d", len(counts))
	}

	byName := make(map[string]int, len(counts))
	for _, c := range counts {
		byName[c.Name] = c.Count
	}

	if byName["HM Treasury"] != 1 {
		t.Errorf("Expected 1 article under 'HM Treasury', got: %d", byName["HM Treasury"])
	}
	if byName[UnknownOrganisation] != 1 {
		t.Errorf("Expected 1 article under '%s', got: %d", UnknownOrganisation, byName[UnknownOrganisation])
	}
}

func TestCountByDay(t *testing.T) {
	repo := newTestRepo(t)

	for i, feedID := range []string{"a", "b", "c"} {
		article := testArticle(feedID)
		// Two on Jan 1, one on Jan 2
		day := 1
		if i == 2 {
			day = 2
		}
		article.PublishedAt = time.Date(2024, 1, day, 10+i, 0, 0, 0, time.UTC)
		if err := repo.UpsertArticle(article); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	counts, err := repo.CountByDay()
	if err != nil {
		t.Fatalf("Failed to count by day: %v", err)
	}

	if len(counts) != 2 {
		t.Fatalf("Expected 2 day buckets, got: %d", len(counts))
	}
	if counts[0].Count != 2 {
		t.Errorf("Expected 2 articles on first day, got: %d", counts[0].Count)
	}
	if counts[1].Count != 1 {
		t.Errorf("Expected 1 article on second day, got: %d", counts[1].Count)
	}
	if !counts[0].Day.Before(counts[1].Day) {
		t.Error("Expected ascending day order")
	}
}

func TestCountByDayAndOrganisation(t *testing.T) {
	repo := newTestRepo(t)

	treasuryDayOne := testArticle("a")
	treasuryDayOne.Organisation = strPtr("HM Treasury")
	treasuryDayOne.PublishedAt = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	treasuryDayTwo := testArticle("b")
	treasuryDayTwo.Organisation = strPtr("HM Treasury")
	treasuryDayTwo.PublishedAt = time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)

	unknownDayTwo := testArticle("c")
	unknownDayTwo.PublishedAt = time.Date(2024, 1, 2, 14, 0, 0, 0, time.UTC)

	for _, article := range []feed.Article{treasuryDayOne, treasuryDayTwo, unknownDayTwo} {
		if err := repo.UpsertArticle(article); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	counts, err := repo.CountByDayAndOrganisation()
	if err != nil {
		t.Fatalf("Failed to count by day and organisation: %v", err)
	}

	if len(counts) != 3 {
		t.Fatalf("Expected 3 buckets, got: %d (%+v)", len(counts), counts)
	}

	dayOne := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	dayTwo := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	if !counts[0].Day.Equal(dayOne) || counts[0].Organisation != "HM Treasury" || counts[0].Count != 1 {
		t.Errorf("Unexpected first bucket: %+v", counts[0])
	}
	if !counts[1].Day.Equal(dayTwo) || counts[1].Organisation != "HM Treasury" || counts[1].Count != 1 {
		t.Errorf("Unexpected second bucket: %+v", counts[1])
	}
	if !counts[2].Day.Equal(dayTwo) || counts[2].Organisation != UnknownOrganisation || counts[2].Count != 1 {
		t.Errorf("Unexpected third bucket: %+v", counts[2])
	}
}

func TestCountByHour(t *testing.T) {
	repo := newTestRepo(t)

	hours := []int{9, 9, 14}
	for i, hour := range hours {
		article := testArticle(string(rune('a' + i)))
		article.PublishedAt = time.Date(2024, 1, 1, hour, 0, 0, 0, time.UTC)
		if err := repo.UpsertArticle(article); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	counts, err := repo.CountByHour()
	if err != nil {
		t.Fatalf("Failed to count by hour: %v", err)
	}

	byHour := make(map[int]int, len(counts))
	for _, c := range counts {
		byHour[c.Hour] = c.Count
	}

	if byHour[9] != 2 {
		t.Errorf("Expected 2 articles at hour 9, got: %d", byHour[9])
	}
	if byHour[14] != 1 {
		t.Errorf("Expected 1 article at hour 14, got: %d", byHour[14])
	}
}

func TestOrganisationReusedAcrossArticles(t *testing.T) {
	repo := newTestRepo(t)

	for _, feedID := range []string{"a", "b"} {
		article := testArticle(feedID)
		article.Organisation = strPtr("HM Treasury")
		if err := repo.UpsertArticle(article); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	counts, err := repo.CountByOrganisation()
	if err != nil {
		t.Fatalf("Failed to count by organisation: %v", err)
	}

	if len(counts) != 1 {
		t.Fatalf("Expected a single organisation bucket, got: %d", len(counts))
	}
	if counts[0].Name != "HM Treasury" || counts[0].Count != 2 {
		t.Errorf("Expected 2 articles under 'HM Treasury', got: %+v", counts[0])
	}
}
