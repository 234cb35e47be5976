package database

import (
	"github.com/nharvey/govpulse/app/feed"
)

// UnknownOrganisation is the aggregation bucket articles without a
// publishing organisation are reported under.
const UnknownOrganisation = "unknown"

type ArticleRepository interface {
	UpsertArticle(article feed.Article) error
	GetAllArticles() ([]Article, error)
	GetArticleByFeedID(feedID string) (*Article, error)
	GetArticleCount() (int, error)

	CountByOrganisation() ([]OrganisationCount, error)
	CountByDay() ([]DayCount, error)
	CountByDayAndOrganisation() ([]DayOrganisationCount, error)
	CountByHour() ([]HourCount, error)
}
