package api

import (
	"github.com/nharvey/govpulse/app/database"
)

type Handler struct {
	repo      database.ArticleRepository
	chartsDir string
	version   string
}

type articleResponse struct {
	FeedID       string  `json:"feed_id"`
	Title        string  `json:"title"`
	Link         string  `json:"link"`
	Summary      string  `json:"summary"`
	Organisation *string `json:"organisation"`
	PublishedAt  string  `json:"published_at"`
	FetchedAt    string  `json:"fetched_at"`
}
