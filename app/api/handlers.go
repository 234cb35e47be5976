package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nharvey/govpulse/app/database"
)

func NewHandler(repo database.ArticleRepository, chartsDir string, version string) *Handler {
	return &Handler{
		repo:      repo,
		chartsDir: chartsDir,
		version:   version,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	count, err := h.repo.GetArticleCount()
	if err != nil {
		slog.Error("Database error", "operation", "get_article_count", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "database unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"version":   h.version,
		"articles":  count,
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	})
}

func (h *Handler) GetStats(c *gin.Context) {
	count, err := h.repo.GetArticleCount()
	if err != nil {
		slog.Error("Database error", "operation", "get_article_count", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	orgCounts, err := h.repo.CountByOrganisation()
	if err != nil {
		slog.Error("Database error", "operation", "count_by_organisation", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	organisations := make([]gin.H, 0, len(orgCounts))
	for _, oc := range orgCounts {
		organisations = append(organisations, gin.H{
			"name":  oc.Name,
			"count": oc.Count,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"total_articles": count,
		"organisations":  organisations,
	})
}

func (h *Handler) GetArticles(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}

	articles, err := h.repo.GetAllArticles()
	if err != nil {
		slog.Error("Database error", "operation", "get_all_articles", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	if limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}

	response := make([]articleResponse, 0, len(articles))
	for _, a := range articles {
		response = append(response, articleResponse{
			FeedID:       a.FeedID,
			Title:        a.Title,
			Link:         a.Link,
			Summary:      a.Summary,
			Organisation: a.Organisation,
			PublishedAt:  a.PublishedAt.Format(time.RFC3339),
			FetchedAt:    a.FetchedAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"count":    len(response),
		"articles": response,
	})
}
