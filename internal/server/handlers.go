package server

import (
	"context"
	"errors"
	"net/http"

	"ravebox/discover/internal/category"
	"ravebox/discover/internal/domain"
	"ravebox/discover/internal/format"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// ListReader is the read side of the review list repository
type ListReader interface {
	ListReviewLists(ctx context.Context) ([]domain.ReviewList, error)
	GetReviewList(ctx context.Context, id string) (domain.ReviewList, error)
}

// Handlers holds the dependencies of the HTTP handlers
type Handlers struct {
	Lists    ListReader
	Ontology []domain.Category
}

type listSummary struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Reviews string `json:"reviews"` // Review count, comma separated
}

type categoryResponse struct {
	Category domain.Category `json:"category"`
	Queries  []string        `json:"queries"`
}

func (h *Handlers) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// UserStatistics acknowledges the request; user statistics are not
// collected server side.
func (h *Handlers) UserStatistics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handlers) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": category.TopLevelCategories(h.Ontology)})
}

// Category returns a top-level category and the product queries for its
// sub-categories
func (h *Handlers) Category(c *gin.Context) {
	found, ok := category.GetCategory(c.Param("key"), h.Ontology)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
		return
	}

	c.JSON(http.StatusOK, categoryResponse{
		Category: found,
		Queries:  category.SubCategoryQueries(found),
	})
}

func (h *Handlers) ReviewLists(c *gin.Context) {
	lists, err := h.Lists.ListReviewLists(c.Request.Context())
	if err != nil {
		log.WithField("request_id", requestID(c)).Errorf("Failed to list review lists: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load lists"})
		return
	}

	summaries := make([]listSummary, 0, len(lists))
	for _, list := range lists {
		summaries = append(summaries, listSummary{
			ID:      list.ID,
			Title:   list.Title,
			URL:     list.URL,
			Reviews: format.CommaSeparatedNumber(float64(len(list.Reviews))),
		})
	}

	c.JSON(http.StatusOK, gin.H{"lists": summaries})
}

func (h *Handlers) ReviewList(c *gin.Context) {
	list, err := h.Lists.GetReviewList(c.Request.Context(), c.Param("id"))
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "list not found"})
		return
	}
	if err != nil {
		log.WithField("request_id", requestID(c)).Errorf("Failed to get review list %s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load list"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"list": list})
}
