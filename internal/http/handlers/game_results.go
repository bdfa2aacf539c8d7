package handlers

import (
	"net/http"

	"number_rush/internal/domain"

	"github.com/gin-gonic/gin"
)

// SubmitResult stores a finished game.
// POST /game-results
func (h *Handler) SubmitResult(c *gin.Context) {
	var req domain.ResultSubmission
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	g, err := h.Results.Submit(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err, "failed to save result")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"id":      g.ID,
	})
}

// ListResults returns the fastest results of one difficulty and rule.
// GET /game-results?difficulty=&rule=&limit=
func (h *Handler) ListResults(c *gin.Context) {
	d, r, ok := classFromQuery(c)
	if !ok {
		return
	}

	top, err := h.Results.Top(c.Request.Context(), d, r, queryLimit(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get results"})
		return
	}
	if top == nil {
		top = []*domain.GameResult{}
	}

	c.JSON(http.StatusOK, top)
}

// CompleteGame stores a result and answers with its percentile.
// POST /game-completion
func (h *Handler) CompleteGame(c *gin.Context) {
	var req domain.ResultSubmission
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ranked, err := h.Results.SubmitAndRank(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err, "failed to rank result")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         ranked.Result.ID,
		"percentage": ranked.Percentage,
	})
}

// RecentResults lists the newest results across all classes.
// GET /results?limit=
func (h *Handler) RecentResults(c *gin.Context) {
	recent, err := h.Results.Recent(c.Request.Context(), queryLimit(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get results"})
		return
	}
	if recent == nil {
		recent = []*domain.GameResult{}
	}

	c.JSON(http.StatusOK, recent)
}
