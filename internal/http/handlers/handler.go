package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"number_rush/internal/domain"
	"number_rush/internal/game"
	"number_rush/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Results   *service.ResultService
	BoardMode game.BoardMode
}

func NewHandler(results *service.ResultService, mode game.BoardMode) *Handler {
	return &Handler{
		Results:   results,
		BoardMode: mode,
	}
}

// queryLimit reads ?limit=; anything unparsable falls back to the default.
func queryLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		return 0
	}
	return n
}

// writeError maps validation failures to 400 and everything else to 500.
func writeError(c *gin.Context, err error, msg string) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

// classFromQuery parses ?difficulty=&rule=.
func classFromQuery(c *gin.Context) (domain.Difficulty, domain.Rule, bool) {
	d, err := domain.ParseDifficulty(c.Query("difficulty"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", "", false
	}
	r, err := domain.ParseRule(c.Query("rule"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", "", false
	}
	return d, r, true
}
