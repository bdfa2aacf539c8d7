package handlers

import (
	"net/http"

	"number_rush/internal/domain"
	"number_rush/internal/game"

	"github.com/gin-gonic/gin"
)

type difficultyInfo struct {
	ID   domain.Difficulty `json:"id"`
	Size int               `json:"size"`
	Max  int               `json:"max"`
}

type ruleInfo struct {
	ID    domain.Rule `json:"id"`
	Label string      `json:"label"`
}

// GameConfig describes the selectable difficulties and rules.
// GET /config
func (h *Handler) GameConfig(c *gin.Context) {
	diffs := make([]difficultyInfo, 0, len(domain.AllDifficulties))
	for _, d := range domain.AllDifficulties {
		cfg, _ := d.Config()
		diffs = append(diffs, difficultyInfo{ID: d, Size: cfg.Size, Max: cfg.Max})
	}
	rules := make([]ruleInfo, 0, len(domain.AllRules))
	for _, r := range domain.AllRules {
		rules = append(rules, ruleInfo{ID: r, Label: domain.RuleLabels[r]})
	}

	c.JSON(http.StatusOK, gin.H{
		"difficulties":      diffs,
		"rules":             rules,
		"boardMode":         h.BoardMode,
		"wrongClickPulseMs": game.WrongClickPulse.Milliseconds(),
	})
}

// TargetSequence returns the numbers to click, in order.
// GET /target-sequence?difficulty=&rule=
func (h *Handler) TargetSequence(c *gin.Context) {
	d, r, ok := classFromQuery(c)
	if !ok {
		return
	}
	cfg, _ := d.Config()

	c.JSON(http.StatusOK, gin.H{
		"max":      cfg.Max,
		"sequence": game.TargetSequence(cfg.Max, r),
	})
}
