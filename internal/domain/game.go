package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Difficulty - размер поля
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyCrazy  Difficulty = "crazy"
)

// Rule - порядок, в котором нужно нажимать числа
type Rule string

const (
	RuleSequence Rule = "sequence"
	RuleOdd      Rule = "odd"
	RuleEven     Rule = "even"
	RulePrime    Rule = "prime"
)

// DifficultyConfig describes the grid for a difficulty.
// Max is Size*Size for every entry in Difficulties.
type DifficultyConfig struct {
	Size int `json:"size"`
	Max  int `json:"max"`
}

var Difficulties = map[Difficulty]DifficultyConfig{
	DifficultyEasy:   {Size: 3, Max: 9},
	DifficultyMedium: {Size: 5, Max: 25},
	DifficultyHard:   {Size: 7, Max: 49},
	DifficultyCrazy:  {Size: 10, Max: 100},
}

// AllDifficulties lists difficulties in display order.
var AllDifficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyCrazy}

// AllRules lists rules in display order.
var AllRules = []Rule{RuleSequence, RuleOdd, RuleEven, RulePrime}

// RuleLabels are the labels shown in the rule picker.
var RuleLabels = map[Rule]string{
	RuleSequence: "依序",
	RuleOdd:      "奇數",
	RuleEven:     "偶數",
	RulePrime:    "質數",
}

// Config returns the grid config and whether the difficulty is known.
func (d Difficulty) Config() (DifficultyConfig, bool) {
	cfg, ok := Difficulties[d]
	return cfg, ok
}

func (d Difficulty) Valid() bool {
	_, ok := Difficulties[d]
	return ok
}

func (r Rule) Valid() bool {
	_, ok := RuleLabels[r]
	return ok
}

func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("unknown difficulty: %q", s)
	}
	return d, nil
}

func ParseRule(s string) (Rule, error) {
	r := Rule(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown rule: %q", s)
	}
	return r, nil
}

const (
	AnonymousPlayerName = "匿名玩家"
	MaxPlayerNameLength = 20
)

// NormalizePlayerName trims the name, falls back to the anonymous label
// and cuts it to MaxPlayerNameLength runes.
func NormalizePlayerName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return AnonymousPlayerName
	}
	if utf8.RuneCountInString(name) > MaxPlayerNameLength {
		name = string([]rune(name)[:MaxPlayerNameLength])
	}
	return name
}

// GameResult - результат пройденной игры для таблицы лидеров
type GameResult struct {
	ID             string     `db:"id" json:"id,omitempty"`
	Difficulty     Difficulty `db:"difficulty" json:"difficulty"`
	Rule           Rule       `db:"rule" json:"rule"`
	CompletionTime float64    `db:"completion_time" json:"completionTime"`
	PlayerName     string     `db:"player_name" json:"playerName"`
	Timestamp      int64      `db:"timestamp" json:"timestamp"` // ms since epoch, set by the client
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
}
