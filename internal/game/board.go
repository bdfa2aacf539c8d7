package game

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"number_rush/internal/domain"
)

// BoardMode decides which numbers are laid out on the board.
type BoardMode string

const (
	// BoardDistractors shows every number 1..max; non-target tiles are
	// clickable and always wrong.
	BoardDistractors BoardMode = "distractors"
	// BoardTargetsOnly shows only the numbers of the target sequence.
	BoardTargetsOnly BoardMode = "targets"
)

func ParseBoardMode(s string) (BoardMode, error) {
	switch BoardMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", BoardDistractors:
		return BoardDistractors, nil
	case BoardTargetsOnly:
		return BoardTargetsOnly, nil
	default:
		return "", fmt.Errorf("unknown board mode: %q", s)
	}
}

// Intn returns a uniform int in [0, n).
type Intn func(n int) int

// cryptoIntn draws from crypto/rand like the rest of the games do.
func cryptoIntn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// should never happen
		return 0
	}
	return int(v.Int64())
}

// Shuffle returns a fresh uniform permutation of 1..max.
func Shuffle(max int) []int {
	return ShuffleWith(max, cryptoIntn)
}

// ShuffleWith is Shuffle with an explicit random source.
func ShuffleWith(max int, intn Intn) []int {
	nums := make([]int, max)
	for i := range nums {
		nums[i] = i + 1
	}
	shuffleInPlace(nums, intn)
	return nums
}

// Fisher–Yates: from the last index down to 1, swap with a uniform index in [0, i].
func shuffleInPlace(nums []int, intn Intn) {
	for i := len(nums) - 1; i > 0; i-- {
		j := intn(i + 1)
		nums[i], nums[j] = nums[j], nums[i]
	}
}

// NewBoard lays out a fresh board for max and rule according to mode.
func NewBoard(mode BoardMode, max int, rule domain.Rule, intn Intn) []int {
	if intn == nil {
		intn = cryptoIntn
	}
	if mode == BoardTargetsOnly {
		nums := TargetSequence(max, rule)
		shuffleInPlace(nums, intn)
		return nums
	}
	return ShuffleWith(max, intn)
}
