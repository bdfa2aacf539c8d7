package game

import "number_rush/internal/domain"

// IsPrime reports whether n is prime. Numbers below 2 are never prime.
func IsPrime(n int) bool {
	if n < 2 {
		return false
	}
	for i := 2; i*i <= n; i++ {
		if n%i == 0 {
			return false
		}
	}
	return true
}

// Matches reports whether n belongs to the target sequence of rule.
func Matches(rule domain.Rule, n int) bool {
	switch rule {
	case domain.RuleSequence:
		return true
	case domain.RuleOdd:
		return n%2 == 1
	case domain.RuleEven:
		return n%2 == 0
	case domain.RulePrime:
		return IsPrime(n)
	default:
		return false
	}
}

// TargetSequence returns the numbers in [1, max] matching rule, ascending.
// It is recomputed on every call.
func TargetSequence(max int, rule domain.Rule) []int {
	seq := make([]int, 0, max)
	for n := 1; n <= max; n++ {
		if Matches(rule, n) {
			seq = append(seq, n)
		}
	}
	return seq
}
