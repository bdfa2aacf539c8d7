package service

// Percentile is the inclusive share of a class at or below a time:
// 100 * betterOrEqual / total, and 0 for an empty class.
func Percentile(betterOrEqual, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(betterOrEqual) / float64(total) * 100
}
