package storage

import "strconv"

// LineKey builds the grouping key for a snapshot line. A nil line gets its
// own key and never collides with any numeric line, including 0.
func LineKey(line *float64) string {
	if line == nil {
		return "none"
	}
	return strconv.FormatFloat(*line, 'g', -1, 64)
}
