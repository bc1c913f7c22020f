package announce

import "strings"

// unknownRank sorts categories outside the table after every known one.
// Ties keep first-encountered order (sort is stable).
const unknownRank = 100

// categoryRank fixes the order groups are announced in. Lower ranks speak
// first.
var categoryRank = map[string]int{
	"reminders": 1,
	"todo":      2,
	"shopping":  3,
	"work":      4,
	"personal":  5,
	"health":    6,
	"finance":   7,
	"learning":  8,
	"other":     9,
}

// Rank returns the announcement priority for a category label. Matching is
// case-insensitive.
func Rank(category string) int {
	if r, ok := categoryRank[strings.ToLower(strings.TrimSpace(category))]; ok {
		return r
	}
	return unknownRank
}
