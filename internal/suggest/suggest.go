package suggest

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Closest returns the option nearest to input by edit distance, if any is
// close enough to be a plausible typo.
func Closest(input string, options []string) (string, bool) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return "", false
	}
	best, bestDist := "", -1
	for _, opt := range options {
		d := levenshtein.ComputeDistance(input, strings.ToLower(opt))
		if bestDist < 0 || d < bestDist {
			best, bestDist = opt, d
		}
	}
	if bestDist < 0 || bestDist > max(2, len(input)/3) {
		return "", false
	}
	return best, true
}
