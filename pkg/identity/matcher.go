// pkg/identity/matcher.go
package identity

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// MatcherConfig holds the fuzzy-matching thresholds.
type MatcherConfig struct {
	// ConflictThreshold is the minimum similarity at which two candidate
	// names confirm an identity conflict. Matches below it are not
	// reported: a false positive in the audit trail is more damaging than
	// a missed conflict.
	ConflictThreshold float64
}

// DefaultMatcherConfig returns the production thresholds.
func DefaultMatcherConfig() MatcherConfig {
	return MatcherConfig{
		ConflictThreshold: 0.85,
	}
}

// Matcher scores short identity strings (typically first names) for
// near-duplicate detection.
type Matcher struct {
	config MatcherConfig
}

// NewMatcher creates a matcher with the given configuration.
func NewMatcher(config MatcherConfig) *Matcher {
	if config.ConflictThreshold <= 0 || config.ConflictThreshold > 1 {
		config.ConflictThreshold = DefaultMatcherConfig().ConflictThreshold
	}
	return &Matcher{config: config}
}

// Similarity returns a normalized ratio in [0, 1] between two strings: the
// better of a Ratcliff/Obershelp matching-blocks ratio and a normalized
// Levenshtein ratio. Comparison is case- and whitespace-insensitive.
func (m *Matcher) Similarity(a, b string) float64 {
	a = strings.ToUpper(strings.TrimSpace(a))
	b = strings.ToUpper(strings.TrimSpace(b))

	if a == b {
		if a == "" {
			return 0
		}
		return 1
	}

	ro := ratcliffObershelp(a, b)
	lev := levenshteinRatio(a, b)
	if lev > ro {
		return lev
	}
	return ro
}

// Confirm decides whether two candidate records sharing a loose signature
// are the same identity. Gender acts as a veto: when both sides carry a
// non-empty gender and they disagree, the pair is a non-match no matter how
// similar the names are.
func (m *Matcher) Confirm(aName, bName, aGender, bGender string) bool {
	ga, gb := NormalizeGender(aGender), NormalizeGender(bGender)
	if ga != "" && gb != "" && ga != gb {
		return false
	}
	return m.Similarity(aName, bName) >= m.config.ConflictThreshold
}

// levenshteinRatio converts edit distance to a similarity ratio over the
// longer string.
func levenshteinRatio(a, b string) float64 {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 0
	}
	distance := levenshtein.ComputeDistance(a, b)
	return 1 - float64(distance)/float64(maxLen)
}

// ratcliffObershelp computes the matching-blocks similarity ratio:
// 2*M / (len(a)+len(b)) where M counts characters inside recursively
// matched common substrings.
func ratcliffObershelp(a, b string) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 0
	}
	return 2 * float64(matchingBlocks(a, b)) / float64(total)
}

// matchingBlocks finds the longest common substring and recurses into the
// unmatched left and right remainders.
func matchingBlocks(a, b string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	startA, startB, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}

	matched := size
	matched += matchingBlocks(a[:startA], b[:startB])
	matched += matchingBlocks(a[startA+size:], b[startB+size:])
	return matched
}

func longestCommonSubstring(a, b string) (startA, startB, size int) {
	// Dynamic-programming table over byte positions; identity strings are
	// short so the quadratic cost is irrelevant.
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > size {
					size = curr[j]
					startA = i - size
					startB = j - size
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
	}
	return startA, startB, size
}
