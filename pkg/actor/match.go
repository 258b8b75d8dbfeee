package actor

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
)

var foldCaser = cases.Fold()

// Resolve maps a free-text item reference onto an item actually held in the
// inventory. Exact matches win, then case-insensitive matches, then
// substring containment in either direction, then a distance-bounded fuzzy
// match. Ties are broken by the longest common substring with the query.
// No confident match returns false; Resolve never guesses.
func (inv Inventory) Resolve(query string) (Item, bool) {
	query = strings.TrimSpace(query)
	if query == "" || len(inv) == 0 {
		return Item{}, false
	}

	// Exact, case-sensitive
	if item, ok := inv.Get(query); ok {
		return item, true
	}

	folded := foldCaser.String(query)

	// Exact after case folding
	for _, item := range inv {
		if foldCaser.String(item.Name) == folded {
			return item, true
		}
	}

	// Substring containment either direction ("cypher" in "Translation
	// Cypher", or a verbose query containing the full item name).
	best, bestScore := Item{}, 0
	for _, item := range inv {
		name := foldCaser.String(item.Name)
		if !strings.Contains(name, folded) && !strings.Contains(folded, name) {
			continue
		}
		if score := commonSubstringLen(name, folded); score > bestScore {
			best, bestScore = item, score
		}
	}
	if bestScore > 0 {
		return best, true
	}

	// Distance-bounded fuzzy match for typos.
	bestDist := -1
	for _, item := range inv {
		name := foldCaser.String(item.Name)
		dist := levenshtein.ComputeDistance(folded, name)
		if dist > levenshteinLimit(len(name)) {
			continue
		}
		switch {
		case bestDist == -1 || dist < bestDist:
			best, bestDist = item, dist
			bestScore = commonSubstringLen(name, folded)
		case dist == bestDist:
			if score := commonSubstringLen(name, folded); score > bestScore {
				best, bestScore = item, score
			}
		}
	}
	if bestDist >= 0 {
		return best, true
	}
	return Item{}, false
}

// levenshteinLimit scales the tolerated edit distance with candidate length.
func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

// commonSubstringLen returns the length of the longest common substring.
func commonSubstringLen(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	best := 0
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > best {
					best = cur[j]
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return best
}
