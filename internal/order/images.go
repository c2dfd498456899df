package order

import (
	"regexp"
	"strings"

	"github.com/reportlens/reportlens/pkg/core"
)

var (
	nonWordPattern  = regexp.MustCompile(`[^\w\s]`)
	separatorsMatch = regexp.MustCompile(`[\s_]+`)
)

// ByImageStems orders pages against the sequence of registered image
// resource stems. Reports exported by slide tooling carry one image
// per page, registered in presentation order, so the image names are
// a reliable ordering signal even when no explicit manifest exists.
//
// Matching runs in two passes. Exact matches on the normalized
// display name are claimed first. The remaining pages and slots are
// then paired greedily by word-overlap score, always assigning the
// globally best-scoring pair, until either side is exhausted; a free
// slot still claims a page when no words overlap at all. Pages left
// over once the slots run out are appended in discovery order. Not
// applicable when no stems are registered.
func ByImageStems(stems []string) Strategy {
	return func(pages []*core.Page) ([]*core.Page, bool) {
		if len(stems) == 0 {
			return nil, false
		}

		slots := make([]*core.Page, len(stems))
		claimed := make(map[*core.Page]bool, len(pages))

		normStems := make([]string, len(stems))
		for i, stem := range stems {
			normStems[i] = normalize(stem)
		}

		// Pass 1: exact normalized matches.
		for i, norm := range normStems {
			for _, p := range pages {
				if !claimed[p] && normalize(p.DisplayName) == norm {
					slots[i] = p
					claimed[p] = true
					break
				}
			}
		}

		// Pass 2: greedy fuzzy assignment of leftovers. Starting below
		// zero lets a disjoint-name pair still fill a slot; ties keep
		// the earliest slot and page.
		for {
			bestScore := -1.0
			bestSlot, bestPage := -1, -1
			for i := range slots {
				if slots[i] != nil {
					continue
				}
				stemWords := strings.Split(normStems[i], "_")
				for j, p := range pages {
					if claimed[p] {
						continue
					}
					score := overlapScore(strings.Split(normalize(p.DisplayName), "_"), stemWords)
					if score > bestScore {
						bestScore, bestSlot, bestPage = score, i, j
					}
				}
			}
			if bestSlot < 0 {
				break
			}
			slots[bestSlot] = pages[bestPage]
			claimed[pages[bestPage]] = true
		}

		ordered := make([]*core.Page, 0, len(pages))
		for _, p := range slots {
			if p != nil {
				ordered = append(ordered, p)
			}
		}
		for _, p := range pages {
			if !claimed[p] {
				ordered = append(ordered, p)
			}
		}
		return ordered, true
	}
}

// normalize lowercases, strips punctuation, and collapses separator
// runs to single underscores, so "Q3 – Sales (EMEA)" and
// "q3_sales_emea" compare equal.
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonWordPattern.ReplaceAllString(s, " ")
	s = separatorsMatch.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// overlapScore sums, for each page word, its best prefix similarity
// against any stem word. Higher means a closer name match.
func overlapScore(pageWords, stemWords []string) float64 {
	var total float64
	for _, pw := range pageWords {
		best := 0.0
		for _, sw := range stemWords {
			if sim := wordSimilarity(pw, sw); sim > best {
				best = sim
			}
		}
		total += best
	}
	return total
}

// wordSimilarity is the shared-prefix length over the longer word's
// length, in [0, 1].
func wordSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	prefix := 0
	for prefix < n && a[prefix] == b[prefix] {
		prefix++
	}
	longer := len(a)
	if len(b) > longer {
		longer = len(b)
	}
	return float64(prefix) / float64(longer)
}
