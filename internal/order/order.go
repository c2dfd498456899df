// Package order resolves the canonical display order of report pages.
//
// Ordering signals are modeled as a prioritized list of independent
// strategies, tried in sequence; the first applicable one wins. The
// standard chain is the explicit page-order manifest, then the
// registered image-resource heuristic, then each page's declared
// ordinal. Every resolution is total: all N pages end up with
// distinct ordinals 0..N-1, with discovery order as the tiebreak, so
// repeated runs over the same input are byte-identical.
package order

import (
	"sort"

	"github.com/reportlens/reportlens/pkg/core"
)

// Strategy attempts to order a page list. It returns false when its
// signal is unavailable, letting the chain fall through.
type Strategy func(pages []*core.Page) ([]*core.Page, bool)

// Resolve applies the first applicable strategy and stamps 0-based
// ordinals onto the result. With no applicable strategy the pages
// keep their discovery order.
func Resolve(pages []*core.Page, strategies ...Strategy) []*core.Page {
	ordered := append([]*core.Page(nil), pages...)
	for _, strategy := range strategies {
		if result, ok := strategy(pages); ok {
			ordered = result
			break
		}
	}
	for i, p := range ordered {
		p.Ordinal = i
	}
	return ordered
}

// ByManifest orders pages by their position in an explicit list of
// page identifiers. Pages absent from the manifest are appended after
// all listed pages, in discovery order. Not applicable when the
// manifest is empty.
func ByManifest(ids []string) Strategy {
	return func(pages []*core.Page) ([]*core.Page, bool) {
		if len(ids) == 0 {
			return nil, false
		}
		position := make(map[string]int, len(ids))
		for i, id := range ids {
			position[id] = i
		}
		ordered := append([]*core.Page(nil), pages...)
		sort.SliceStable(ordered, func(i, j int) bool {
			return manifestRank(position, ordered[i]) < manifestRank(position, ordered[j])
		})
		return ordered, true
	}
}

func manifestRank(position map[string]int, p *core.Page) int {
	if rank, ok := position[p.Name]; ok {
		return rank
	}
	return len(position) + 1
}

// ByDeclaredOrdinal orders pages by their own declared ordinal field.
// Always applicable; the stable sort keeps discovery order for ties.
func ByDeclaredOrdinal() Strategy {
	return func(pages []*core.Page) ([]*core.Page, bool) {
		ordered := append([]*core.Page(nil), pages...)
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].Ordinal < ordered[j].Ordinal
		})
		return ordered, true
	}
}
