// Package dax synthesizes runnable DAX queries from resolved visuals
// and the aggregated model.
//
// Every query carries the originating measure expression alongside
// the runnable text, so downstream consumers can show what a number
// means without re-opening the model. Expression lookup tries the
// fully qualified (table, measure) pair first and falls back to the
// bare measure name; a miss yields a fixed sentinel rather than an
// empty string.
package dax

import (
	"fmt"
	"strings"

	"github.com/reportlens/reportlens/pkg/core"
)

const (
	// maxMeasureQueries caps the per-visual measure queries so dense
	// visuals do not flood the output.
	maxMeasureQueries = 3
	// maxListingQueries caps the column listing queries emitted for
	// dimension-only tables.
	maxListingQueries = 2
	// topNRows bounds every grouped query.
	topNRows = 20
)

// Visual types that never yield queries: they either hold no data
// binding or only filter other visuals.
var skippedVisualTypes = map[string]bool{
	"slicer":       true,
	"actionButton": true,
	"image":        true,
	"textbox":      true,
	"shape":        true,
	"unknown":      true,
}

// Visual families that display one scalar; these get a ROW query
// instead of a grouped TOPN.
var singleValueTypes = map[string]bool{
	"card":         true,
	"kpiVisual":    true,
	"singleValue":  true,
	"gauge":        true,
	"multiRowCard": true,
}

// Tabular visual types that justify a listing query when they bind
// columns but no measures.
var listingVisualTypes = map[string]bool{
	"table":   true,
	"matrix":  true,
	"tableEx": true,
}

// Build generates one query group per page, in page order. Slide
// numbers start at 1. Queries are deduplicated per page on the
// (visual type, entity, name) triple, so two identical cards on one
// page produce a single query.
func Build(pages []*core.Page, model *core.Model) []core.QueryGroup {
	ix := indexMeasures(model)

	groups := make([]core.QueryGroup, 0, len(pages))
	for i, page := range pages {
		group := core.QueryGroup{
			SlideNumber: i + 1,
			PageName:    page.DisplayName,
			Queries:     []core.Query{},
		}
		seen := map[string]bool{}

		for _, visual := range page.Visuals {
			if skippedVisualTypes[visual.Type] {
				continue
			}

			measures := visual.Measures
			if len(measures) > maxMeasureQueries {
				measures = measures[:maxMeasureQueries]
			}
			for _, m := range measures {
				key := visual.Type + ":" + m.Entity + ":" + m.Name
				if seen[key] {
					continue
				}
				seen[key] = true

				expr := ix.resolve(m.Entity, m.Name)
				if expr == "" {
					expr = core.ExpressionNotFound
				}
				group.Queries = append(group.Queries, core.Query{
					Label:             visual.Type + " — " + m.Name,
					VisualType:        visual.Type,
					MeasureName:       m.Name,
					MeasureEntity:     m.Entity,
					DAX:               queryFor(visual.Type, m.Name, visual.Dimensions),
					MeasureExpression: expr,
				})
			}

			if len(visual.Measures) == 0 && len(visual.Dimensions) > 0 && listingVisualTypes[visual.Type] {
				cols := visual.Dimensions
				if len(cols) > maxListingQueries {
					cols = cols[:maxListingQueries]
				}
				for _, col := range cols {
					if col.Entity == "" {
						continue
					}
					key := visual.Type + ":col:" + col.Entity + ":" + col.Name
					if seen[key] {
						continue
					}
					seen[key] = true

					group.Queries = append(group.Queries, core.Query{
						Label:         "table — " + col.Name,
						VisualType:    visual.Type,
						MeasureEntity: col.Entity,
						DAX: fmt.Sprintf("EVALUATE\nTOPN(%d, SUMMARIZECOLUMNS('%s'[%s]))",
							topNRows, col.Entity, col.Name),
					})
				}
			}
		}

		groups = append(groups, group)
	}
	return groups
}

// queryFor renders the runnable query text for one measure binding.
// Single-value visuals always get a ROW query; everything else gets a
// descending TOPN over the first entity-qualified grouping column, or
// a ROW query when the visual binds no usable column.
func queryFor(visualType, measureName string, dims []core.FieldRef) string {
	ref := "[" + measureName + "]"
	row := fmt.Sprintf("EVALUATE\nROW(%q, %s)", measureName, ref)

	if singleValueTypes[visualType] {
		return row
	}

	group := ""
	for _, d := range dims {
		if d.Entity != "" {
			group = quoteEntity(d.Entity) + "[" + d.Name + "]"
			break
		}
	}
	if group == "" {
		return row
	}
	return fmt.Sprintf(
		"EVALUATE\nTOPN(\n    %d,\n    SUMMARIZECOLUMNS(\n        %s,\n        %q, %s\n    ),\n    %s, DESC\n)",
		topNRows, group, measureName, ref, ref)
}

// quoteEntity wraps table names containing spaces in single quotes,
// per DAX identifier rules.
func quoteEntity(name string) string {
	if strings.Contains(name, " ") {
		return "'" + name + "'"
	}
	return name
}

type measureKey struct {
	table, name string
}

type measureIndex struct {
	qualified map[measureKey]string
	byName    map[string]string
}

func indexMeasures(model *core.Model) measureIndex {
	ix := measureIndex{
		qualified: make(map[measureKey]string, len(model.Measures)),
		byName:    make(map[string]string, len(model.Measures)),
	}
	for _, m := range model.Measures {
		ix.qualified[measureKey{m.Table, m.Name}] = m.Expression
		ix.byName[m.Name] = m.Expression
	}
	return ix
}

// resolve returns the first non-empty expression for the reference,
// preferring the fully qualified entry.
func (ix measureIndex) resolve(entity, name string) string {
	if expr := ix.qualified[measureKey{entity, name}]; expr != "" {
		return expr
	}
	return ix.byName[name]
}
