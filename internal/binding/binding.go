// Package binding resolves a visual's declarative JSON into its type,
// title, and bound field references, normalized across the two schema
// generations Power BI reports use:
//
//   - modern: visual.json with a nested query.queryState, one
//     projection list per role, each field a tagged object
//     (Measure / Column / Aggregation / HierarchyLevel)
//   - legacy: a visualContainer config blob with singleVisual and a
//     flat projections map of "Entity.Property" queryRef strings
//
// Both variants produce the same canonical measure/dimension lists.
// Unrecognized field shapes are omitted individually; the rest of the
// visual's bindings are kept.
package binding

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/reportlens/reportlens/pkg/core"
)

// measureRoles names the projection roles that carry measures
// (values/metrics); every other role with bound fields is treated as
// carrying dimensions (axes/groupings).
var measureRoles = map[string]bool{
	"Y":        true,
	"Values":   true,
	"Tooltips": true,
	"Size":     true,
	"Color":    true,
	"Details":  true,

	"TargetValue": true,
	"TrendLine":   true,
	"Indicator":   true,
	"Goal":        true,

	"KPIIndicatorValue": true,
	"KPIStatus":         true,
	"KPITrend":          true,
}

// Func(Entity.Property) aggregation wrapper in legacy queryRef strings.
var aggRefPattern = regexp.MustCompile(`^\w+\((.+)\)$`)

// ResolveModern parses one modern visual.json document.
// id is the visual's folder name.
func ResolveModern(id string, data []byte) (*core.Visual, error) {
	var cfg modernConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	v := newVisual(id)
	v.Width = int(cfg.Position.Width)
	v.Height = int(cfg.Position.Height)
	if cfg.Visual.VisualType != "" {
		v.Type = cfg.Visual.VisualType
	}
	v.Title = cfg.Visual.Objects.titleText()

	acc := newAccumulator(v)
	for _, role := range cfg.Visual.Query.QueryState {
		for _, proj := range role.Projections {
			addModernField(acc, proj.Field)
		}
	}
	return v, nil
}

// ResolveLegacy parses one legacy visualContainer config blob.
// The visual identifier comes from the config's own name field.
func ResolveLegacy(data []byte) (*core.Visual, error) {
	var cfg legacyConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	v := newVisual(cfg.Name)
	if cfg.SingleVisual.VisualType != "" {
		v.Type = cfg.SingleVisual.VisualType
	}
	v.Title = cfg.SingleVisual.Objects.titleText()

	acc := newAccumulator(v)
	for _, role := range cfg.SingleVisual.Projections {
		for _, item := range role.Entries {
			if item.QueryRef == "" {
				continue
			}
			entity, prop, isAgg := parseQueryRef(item.QueryRef)
			if prop == "" {
				continue
			}
			if measureRoles[role.Role] || isAgg {
				acc.addMeasure(entity, prop)
			} else {
				acc.addDimension(entity, prop)
			}
		}
	}
	return v, nil
}

// parseQueryRef splits a legacy queryRef string into its entity and
// property parts. "Sum(Table.Column)" marks an aggregation binding;
// the function name itself is not retained.
func parseQueryRef(ref string) (entity, prop string, isAgg bool) {
	inner := strings.TrimSpace(ref)
	if m := aggRefPattern.FindStringSubmatch(inner); m != nil {
		inner = m[1]
		isAgg = true
	}
	if entity, prop, ok := strings.Cut(inner, "."); ok {
		return strings.TrimSpace(entity), strings.TrimSpace(prop), isAgg
	}
	return "", strings.TrimSpace(inner), isAgg
}

// addModernField routes one modern field object to the measure or
// dimension list. Aggregations wrap a grouping column, not a real
// measure, so they land under dimensions; hierarchy levels become
// dimensions named "<property> (<level>)".
func addModernField(acc *accumulator, f fieldNode) {
	switch {
	case f.Measure != nil:
		if entity := f.Measure.Expression.SourceRef.Entity; entity != "" {
			acc.addMeasure(entity, f.Measure.Property)
		}

	case f.Column != nil:
		if entity := f.Column.Expression.SourceRef.Entity; entity != "" {
			acc.addDimension(entity, f.Column.Property)
		}

	case f.Aggregation != nil:
		col := f.Aggregation.Expression.Column
		if col == nil {
			return
		}
		if entity := col.Expression.SourceRef.Entity; entity != "" {
			acc.addDimension(entity, col.Property)
		}

	case f.HierarchyLevel != nil:
		pv := f.HierarchyLevel.Expression.Hierarchy.Expression.PropertyVariationSource
		name := pv.Property
		if f.HierarchyLevel.Level != "" && name != "" {
			name = name + " (" + f.HierarchyLevel.Level + ")"
		}
		if entity := pv.Expression.SourceRef.Entity; entity != "" {
			acc.addDimension(entity, name)
		}
	}
}

func newVisual(id string) *core.Visual {
	return &core.Visual{
		ID:         id,
		Type:       "unknown",
		Measures:   []core.FieldRef{},
		Dimensions: []core.FieldRef{},
	}
}

// accumulator deduplicates field references by (entity, name) across
// both lists, preserving first-occurrence order.
type accumulator struct {
	visual *core.Visual
	seen   map[core.FieldRef]bool
}

func newAccumulator(v *core.Visual) *accumulator {
	return &accumulator{visual: v, seen: make(map[core.FieldRef]bool)}
}

func (a *accumulator) addMeasure(entity, name string) {
	if ref, ok := a.admit(entity, name); ok {
		a.visual.Measures = append(a.visual.Measures, ref)
	}
}

func (a *accumulator) addDimension(entity, name string) {
	if ref, ok := a.admit(entity, name); ok {
		a.visual.Dimensions = append(a.visual.Dimensions, ref)
	}
}

// admit rejects empty names and duplicates. The entity may be empty
// for legacy queryRefs without a table qualifier; such references
// still resolve later via the name-only measure lookup.
func (a *accumulator) admit(entity, name string) (core.FieldRef, bool) {
	ref := core.FieldRef{Entity: entity, Name: name}
	if name == "" || a.seen[ref] {
		return core.FieldRef{}, false
	}
	a.seen[ref] = true
	return ref, true
}
