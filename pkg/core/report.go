package core

// FieldRef identifies one field bound to a visual: the owning entity
// (table) and the resolved property name. For hierarchy-level bindings
// the name carries the level, e.g. "Date (Month)".
type FieldRef struct {
	Entity string `json:"entity"`
	Name   string `json:"name"`
}

// Visual is one visual element on a report page with its resolved
// type, title, and field bindings split into measures and dimensions.
type Visual struct {
	// ID is the visual's stable identifier (folder name or config name)
	ID string `json:"visual_id"`
	// Type is the free-form visual type tag, e.g. "card",
	// "clusteredColumnChart"; "unknown" when unresolvable
	Type string `json:"visual_type"`
	// Title is the visual's declared title, if any
	Title string `json:"title"`
	// Measures are measure-bearing field references, first-seen order
	Measures []FieldRef `json:"measures"`
	// Dimensions are grouping field references, first-seen order.
	// Serialized as "columns" to match the downstream context schema.
	Dimensions []FieldRef `json:"columns"`
	Width      int        `json:"width"`
	Height     int        `json:"height"`
}

// Page is one report page. Identity is the system Name (folder or
// section name); DisplayName and Ordinal may be rewritten by the
// page orderer.
type Page struct {
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	Ordinal     int       `json:"ordinal"`
	Hidden      bool      `json:"is_hidden"`
	Visuals     []*Visual `json:"visuals"`
}

// VisiblePages filters out hidden pages, preserving order.
func VisiblePages(pages []*Page) []*Page {
	visible := make([]*Page, 0, len(pages))
	for _, p := range pages {
		if !p.Hidden {
			visible = append(visible, p)
		}
	}
	return visible
}
