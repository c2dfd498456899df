package core

// ExpressionNotFound is the sentinel recorded when a visual references
// a measure with no definition in the aggregated model. It is never
// empty so downstream consumers always have something to display.
const ExpressionNotFound = "(expression not found in model)"

// Query is one synthesized DAX query, traceable to exactly one
// (page, visual, field) triple.
type Query struct {
	// Label combines the visual type and field name for display
	Label string `json:"label"`
	// VisualType is the originating visual's type tag
	VisualType string `json:"visual_type"`
	// MeasureName is empty for dimension-only listing queries
	MeasureName string `json:"measure_name,omitempty"`
	// MeasureEntity is the bound field's owning table
	MeasureEntity string `json:"measure_entity,omitempty"`
	// DAX is the ready-to-execute query text
	DAX string `json:"dax"`
	// MeasureExpression is the originating measure's calculation text,
	// or ExpressionNotFound when the model has no matching definition.
	// Empty only for dimension-only queries.
	MeasureExpression string `json:"measure_dax"`
}

// QueryGroup holds the queries synthesized for one page.
type QueryGroup struct {
	// SlideNumber is the 1-based position in the ordered page list
	SlideNumber int `json:"slide_number"`
	// PageName is the page's display name
	PageName string  `json:"page_name"`
	Queries  []Query `json:"queries"`
}
