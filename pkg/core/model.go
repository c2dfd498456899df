package core

// Column is a single column declared on a table.
type Column struct {
	// Name is the column name (quotes stripped)
	Name string `json:"name"`
	// DataType is the declared type tag; "unknown" when unspecified
	DataType string `json:"dataType"`
}

// Measure is a named DAX calculation belonging to a table.
type Measure struct {
	// Table is the owning table name
	Table string `json:"table,omitempty"`
	// Name is the measure name (quotes stripped)
	Name string `json:"name"`
	// Expression is the literal multi-line DAX text; may be empty
	Expression string `json:"dax"`
}

// Table is one table parsed from a semantic-model definition file.
type Table struct {
	Name     string    `json:"name"`
	Columns  []Column  `json:"columns"`
	Measures []Measure `json:"measures,omitempty"`
}

// Relationship links two tables by column name. The two sides may come
// from different definition files, so tables are referenced by name
// rather than by pointer.
type Relationship struct {
	FromTable   string `json:"from_table"`
	FromColumn  string `json:"from_column"`
	ToTable     string `json:"to_table"`
	ToColumn    string `json:"to_column"`
	Cardinality string `json:"cardinality,omitempty"`
	CrossFilter string `json:"cross_filter,omitempty"`
}

// Model is the aggregated semantic model: all tables, a flattened
// measure list, and all relationships. Built once per extraction run
// and treated as immutable afterwards.
type Model struct {
	Tables        []Table        `json:"tables"`
	Measures      []Measure      `json:"measures"`
	Relationships []Relationship `json:"relationships"`
}

// NewModel returns an empty model with non-nil slices so encoded
// output always carries arrays rather than nulls.
func NewModel() *Model {
	return &Model{
		Tables:        []Table{},
		Measures:      []Measure{},
		Relationships: []Relationship{},
	}
}

// IsEmpty reports whether the model carries no records at all.
func (m *Model) IsEmpty() bool {
	return len(m.Tables) == 0 && len(m.Measures) == 0 && len(m.Relationships) == 0
}
