// Package core defines the shared domain types for reportlens:
// semantic-model records (tables, measures, relationships), report
// structure (pages, visuals, field bindings), and synthesized queries.
//
// The types here carry no behavior beyond lookups; parsing lives in
// internal/tmdl and internal/binding, synthesis in internal/dax.
package core
