package dax

import (
	"strings"
	"testing"

	"github.com/reportlens/reportlens/pkg/core"
)

func demoModel() *core.Model {
	m := core.NewModel()
	m.Measures = []core.Measure{
		{Table: "Sales", Name: "Total Revenue", Expression: "SUM(Sales[Amount])"},
		{Table: "Sales", Name: "Order Count", Expression: "COUNTROWS(Sales)"},
	}
	return m
}

func singlePage(visuals ...*core.Visual) []*core.Page {
	return []*core.Page{{Name: "p1", DisplayName: "Overview", Visuals: visuals}}
}

func TestCardYieldsRowQuery(t *testing.T) {
	pages := singlePage(&core.Visual{
		Type:     "card",
		Measures: []core.FieldRef{{Entity: "Sales", Name: "Total Revenue"}},
	})
	groups := Build(pages, demoModel())

	if len(groups) != 1 || groups[0].SlideNumber != 1 || groups[0].PageName != "Overview" {
		t.Fatalf("unexpected group shape: %+v", groups)
	}
	if len(groups[0].Queries) != 1 {
		t.Fatalf("got %d queries, want 1", len(groups[0].Queries))
	}
	q := groups[0].Queries[0]
	if q.DAX != "EVALUATE\nROW(\"Total Revenue\", [Total Revenue])" {
		t.Errorf("unexpected query text:\n%s", q.DAX)
	}
	if q.Label != "card — Total Revenue" {
		t.Errorf("unexpected label %q", q.Label)
	}
	if q.MeasureExpression != "SUM(Sales[Amount])" {
		t.Errorf("expression not resolved: %q", q.MeasureExpression)
	}
}

func TestChartYieldsGroupedTopN(t *testing.T) {
	pages := singlePage(&core.Visual{
		Type:       "clusteredColumnChart",
		Measures:   []core.FieldRef{{Entity: "Sales", Name: "Total Revenue"}},
		Dimensions: []core.FieldRef{{Entity: "Product Catalog", Name: "Category"}},
	})
	q := Build(pages, demoModel())[0].Queries[0]

	for _, want := range []string{
		"TOPN(\n    20,",
		"'Product Catalog'[Category]",
		"\"Total Revenue\", [Total Revenue]",
		"[Total Revenue], DESC",
	} {
		if !strings.Contains(q.DAX, want) {
			t.Errorf("query missing %q:\n%s", want, q.DAX)
		}
	}
}

func TestChartWithoutGroupingColumnFallsBackToRow(t *testing.T) {
	pages := singlePage(&core.Visual{
		Type:       "barChart",
		Measures:   []core.FieldRef{{Entity: "Sales", Name: "Order Count"}},
		Dimensions: []core.FieldRef{{Entity: "", Name: "Category"}},
	})
	q := Build(pages, demoModel())[0].Queries[0]
	if !strings.HasPrefix(q.DAX, "EVALUATE\nROW(") {
		t.Errorf("expected ROW fallback, got:\n%s", q.DAX)
	}
}

func TestUnknownMeasureGetsSentinel(t *testing.T) {
	pages := singlePage(&core.Visual{
		Type:     "card",
		Measures: []core.FieldRef{{Entity: "Sales", Name: "Nope"}},
	})
	q := Build(pages, demoModel())[0].Queries[0]
	if q.MeasureExpression != core.ExpressionNotFound {
		t.Errorf("got %q, want sentinel", q.MeasureExpression)
	}
}

func TestNameOnlyLookupFallback(t *testing.T) {
	pages := singlePage(&core.Visual{
		Type:     "card",
		Measures: []core.FieldRef{{Entity: "WrongTable", Name: "Total Revenue"}},
	})
	q := Build(pages, demoModel())[0].Queries[0]
	if q.MeasureExpression != "SUM(Sales[Amount])" {
		t.Errorf("name-only fallback failed: %q", q.MeasureExpression)
	}
}

func TestSkippedVisualTypes(t *testing.T) {
	var visuals []*core.Visual
	for _, vtype := range []string{"slicer", "actionButton", "image", "textbox", "shape", "unknown"} {
		visuals = append(visuals, &core.Visual{
			Type:     vtype,
			Measures: []core.FieldRef{{Entity: "Sales", Name: "Total Revenue"}},
		})
	}
	groups := Build(singlePage(visuals...), demoModel())
	if len(groups[0].Queries) != 0 {
		t.Errorf("skipped visual types produced queries: %+v", groups[0].Queries)
	}
}

func TestMeasureCapPerVisual(t *testing.T) {
	visual := &core.Visual{Type: "lineChart"}
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		visual.Measures = append(visual.Measures, core.FieldRef{Entity: "Sales", Name: name})
	}
	groups := Build(singlePage(visual), demoModel())
	if len(groups[0].Queries) != 3 {
		t.Errorf("got %d queries, want 3", len(groups[0].Queries))
	}
}

func TestPageScopedDedup(t *testing.T) {
	dup := core.FieldRef{Entity: "Sales", Name: "Total Revenue"}
	pages := []*core.Page{
		{DisplayName: "One", Visuals: []*core.Visual{
			{Type: "card", Measures: []core.FieldRef{dup}},
			{Type: "card", Measures: []core.FieldRef{dup}},
			{Type: "gauge", Measures: []core.FieldRef{dup}},
		}},
		{DisplayName: "Two", Visuals: []*core.Visual{
			{Type: "card", Measures: []core.FieldRef{dup}},
		}},
	}
	groups := Build(pages, demoModel())
	// Same (type, entity, name) on one page collapses; a different
	// visual type or a different page does not.
	if len(groups[0].Queries) != 2 {
		t.Errorf("page One: got %d queries, want 2", len(groups[0].Queries))
	}
	if len(groups[1].Queries) != 1 {
		t.Errorf("page Two: got %d queries, want 1", len(groups[1].Queries))
	}
}

func TestDimensionOnlyTableListing(t *testing.T) {
	pages := singlePage(&core.Visual{
		Type: "tableEx",
		Dimensions: []core.FieldRef{
			{Entity: "Sales", Name: "Region"},
			{Entity: "", Name: "Unqualified"},
			{Entity: "Sales", Name: "Segment"},
		},
	})
	queries := Build(pages, demoModel())[0].Queries
	if len(queries) != 1 {
		t.Fatalf("got %d queries, want 1 (cap at 2, unqualified skipped)", len(queries))
	}
	q := queries[0]
	if q.DAX != "EVALUATE\nTOPN(20, SUMMARIZECOLUMNS('Sales'[Region]))" {
		t.Errorf("unexpected listing query:\n%s", q.DAX)
	}
	if q.Label != "table — Region" {
		t.Errorf("unexpected label %q", q.Label)
	}
	if q.MeasureName != "" {
		t.Errorf("listing query should not name a measure: %q", q.MeasureName)
	}
}

func TestDimensionOnlyNonTableVisualYieldsNothing(t *testing.T) {
	pages := singlePage(&core.Visual{
		Type:       "lineChart",
		Dimensions: []core.FieldRef{{Entity: "Sales", Name: "Region"}},
	})
	if got := len(Build(pages, demoModel())[0].Queries); got != 0 {
		t.Errorf("got %d queries, want 0", got)
	}
}

func TestEmptyPagesStillProduceGroups(t *testing.T) {
	pages := []*core.Page{{DisplayName: "Blank"}}
	groups := Build(pages, demoModel())
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	if groups[0].Queries == nil || len(groups[0].Queries) != 0 {
		t.Errorf("expected empty non-nil query list, got %+v", groups[0].Queries)
	}
}
