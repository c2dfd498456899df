package binding

import (
	"testing"

	"github.com/reportlens/reportlens/pkg/core"
)

const modernColumnChart = `{
  "name": "abc123",
  "position": { "x": 10, "y": 20, "width": 640.5, "height": 480 },
  "visual": {
    "visualType": "clusteredColumnChart",
    "objects": {
      "title": [
        { "properties": { "text": { "expr": { "Literal": { "Value": "'Revenue by Region'" } } } } }
      ]
    },
    "query": {
      "queryState": {
        "Y": {
          "projections": [
            { "field": { "Measure": { "Expression": { "SourceRef": { "Entity": "Sales" } }, "Property": "Total Revenue" } } }
          ]
        },
        "Category": {
          "projections": [
            { "field": { "Column": { "Expression": { "SourceRef": { "Entity": "Sales" } }, "Property": "Region" } } }
          ]
        }
      }
    }
  }
}`

func TestResolveModern_MeasureAndColumn(t *testing.T) {
	v, err := ResolveModern("visual1", []byte(modernColumnChart))
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	if v.ID != "visual1" {
		t.Errorf("expected id 'visual1', got %q", v.ID)
	}
	if v.Type != "clusteredColumnChart" {
		t.Errorf("expected type clusteredColumnChart, got %q", v.Type)
	}
	if v.Title != "Revenue by Region" {
		t.Errorf("expected unquoted title, got %q", v.Title)
	}
	if v.Width != 640 || v.Height != 480 {
		t.Errorf("unexpected size: %dx%d", v.Width, v.Height)
	}
	wantM := []core.FieldRef{{Entity: "Sales", Name: "Total Revenue"}}
	if len(v.Measures) != 1 || v.Measures[0] != wantM[0] {
		t.Errorf("unexpected measures: %+v", v.Measures)
	}
	wantD := core.FieldRef{Entity: "Sales", Name: "Region"}
	if len(v.Dimensions) != 1 || v.Dimensions[0] != wantD {
		t.Errorf("unexpected dimensions: %+v", v.Dimensions)
	}
}

func TestResolveModern_AggregationIsDimension(t *testing.T) {
	data := `{
	  "visual": {
	    "visualType": "barChart",
	    "query": { "queryState": { "Y": { "projections": [
	      { "field": { "Aggregation": { "Expression": { "Column": {
	        "Expression": { "SourceRef": { "Entity": "Users" } }, "Property": "UserId"
	      } } } } }
	    ] } } }
	  }
	}`

	v, err := ResolveModern("v", []byte(data))
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(v.Measures) != 0 {
		t.Errorf("aggregation of a plain column must not be a measure: %+v", v.Measures)
	}
	want := core.FieldRef{Entity: "Users", Name: "UserId"}
	if len(v.Dimensions) != 1 || v.Dimensions[0] != want {
		t.Errorf("unexpected dimensions: %+v", v.Dimensions)
	}
}

func TestResolveModern_HierarchyLevel(t *testing.T) {
	data := `{
	  "visual": {
	    "visualType": "lineChart",
	    "query": { "queryState": { "Category": { "projections": [
	      { "field": { "HierarchyLevel": {
	        "Expression": { "Hierarchy": { "Expression": { "PropertyVariationSource": {
	          "Expression": { "SourceRef": { "Entity": "Calendar" } }, "Property": "Date"
	        } } } },
	        "Level": "Month"
	      } } }
	    ] } } }
	  }
	}`

	v, err := ResolveModern("v", []byte(data))
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	want := core.FieldRef{Entity: "Calendar", Name: "Date (Month)"}
	if len(v.Dimensions) != 1 || v.Dimensions[0] != want {
		t.Errorf("expected hierarchy dimension %+v, got %+v", want, v.Dimensions)
	}
}

func TestResolveModern_Dedup(t *testing.T) {
	data := `{
	  "visual": {
	    "visualType": "table",
	    "query": { "queryState": {
	      "Values": { "projections": [
	        { "field": { "Measure": { "Expression": { "SourceRef": { "Entity": "Sales" } }, "Property": "Total" } } },
	        { "field": { "Measure": { "Expression": { "SourceRef": { "Entity": "Sales" } }, "Property": "Total" } } }
	      ] },
	      "Tooltips": { "projections": [
	        { "field": { "Measure": { "Expression": { "SourceRef": { "Entity": "Sales" } }, "Property": "Total" } } }
	      ] }
	    } }
	  }
	}`

	v, err := ResolveModern("v", []byte(data))
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(v.Measures) != 1 {
		t.Errorf("expected deduplicated single measure, got %+v", v.Measures)
	}
}

func TestResolveModern_RoleOrderPreserved(t *testing.T) {
	data := `{
	  "visual": {
	    "visualType": "clusteredColumnChart",
	    "query": { "queryState": {
	      "Category": { "projections": [
	        { "field": { "Column": { "Expression": { "SourceRef": { "Entity": "Sales" } }, "Property": "Region" } } }
	      ] },
	      "Series": { "projections": [
	        { "field": { "Column": { "Expression": { "SourceRef": { "Entity": "Sales" } }, "Property": "Segment" } } }
	      ] },
	      "Y": { "projections": [
	        { "field": { "Measure": { "Expression": { "SourceRef": { "Entity": "Sales" } }, "Property": "Total" } } }
	      ] }
	    } }
	  }
	}`

	// Role order drives the field list order, which downstream decides
	// the grouping column of the synthesized query. Resolve repeatedly
	// to catch any map-iteration randomness creeping back in.
	for i := 0; i < 50; i++ {
		v, err := ResolveModern("v", []byte(data))
		if err != nil {
			t.Fatalf("resolve failed: %v", err)
		}
		want := []core.FieldRef{
			{Entity: "Sales", Name: "Region"},
			{Entity: "Sales", Name: "Segment"},
		}
		if len(v.Dimensions) != 2 || v.Dimensions[0] != want[0] || v.Dimensions[1] != want[1] {
			t.Fatalf("iteration %d: dimensions out of document order: %+v", i, v.Dimensions)
		}
	}
}

func TestResolveModern_UnrecognizedFieldShapeOmitted(t *testing.T) {
	data := `{
	  "visual": {
	    "visualType": "barChart",
	    "query": { "queryState": { "Y": { "projections": [
	      { "field": { "SomethingNew": { "Weird": true } } },
	      { "field": { "Measure": { "Expression": { "SourceRef": { "Entity": "Sales" } }, "Property": "Total" } } }
	    ] } } }
	  }
	}`

	v, err := ResolveModern("v", []byte(data))
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(v.Measures) != 1 {
		t.Errorf("recognized binding should survive an unrecognized sibling: %+v", v.Measures)
	}
}

func TestResolveModern_Defaults(t *testing.T) {
	v, err := ResolveModern("v", []byte(`{}`))
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if v.Type != "unknown" {
		t.Errorf("expected default type 'unknown', got %q", v.Type)
	}
	if v.Title != "" {
		t.Errorf("expected empty title, got %q", v.Title)
	}
	if v.Measures == nil || v.Dimensions == nil {
		t.Error("field lists should be empty, not nil")
	}
}

func TestResolveModern_InvalidJSON(t *testing.T) {
	if _, err := ResolveModern("v", []byte("{not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestResolveLegacy_RolesAndAggregations(t *testing.T) {
	data := `{
	  "name": "legacy1",
	  "singleVisual": {
	    "visualType": "columnChart",
	    "projections": {
	      "Y": [ { "queryRef": "Sales.Total Revenue" } ],
	      "Category": [ { "queryRef": "Sales.Region" } ],
	      "Series": [ { "queryRef": "Sum(Sales.Amount)" } ]
	    }
	  }
	}`

	v, err := ResolveLegacy([]byte(data))
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if v.ID != "legacy1" {
		t.Errorf("expected id from config name, got %q", v.ID)
	}
	if v.Type != "columnChart" {
		t.Errorf("unexpected type %q", v.Type)
	}

	hasMeasure := func(name string) bool {
		for _, m := range v.Measures {
			if m.Name == name {
				return true
			}
		}
		return false
	}
	// Y role carries measures; an aggregation wrapper routes to the
	// measure list regardless of role.
	if !hasMeasure("Total Revenue") {
		t.Errorf("Y-role binding missing from measures: %+v", v.Measures)
	}
	if !hasMeasure("Amount") {
		t.Errorf("aggregation binding missing from measures: %+v", v.Measures)
	}
	want := core.FieldRef{Entity: "Sales", Name: "Region"}
	if len(v.Dimensions) != 1 || v.Dimensions[0] != want {
		t.Errorf("unexpected dimensions: %+v", v.Dimensions)
	}
}

func TestResolveLegacy_RoleOrderPreserved(t *testing.T) {
	data := `{
	  "singleVisual": {
	    "visualType": "matrix",
	    "projections": {
	      "Rows": [ { "queryRef": "Sales.Region" } ],
	      "Columns": [ { "queryRef": "Sales.Segment" } ],
	      "Values": [ { "queryRef": "Sales.Total" } ]
	    }
	  }
	}`

	for i := 0; i < 50; i++ {
		v, err := ResolveLegacy([]byte(data))
		if err != nil {
			t.Fatalf("resolve failed: %v", err)
		}
		want := []core.FieldRef{
			{Entity: "Sales", Name: "Region"},
			{Entity: "Sales", Name: "Segment"},
		}
		if len(v.Dimensions) != 2 || v.Dimensions[0] != want[0] || v.Dimensions[1] != want[1] {
			t.Fatalf("iteration %d: dimensions out of document order: %+v", i, v.Dimensions)
		}
	}
}

func TestResolveLegacy_UnqualifiedRef(t *testing.T) {
	data := `{
	  "singleVisual": {
	    "visualType": "card",
	    "projections": { "Values": [ { "queryRef": "Total Revenue" } ] }
	  }
	}`

	v, err := ResolveLegacy([]byte(data))
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(v.Measures) != 1 || v.Measures[0].Name != "Total Revenue" || v.Measures[0].Entity != "" {
		t.Errorf("unqualified ref should keep empty entity: %+v", v.Measures)
	}
}

func TestParseQueryRef(t *testing.T) {
	tests := []struct {
		ref    string
		entity string
		prop   string
		isAgg  bool
	}{
		{"Sales.Total Revenue", "Sales", "Total Revenue", false},
		{"Sum(Sales.Amount)", "Sales", "Amount", true},
		{"Count(Users.Id)", "Users", "Id", true},
		{"JustAName", "", "JustAName", false},
	}
	for _, tt := range tests {
		entity, prop, isAgg := parseQueryRef(tt.ref)
		if entity != tt.entity || prop != tt.prop || isAgg != tt.isAgg {
			t.Errorf("parseQueryRef(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.ref, entity, prop, isAgg, tt.entity, tt.prop, tt.isAgg)
		}
	}
}
