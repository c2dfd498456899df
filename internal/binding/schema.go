package binding

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// JSON shapes for the two visual schema generations. Only the paths
// the resolver reads are modeled; everything else is ignored by the
// decoder. Field tags follow the report format's own casing, which
// mixes PascalCase (query AST nodes) and camelCase (container keys).
//
// The role containers (queryState, projections) are JSON objects whose
// key order is meaningful: it fixes the order of the resolved field
// lists. They decode through a token walk instead of a map, since map
// iteration would randomize that order between runs.

// modernConfig is the top of a split-layout visual.json document.
type modernConfig struct {
	Name     string     `json:"name"`
	Position position   `json:"position"`
	Visual   visualNode `json:"visual"`
}

type position struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type visualNode struct {
	VisualType string  `json:"visualType"`
	Query      query   `json:"query"`
	Objects    objects `json:"objects"`
}

type query struct {
	QueryState roleStates `json:"queryState"`
}

// roleStates holds the queryState roles in document order.
type roleStates []roleState

type roleState struct {
	Role        string       `json:"-"`
	Projections []projection `json:"projections"`
}

func (r *roleStates) UnmarshalJSON(data []byte) error {
	return decodeOrderedObject(data, func(role string, dec *json.Decoder) error {
		var st roleState
		if err := dec.Decode(&st); err != nil {
			return err
		}
		st.Role = role
		*r = append(*r, st)
		return nil
	})
}

type projection struct {
	Field fieldNode `json:"field"`
}

// fieldNode is the tagged union of modern field binding shapes.
type fieldNode struct {
	Measure        *propertyRef       `json:"Measure"`
	Column         *propertyRef       `json:"Column"`
	Aggregation    *aggregationRef    `json:"Aggregation"`
	HierarchyLevel *hierarchyLevelRef `json:"HierarchyLevel"`
}

// propertyRef is a direct Measure/Column reference:
// { "Expression": { "SourceRef": { "Entity": "Sales" } }, "Property": "Total Revenue" }
type propertyRef struct {
	Expression sourceExpr `json:"Expression"`
	Property   string     `json:"Property"`
}

type sourceExpr struct {
	SourceRef sourceRef `json:"SourceRef"`
}

type sourceRef struct {
	Entity string `json:"Entity"`
}

// aggregationRef is an implicit aggregation over a plain column.
type aggregationRef struct {
	Expression struct {
		Column *propertyRef `json:"Column"`
	} `json:"Expression"`
}

// hierarchyLevelRef is a date drill-down binding; the interesting bits
// sit several levels down at the PropertyVariationSource.
type hierarchyLevelRef struct {
	Expression struct {
		Hierarchy struct {
			Expression struct {
				PropertyVariationSource struct {
					Expression sourceExpr `json:"Expression"`
					Property   string     `json:"Property"`
				} `json:"PropertyVariationSource"`
			} `json:"Expression"`
		} `json:"Hierarchy"`
	} `json:"Expression"`
	Level string `json:"Level"`
}

// objects holds the visual's formatting objects; only the title text
// literal is read.
type objects struct {
	Title []struct {
		Properties struct {
			Text struct {
				Expr struct {
					Literal struct {
						Value string `json:"Value"`
					} `json:"Literal"`
				} `json:"expr"`
			} `json:"text"`
		} `json:"properties"`
	} `json:"title"`
}

// titleText extracts the literal title, stripping the surrounding
// quotes the format stores it with.
func (o objects) titleText() string {
	if len(o.Title) == 0 {
		return ""
	}
	v := o.Title[0].Properties.Text.Expr.Literal.Value
	return trimQuotes(v)
}

func trimQuotes(s string) string {
	for len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '\'' && last == '\'') || (first == '"' && last == '"') {
			s = s[1 : len(s)-1]
			continue
		}
		break
	}
	return s
}

// legacyConfig is a visualContainer's embedded config blob from the
// monolithic Layout format.
type legacyConfig struct {
	Name         string `json:"name"`
	SingleVisual struct {
		VisualType  string            `json:"visualType"`
		Projections legacyProjections `json:"projections"`
		Objects     objects           `json:"objects"`
	} `json:"singleVisual"`
}

// legacyProjections holds the projections roles in document order.
type legacyProjections []legacyRole

type legacyRole struct {
	Role    string
	Entries []legacyProjEntry
}

func (p *legacyProjections) UnmarshalJSON(data []byte) error {
	return decodeOrderedObject(data, func(role string, dec *json.Decoder) error {
		var entries []legacyProjEntry
		if err := dec.Decode(&entries); err != nil {
			return err
		}
		*p = append(*p, legacyRole{Role: role, Entries: entries})
		return nil
	})
}

type legacyProjEntry struct {
	QueryRef string `json:"queryRef"`
}

// decodeOrderedObject walks a JSON object's keys in document order,
// handing each value to visit for decoding. A JSON null is a no-op.
func decodeOrderedObject(data []byte, visit func(key string, dec *json.Decoder) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)
		if err := visit(key, dec); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}
