// Package tmdl parses TMDL semantic-model definition files.
// TMDL is an indentation-based plain-text format, one file per table:
//
//	table Sales
//	    column OrderId
//	        dataType: int64
//
//	    measure 'Total Revenue' =
//	            SUM(Sales[Amount])
//	        formatString: #,##0.00
//
// Parsing is a single forward scan over lines with a small explicit
// state (current table / column / measure, relationship flag) and
// flush-on-transition semantics. Malformed or unreadable input yields
// an empty result, never an error.
package tmdl

import (
	"bufio"
	"os"
	"regexp"
	"strings"

	"github.com/reportlens/reportlens/pkg/core"
)

// Result holds the records declared by one definition file.
type Result struct {
	Tables        []core.Table
	Relationships []core.Relationship
}

// Block header patterns.
var (
	// table Sales  /  table 'Sales Targets'
	tablePattern = regexp.MustCompile(`^table\s+'?(.+?)'?\s*$`)
	// measure 'Total Revenue' = SUM(Sales[Amount])
	measurePattern = regexp.MustCompile(`^\s+measure\s+'?(.+?)'?\s*=\s*(.*)`)
	// column OrderId
	columnPattern = regexp.MustCompile(`^\s+column\s+'?(.+?)'?\s*$`)
	// Property keywords that terminate a measure expression.
	exprTerminatorPattern = regexp.MustCompile(`^\s+(formatString|displayFolder|annotation|isHidden|` +
		`description|kpiStatusExpression|kpiTargetExpression` +
		`|lineageTag|summarizeBy|dataCategory)\s*:`)
)

// relationship block property keys, matched as "key:" prefixes.
var relProps = map[string]func(*core.Relationship, string){
	"fromTable":              func(r *core.Relationship, v string) { r.FromTable = v },
	"fromColumn":             func(r *core.Relationship, v string) { r.FromColumn = v },
	"toTable":                func(r *core.Relationship, v string) { r.ToTable = v },
	"toColumn":               func(r *core.Relationship, v string) { r.ToColumn = v },
	"cardinality":            func(r *core.Relationship, v string) { r.Cardinality = v },
	"crossFilteringBehavior": func(r *core.Relationship, v string) { r.CrossFilter = v },
}

// ParseFile reads and parses one definition file.
// Unreadable files yield an empty result.
func ParseFile(path string) *Result {
	content, err := os.ReadFile(path)
	if err != nil {
		return &Result{}
	}
	return Parse(string(content))
}

// Parse parses the literal text of one definition file.
func Parse(content string) *Result {
	s := &scanState{result: &Result{}}

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		s.step(scanner.Text())
	}
	s.finish()
	return s.result
}

// scanState is the parser's explicit line-scan state. Each step either
// extends the open context or flushes it and opens a new one.
type scanState struct {
	result *Result

	table   *core.Table
	column  *core.Column
	measure *core.Measure

	inExpr    bool
	exprLines []string

	inRel bool
	rel   core.Relationship
}

// step consumes one raw input line.
func (s *scanState) step(raw string) {
	stripped := strings.TrimSpace(raw)
	if stripped == "" {
		return
	}
	indent := len(raw) - len(strings.TrimLeft(raw, "\t "))

	// Relationship block header: opens a new relationship context,
	// flushing any pending measure/column and prior relationship.
	if strings.HasPrefix(stripped, "relationship") {
		s.flushMeasure()
		s.flushColumn()
		s.flushRelationship()
		s.inRel = true
		return
	}

	if s.inRel {
		if s.stepRelationship(stripped, indent) {
			return
		}
		// Indentation returned to top level: close the block and let
		// the line be processed as a normal block header below.
		s.flushRelationship()
	}

	if m := tablePattern.FindStringSubmatch(stripped); m != nil && indent == 0 {
		s.flushMeasure()
		s.flushColumn()
		s.flushTable()
		s.table = &core.Table{Name: unquote(m[1])}
		return
	}

	// Content before the first table header is not an error; skip it.
	if s.table == nil {
		return
	}

	if m := measurePattern.FindStringSubmatch(raw); m != nil {
		s.flushMeasure()
		s.flushColumn()
		s.measure = &core.Measure{Table: s.table.Name, Name: unquote(m[1])}
		s.inExpr = true
		if expr := strings.TrimSpace(m[2]); expr != "" {
			s.exprLines = append(s.exprLines, expr)
		}
		return
	}

	if m := columnPattern.FindStringSubmatch(raw); m != nil {
		s.flushColumn()
		s.flushMeasure()
		s.column = &core.Column{Name: unquote(m[1]), DataType: "unknown"}
		return
	}

	if s.inExpr && s.measure != nil {
		if exprTerminatorPattern.MatchString(raw) {
			s.flushMeasure()
		} else {
			// Continuation of the DAX expression.
			s.exprLines = append(s.exprLines, stripped)
		}
		return
	}

	if s.column != nil {
		if v, ok := strings.CutPrefix(stripped, "dataType:"); ok {
			s.column.DataType = strings.TrimSpace(v)
		}
	}
}

// stepRelationship handles one line inside a relationship block.
// Returns false when the line is not part of the block.
func (s *scanState) stepRelationship(stripped string, indent int) bool {
	for key, set := range relProps {
		if v, ok := strings.CutPrefix(stripped, key+":"); ok {
			set(&s.rel, unquote(strings.TrimSpace(v)))
			return true
		}
	}
	if indent > 0 {
		// Unrecognized indented property; still inside the block.
		return true
	}
	return false
}

// finish flushes any still-open contexts at end of input.
func (s *scanState) finish() {
	s.flushMeasure()
	s.flushColumn()
	s.flushTable()
	s.flushRelationship()
}

func (s *scanState) flushMeasure() {
	if s.measure != nil && s.table != nil {
		s.measure.Expression = strings.TrimSpace(strings.Join(s.exprLines, "\n"))
		s.table.Measures = append(s.table.Measures, *s.measure)
	}
	s.measure = nil
	s.inExpr = false
	s.exprLines = nil
}

func (s *scanState) flushColumn() {
	if s.column != nil && s.table != nil {
		s.table.Columns = append(s.table.Columns, *s.column)
	}
	s.column = nil
}

func (s *scanState) flushTable() {
	if s.table != nil {
		s.result.Tables = append(s.result.Tables, *s.table)
	}
	s.table = nil
}

func (s *scanState) flushRelationship() {
	if s.inRel && s.rel.FromTable != "" && s.rel.ToTable != "" {
		s.result.Relationships = append(s.result.Relationships, s.rel)
	}
	s.inRel = false
	s.rel = core.Relationship{}
}

// unquote strips a single level of surrounding single quotes.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return s[1 : len(s)-1]
	}
	return s
}
