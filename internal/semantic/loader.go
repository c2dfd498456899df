// Package semantic aggregates model metadata from a semantic model
// directory or a BIM schema blob into a single flattened model.
//
// TMDL projects keep one definition file per table plus a shared
// relationships file; the loader walks all of them and merges the
// results, flattening measures to (table, name, expression) triples
// so lookups never need to walk the table tree. Legacy archives
// instead carry a single DataModelSchema JSON document, handled by
// ParseBIM.
package semantic

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/reportlens/reportlens/internal/textenc"
	"github.com/reportlens/reportlens/internal/tmdl"
	"github.com/reportlens/reportlens/pkg/core"
)

// Loader reads model definition files through an fs.FS so directory
// projects and zip archives share one code path.
type Loader struct {
	fsys   fs.FS
	logger *slog.Logger
}

func NewLoader(fsys fs.FS, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{fsys: fsys, logger: logger}
}

// Load locates the semantic model directory, parses every definition
// file under it, and merges the results. A missing model directory is
// not an error: visuals can still be extracted without a model, so
// Load returns an empty model plus a warning instead of failing.
func (l *Loader) Load() (*core.Model, []string) {
	model := core.NewModel()

	modelDir, ok := l.findModelDir()
	if !ok {
		return model, []string{"no semantic model directory found; expressions will be unresolved"}
	}

	defDir := modelDir
	// Newer projects nest definitions one level down; older ones keep
	// the files in the model root.
	if nested := modelDir + "/definition"; dirExists(l.fsys, nested) {
		defDir = nested
	}

	var warnings []string
	err := fs.WalkDir(l.fsys, defDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(d.Name(), ".tmdl") {
			return err
		}
		content, err := fs.ReadFile(l.fsys, p)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("unreadable definition file %s: %v", p, err))
			return nil
		}
		merge(model, tmdl.Parse(string(content)))
		return nil
	})
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("walking %s: %v", defDir, err))
	}

	l.logger.Info("model loaded",
		"tables", len(model.Tables),
		"measures", len(model.Measures),
		"relationships", len(model.Relationships))
	return model, warnings
}

// findModelDir returns the first top-level directory whose name ends
// in .SemanticModel.
func (l *Loader) findModelDir() (string, bool) {
	entries, err := fs.ReadDir(l.fsys, ".")
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if e.IsDir() && strings.HasSuffix(e.Name(), ".SemanticModel") {
			return e.Name(), true
		}
	}
	return "", false
}

func merge(model *core.Model, result *tmdl.Result) {
	for _, table := range result.Tables {
		model.Tables = append(model.Tables, core.Table{
			Name:    table.Name,
			Columns: table.Columns,
		})
		for _, m := range table.Measures {
			model.Measures = append(model.Measures, core.Measure{
				Table:      table.Name,
				Name:       m.Name,
				Expression: m.Expression,
			})
		}
	}
	model.Relationships = append(model.Relationships, result.Relationships...)
}

func dirExists(fsys fs.FS, name string) bool {
	info, err := fs.Stat(fsys, name)
	return err == nil && info.IsDir()
}

// bimDocument mirrors the BIM (DataModelSchema) JSON layout. The
// measure expression is either a plain string or an object holding a
// value key, depending on the producing tool.
type bimDocument struct {
	Model struct {
		Tables []struct {
			Name    string `json:"name"`
			Columns []struct {
				Name     string `json:"name"`
				DataType string `json:"dataType"`
			} `json:"columns"`
			Measures []struct {
				Name       string          `json:"name"`
				Expression json.RawMessage `json:"expression"`
			} `json:"measures"`
		} `json:"tables"`
		Relationships []struct {
			FromTable   string `json:"fromTable"`
			FromColumn  string `json:"fromColumn"`
			ToTable     string `json:"toTable"`
			ToColumn    string `json:"toColumn"`
			Cardinality string `json:"cardinality"`
		} `json:"relationships"`
	} `json:"model"`
}

// ParseBIM parses a DataModelSchema document into a model. The raw
// bytes may be UTF-16 encoded; tables without a name and
// relationships missing either endpoint table are dropped.
func ParseBIM(raw []byte) (*core.Model, error) {
	decoded, err := textenc.DecodeUTF16(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding model schema: %w", err)
	}
	var doc bimDocument
	if err := json.Unmarshal(decoded, &doc); err != nil {
		return nil, fmt.Errorf("parsing model schema: %w", err)
	}

	model := core.NewModel()
	for _, table := range doc.Model.Tables {
		if table.Name == "" {
			continue
		}
		t := core.Table{Name: table.Name}
		for _, col := range table.Columns {
			if col.Name == "" {
				continue
			}
			dataType := col.DataType
			if dataType == "" {
				dataType = "unknown"
			}
			t.Columns = append(t.Columns, core.Column{Name: col.Name, DataType: dataType})
		}
		model.Tables = append(model.Tables, t)

		for _, m := range table.Measures {
			if m.Name == "" {
				continue
			}
			model.Measures = append(model.Measures, core.Measure{
				Table:      table.Name,
				Name:       m.Name,
				Expression: strings.TrimSpace(bimExpression(m.Expression)),
			})
		}
	}
	for _, rel := range doc.Model.Relationships {
		if rel.FromTable == "" || rel.ToTable == "" {
			continue
		}
		model.Relationships = append(model.Relationships, core.Relationship{
			FromTable:   rel.FromTable,
			FromColumn:  rel.FromColumn,
			ToTable:     rel.ToTable,
			ToColumn:    rel.ToColumn,
			Cardinality: rel.Cardinality,
		})
	}
	return model, nil
}

func bimExpression(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Value
	}
	return ""
}
