package extract

import (
	"archive/zip"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/encoding/unicode"

	"github.com/reportlens/reportlens/internal/testutil"
	"github.com/reportlens/reportlens/pkg/core"
)

const fixtureCardVisual = `{
  "name": "v1",
  "visual": {
    "visualType": "card",
    "query": {"queryState": {"Values": {"projections": [
      {"field": {"Measure": {"Expression": {"SourceRef": {"Entity": "Sales"}}, "Property": "Total Revenue"}}}
    ]}}}
  }
}`

const fixtureSalesTMDL = `table Sales
	measure 'Total Revenue' = SUM(Sales[Amount])
		formatString: #,0

	column Amount
		dataType: decimal
`

// buildProject lays a minimal split-layout project on disk: two
// visible pages (order manifest reverses them), one hidden page, one
// model table.
func buildProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	write := func(rel, content string) {
		t.Helper()
		full := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	write("Demo.Report/definition/pages/pages.json", `{"pageOrder": ["p2", "p1"]}`)
	write("Demo.Report/definition/pages/p1/page.json",
		`{"name": "p1", "displayName": "Sales Trends", "ordinal": 0}`)
	write("Demo.Report/definition/pages/p1/visuals/v1/visual.json", fixtureCardVisual)
	write("Demo.Report/definition/pages/p2/page.json",
		`{"name": "p2", "displayName": "Overview", "ordinal": 1}`)
	write("Demo.Report/definition/pages/p3/page.json",
		`{"name": "p3", "displayName": "Internal", "visibility": 1}`)
	write("Demo.SemanticModel/definition/tables/Sales.tmdl", fixtureSalesTMDL)
	write("Demo.pbip", `{"version": "1.0"}`)

	return root
}

func TestRunProjectDirectory(t *testing.T) {
	root := buildProject(t)
	outDir := t.TempDir()
	e := New(Options{OutDir: outDir, Logger: testutil.NewTestLogger(t)})

	result, err := e.Run(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}

	if result.SourceType != SourceTypeProject {
		t.Errorf("got source type %q", result.SourceType)
	}
	if len(result.Pages) != 2 || result.HiddenPages != 1 {
		t.Fatalf("got %d visible / %d hidden, want 2 / 1", len(result.Pages), result.HiddenPages)
	}
	// pages.json puts p2 first; ordinals re-stamped contiguously.
	if result.Pages[0].Name != "p2" || result.Pages[0].Ordinal != 0 {
		t.Errorf("unexpected first page: %+v", result.Pages[0])
	}
	if result.Pages[1].Name != "p1" || result.Pages[1].Ordinal != 1 {
		t.Errorf("unexpected second page: %+v", result.Pages[1])
	}

	if len(result.Model.Measures) != 1 {
		t.Fatalf("got %d measures, want 1", len(result.Model.Measures))
	}
	if len(result.Queries) != 2 {
		t.Fatalf("got %d query groups, want 2", len(result.Queries))
	}
	// The card on p1 (slide 2) resolves against the model.
	q := result.Queries[1].Queries
	if len(q) != 1 || q[0].MeasureExpression != "SUM(Sales[Amount])" {
		t.Errorf("unexpected queries for slide 2: %+v", q)
	}
}

func TestRunProjectFile(t *testing.T) {
	root := buildProject(t)
	e := New(Options{OutDir: t.TempDir()})

	result, err := e.Run(context.Background(), filepath.Join(root, "Demo.pbip"))
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(result.Pages))
	}
}

func TestArtifacts(t *testing.T) {
	root := buildProject(t)
	outDir := t.TempDir()
	result, err := New(Options{OutDir: outDir}).Run(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(result.RequestPath)
	if err != nil {
		t.Fatal(err)
	}
	var request struct {
		SourceType  string `json:"source_type"`
		TotalSlides int    `json:"total_slides"`
		Slides      []struct {
			SlideNumber int     `json:"slide_number"`
			Title       string  `json:"title"`
			ImagePath   *string `json:"image_path"`
			SlideType   string  `json:"slide_type"`
		} `json:"slides"`
	}
	if err := json.Unmarshal(raw, &request); err != nil {
		t.Fatal(err)
	}
	if request.TotalSlides != 2 || len(request.Slides) != 2 {
		t.Fatalf("unexpected request: %+v", request)
	}
	if request.Slides[0].Title != "Overview" || request.Slides[0].SlideType != "health_check" {
		t.Errorf("unexpected first slide: %+v", request.Slides[0])
	}
	if request.Slides[1].SlideType != "trends" {
		t.Errorf("unexpected second slide type: %q", request.Slides[1].SlideType)
	}
	if request.Slides[0].ImagePath != nil {
		t.Error("image path should be null")
	}

	raw, err = os.ReadFile(result.ContextPath)
	if err != nil {
		t.Fatal(err)
	}
	var ctx map[string]json.RawMessage
	if err := json.Unmarshal(raw, &ctx); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"pbip_path", "pages", "model", "dax_queries"} {
		if _, ok := ctx[key]; !ok {
			t.Errorf("context missing key %q", key)
		}
	}
}

func buildArchive(t *testing.T) string {
	t.Helper()

	layout := `{"sections": [{
	  "name": "ReportSection1",
	  "displayName": "Usage Overview",
	  "ordinal": 0,
	  "visualContainers": [{
	    "width": 400, "height": 300,
	    "config": "{\"name\":\"vc1\",\"singleVisual\":{\"visualType\":\"card\",\"projections\":{\"Values\":[{\"queryRef\":\"Sales.Total Revenue\"}]}}}"
	  }]
	}]}`
	schema := `{"model": {"tables": [{
	  "name": "Sales",
	  "measures": [{"name": "Total Revenue", "expression": "SUM(Sales[Amount])"}]
	}]}}`

	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	encode := func(s string) []byte {
		raw, err := enc.Bytes([]byte(s))
		if err != nil {
			t.Fatal(err)
		}
		return raw
	}

	path := filepath.Join(t.TempDir(), "demo.pbix")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for name, data := range map[string][]byte{
		"Report/Layout":   encode(layout),
		"DataModelSchema": encode(schema),
	} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunArchive(t *testing.T) {
	path := buildArchive(t)
	result, err := New(Options{OutDir: t.TempDir()}).Run(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}

	if result.SourceType != SourceTypeArchive {
		t.Errorf("got source type %q", result.SourceType)
	}
	if len(result.Pages) != 1 || result.Pages[0].DisplayName != "Usage Overview" {
		t.Fatalf("unexpected pages: %+v", result.Pages)
	}
	if len(result.Model.Measures) != 1 {
		t.Fatalf("model schema not parsed: %+v", result.Model)
	}
	queries := result.Queries[0].Queries
	if len(queries) != 1 || queries[0].MeasureExpression != "SUM(Sales[Amount])" {
		t.Errorf("unexpected queries: %+v", queries)
	}
}

func TestRunMissingSource(t *testing.T) {
	_, err := New(Options{}).Run(context.Background(), "/does/not/exist")
	if err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestRunUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.docx")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := New(Options{}).Run(context.Background(), path)
	if err == nil {
		t.Fatal("expected error for unsupported source")
	}
}

func TestClassifyPage(t *testing.T) {
	cases := map[string]string{
		"Usage Trends":         PageTypeTrends,
		"Revenue Over Time":    PageTypeTrends,
		"Top Performers":       PageTypeLeaderboard,
		"Team Leaderboard":     PageTypeLeaderboard,
		"System Health":        PageTypeHealthCheck,
		"Portfolio Overview":   PageTypeHealthCheck,
		"User Habit Patterns":  PageTypeHabitFormation,
		"Frequency Analysis":   PageTypeHabitFormation,
		"License Allocation":   PageTypeLicensePriority,
		"Priority Users":       PageTypeLicensePriority,
		"Appendix":             PageTypeGeneral,
	}
	for name, want := range cases {
		if got := ClassifyPage(name); got != want {
			t.Errorf("ClassifyPage(%q) = %q, want %q", name, got, want)
		}
	}
}

// fakeStore records the calls the extractor makes.
type fakeStore struct {
	created   []string
	completed []core.RunCounts
	statuses  []core.RunStatus
}

func (s *fakeStore) Open(string) error  { return nil }
func (s *fakeStore) Close() error       { return nil }
func (s *fakeStore) InitSchema() error  { return nil }
func (s *fakeStore) GetRun(string) (*core.Run, error)       { return nil, nil }
func (s *fakeStore) GetLatestRun(string) (*core.Run, error) { return nil, nil }
func (s *fakeStore) ListRuns(int) ([]*core.Run, error)      { return nil, nil }

func (s *fakeStore) CreateRun(source string) (*core.Run, error) {
	s.created = append(s.created, source)
	return &core.Run{ID: "run-1", Source: source, Status: core.RunStatusRunning}, nil
}

func (s *fakeStore) CompleteRun(id string, status core.RunStatus, counts core.RunCounts, errMsg string) error {
	s.completed = append(s.completed, counts)
	s.statuses = append(s.statuses, status)
	return nil
}

func TestRunRecordsHistory(t *testing.T) {
	root := buildProject(t)
	store := &fakeStore{}
	result, err := New(Options{OutDir: t.TempDir(), Store: store}).Run(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}

	if result.RunID != "run-1" {
		t.Errorf("run id not propagated: %q", result.RunID)
	}
	if len(store.created) != 1 || len(store.completed) != 1 {
		t.Fatalf("store calls: created=%v completed=%v", store.created, store.completed)
	}
	if store.statuses[0] != core.RunStatusCompleted {
		t.Errorf("got status %q", store.statuses[0])
	}
	counts := store.completed[0]
	if counts.Pages != 2 || counts.Visuals != 1 || counts.Queries != 1 {
		t.Errorf("unexpected counts: %+v", counts)
	}
}

func TestRunRecordsFailure(t *testing.T) {
	store := &fakeStore{}
	_, err := New(Options{Store: store}).Run(context.Background(), "/does/not/exist")
	if err == nil {
		t.Fatal("expected error")
	}
	if len(store.statuses) != 1 || store.statuses[0] != core.RunStatusFailed {
		t.Errorf("failure not recorded: %+v", store.statuses)
	}
}
