// Package extract orchestrates a full extraction run: source
// resolution, page discovery, ordering, model aggregation, query
// synthesis, and artifact output.
package extract

import (
	"archive/zip"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/reportlens/reportlens/internal/dax"
	"github.com/reportlens/reportlens/internal/order"
	"github.com/reportlens/reportlens/internal/report"
	"github.com/reportlens/reportlens/internal/semantic"
	"github.com/reportlens/reportlens/pkg/core"
)

// Source type tags recorded in the artifacts.
const (
	SourceTypeProject = "pbip"
	SourceTypeArchive = "pbix"
)

// Options configures an Extractor. All fields are optional.
type Options struct {
	// OutDir receives the analysis artifacts; defaults to "temp".
	OutDir string
	// Store records run history when set.
	Store core.Store
	// Logger defaults to a discard logger.
	Logger *slog.Logger
}

// Extractor runs the extraction pipeline end to end.
type Extractor struct {
	outDir string
	store  core.Store
	logger *slog.Logger
}

func New(opts Options) *Extractor {
	e := &Extractor{
		outDir: opts.OutDir,
		store:  opts.Store,
		logger: opts.Logger,
	}
	if e.outDir == "" {
		e.outDir = "temp"
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	return e
}

// Result is the outcome of one extraction run. Pages holds only
// visible pages, in final order.
type Result struct {
	Source      string            `json:"source_file"`
	SourceType  string            `json:"source_type"`
	Pages       []*core.Page      `json:"pages"`
	HiddenPages int               `json:"hidden_pages"`
	Model       *core.Model       `json:"model"`
	Queries     []core.QueryGroup `json:"dax_queries"`
	Warnings    []string          `json:"warnings"`

	// RunID is set when a store recorded the run.
	RunID string `json:"-"`
	// RequestPath and ContextPath locate the written artifacts.
	RequestPath string `json:"-"`
	ContextPath string `json:"-"`
}

// Run extracts the report at source, which may be a project file, a
// project directory, or an archive. The pipeline never aborts on
// partially broken input: unreadable pieces surface as warnings and
// the run completes with whatever was recoverable. Only an
// unresolvable source or unwritable output directory is an error.
func (e *Extractor) Run(ctx context.Context, source string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var run *core.Run
	if e.store != nil {
		created, err := e.store.CreateRun(source)
		if err != nil {
			return nil, fmt.Errorf("recording run: %w", err)
		}
		run = created
	}

	result, err := e.extract(ctx, source, true)
	if e.store != nil && run != nil {
		e.recordOutcome(run.ID, result, err)
	}
	if err != nil {
		return nil, err
	}
	if run != nil {
		result.RunID = run.ID
	}
	return result, nil
}

// Inspect runs the pipeline without writing artifacts or recording
// history. Used by read-only commands.
func (e *Extractor) Inspect(ctx context.Context, source string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.extract(ctx, source, false)
}

func (e *Extractor) extract(ctx context.Context, source string, writeArtifacts bool) (*Result, error) {
	fsys, sourceType, cleanup, err := openSource(source)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	result := &Result{
		Source:     source,
		SourceType: sourceType,
		Warnings:   []string{},
	}

	reader := report.NewReader(reportFS(fsys), e.logger)
	pages, warnings := reader.DiscoverPages()
	result.Warnings = append(result.Warnings, warnings...)

	ids, _ := reader.PageOrder()
	ordered := order.Resolve(pages,
		order.ByManifest(ids),
		order.ByImageStems(reader.ImageStems()),
		order.ByDeclaredOrdinal(),
	)
	result.Pages = core.VisiblePages(ordered)
	result.HiddenPages = len(ordered) - len(result.Pages)
	// Ordinals must stay contiguous after the hidden pages drop out.
	for i, p := range result.Pages {
		p.Ordinal = i
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	result.Model, warnings = e.loadModel(fsys, sourceType)
	result.Warnings = append(result.Warnings, warnings...)

	result.Queries = dax.Build(result.Pages, result.Model)

	e.logger.Info("extraction complete",
		"source", source,
		"pages", len(result.Pages),
		"hidden", result.HiddenPages,
		"queries", totalQueries(result.Queries),
		"warnings", len(result.Warnings))

	if writeArtifacts {
		if err := e.writeArtifacts(result); err != nil {
			return result, err
		}
	}
	return result, nil
}

// loadModel picks the model source by input shape: project trees
// carry definition files, archives at best a BIM schema blob.
func (e *Extractor) loadModel(fsys fs.FS, sourceType string) (*core.Model, []string) {
	if sourceType == SourceTypeProject {
		return semantic.NewLoader(fsys, e.logger).Load()
	}

	raw, err := fs.ReadFile(fsys, "DataModelSchema")
	if err != nil {
		return core.NewModel(), []string{
			"model schema not present in archive; expressions will be unresolved",
		}
	}
	model, err := semantic.ParseBIM(raw)
	if err != nil {
		return core.NewModel(), []string{err.Error()}
	}
	return model, nil
}

func (e *Extractor) recordOutcome(runID string, result *Result, runErr error) {
	status := core.RunStatusCompleted
	errMsg := ""
	counts := core.RunCounts{}
	if result != nil {
		counts = core.RunCounts{
			Pages:    len(result.Pages),
			Visuals:  totalVisuals(result.Pages),
			Queries:  totalQueries(result.Queries),
			Warnings: len(result.Warnings),
		}
	}
	if runErr != nil {
		status = core.RunStatusFailed
		errMsg = runErr.Error()
	}
	if err := e.store.CompleteRun(runID, status, counts, errMsg); err != nil {
		e.logger.Warn("failed to record run outcome", "run_id", runID, "error", err)
	}
}

// openSource resolves the source argument to a filesystem. A project
// file resolves to its parent directory; an archive opens as a zip.
func openSource(source string) (fs.FS, string, func(), error) {
	noop := func() {}
	info, err := os.Stat(source)
	if err != nil {
		return nil, "", noop, fmt.Errorf("source not found: %s", source)
	}

	if info.IsDir() {
		return os.DirFS(source), SourceTypeProject, noop, nil
	}

	switch strings.ToLower(filepath.Ext(source)) {
	case ".pbip":
		return os.DirFS(filepath.Dir(source)), SourceTypeProject, noop, nil
	case ".pbix":
		zr, err := zip.OpenReader(source)
		if err != nil {
			return nil, "", noop, fmt.Errorf("opening archive %s: %w", source, err)
		}
		return zr, SourceTypeArchive, func() { zr.Close() }, nil
	default:
		return nil, "", noop, fmt.Errorf("expected a project file, project directory, or archive: %s", source)
	}
}

// reportFS narrows a project root to its report directory when one
// exists; archives and directly mounted report dirs pass through.
func reportFS(fsys fs.FS) fs.FS {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fsys
	}
	for _, entry := range entries {
		if entry.IsDir() && strings.HasSuffix(entry.Name(), ".Report") {
			if sub, err := fs.Sub(fsys, entry.Name()); err == nil {
				return sub
			}
		}
	}
	return fsys
}

func totalVisuals(pages []*core.Page) int {
	n := 0
	for _, p := range pages {
		n += len(p.Visuals)
	}
	return n
}

func totalQueries(groups []core.QueryGroup) int {
	n := 0
	for _, g := range groups {
		n += len(g.Queries)
	}
	return n
}
