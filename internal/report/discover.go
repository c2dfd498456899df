// Package report discovers pages and visuals from a report definition.
//
// Two directory shapes are supported, auto-detected by marker files:
// the split layout (definition/pages/<id>/page.json plus one
// visual.json per visual) used by PBIP projects and modern PBIX
// archives, and the monolithic layout (a single UTF-16 Report/Layout
// blob listing all sections and inline visual configs) used by legacy
// archives. Both yield identical page records.
//
// The package reads through fs.FS, so a project directory
// (os.DirFS) and a zip archive (zip.Reader) are served by the same
// code path.
package report

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/reportlens/reportlens/internal/binding"
	"github.com/reportlens/reportlens/internal/textenc"
	"github.com/reportlens/reportlens/pkg/core"
)

// defaultOrdinal is assigned to pages that declare no ordinal; the
// orderer rewrites ordinals anyway, this only affects the fallback
// sort.
const defaultOrdinal = 999

// Layout identifies the detected report structure.
type Layout string

// Layout constants.
const (
	LayoutSplit      Layout = "split"
	LayoutMonolithic Layout = "monolithic"
	LayoutNone       Layout = ""
)

// Reader reads one report definition rooted in an fs.FS.
type Reader struct {
	fsys   fs.FS
	base   string // "" for a mounted .Report dir, "Report" inside an archive
	logger *slog.Logger
}

// NewReader probes fsys for a recognizable report structure. The
// definition may sit at the root (a mounted .Report directory) or
// under "Report/" (an archive).
func NewReader(fsys fs.FS, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := &Reader{fsys: fsys, logger: logger}
	for _, base := range []string{"", "Report"} {
		if dirExists(fsys, path.Join(base, "definition", "pages")) {
			r.base = base
			return r
		}
	}
	if fileExists(fsys, "Report/Layout") {
		r.base = "Report"
	}
	return r
}

// Layout reports which structure was detected.
func (r *Reader) Layout() Layout {
	if dirExists(r.fsys, path.Join(r.base, "definition", "pages")) {
		return LayoutSplit
	}
	if fileExists(r.fsys, path.Join(r.base, "Layout")) {
		return LayoutMonolithic
	}
	return LayoutNone
}

// DiscoverPages returns the unordered page list with resolved visuals.
// Missing or unrecognized structure yields an empty list and a
// warning; individual unparseable files are skipped the same way.
func (r *Reader) DiscoverPages() ([]*core.Page, []string) {
	switch r.Layout() {
	case LayoutSplit:
		return r.discoverSplit()
	case LayoutMonolithic:
		return r.discoverMonolithic()
	default:
		warning := "no recognizable page structure found in report definition"
		r.logger.Warn(warning)
		return []*core.Page{}, []string{warning}
	}
}

// pageManifest is the split layout's page.json.
type pageManifest struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Ordinal     *int   `json:"ordinal"`
	Visibility  int    `json:"visibility"`
}

func (r *Reader) discoverSplit() ([]*core.Page, []string) {
	pagesDir := path.Join(r.base, "definition", "pages")
	var warnings []string
	warn := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		r.logger.Warn(msg)
		warnings = append(warnings, msg)
	}

	entries, err := fs.ReadDir(r.fsys, pagesDir)
	if err != nil {
		warn("pages directory not found: %s", pagesDir)
		return []*core.Page{}, warnings
	}

	pages := make([]*core.Page, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		pageID := entry.Name()
		manifestPath := path.Join(pagesDir, pageID, "page.json")

		raw, err := fs.ReadFile(r.fsys, manifestPath)
		if err != nil {
			continue // a folder without page.json is not a page
		}
		var manifest pageManifest
		if err := json.Unmarshal(raw, &manifest); err != nil {
			warn("failed to parse %s: %v", manifestPath, err)
			continue
		}

		page := &core.Page{
			Name:        pageID,
			DisplayName: firstNonEmpty(manifest.DisplayName, manifest.Name, pageID),
			Ordinal:     defaultOrdinal,
			Hidden:      manifest.Visibility != 0,
			Visuals:     []*core.Visual{},
		}
		if manifest.Ordinal != nil {
			page.Ordinal = *manifest.Ordinal
		}

		r.loadVisuals(page, path.Join(pagesDir, pageID, "visuals"), warn)
		pages = append(pages, page)
	}

	return pages, warnings
}

// loadVisuals resolves every visuals/<id>/visual.json under a page.
func (r *Reader) loadVisuals(page *core.Page, visualsDir string, warn func(string, ...any)) {
	entries, err := fs.ReadDir(r.fsys, visualsDir)
	if err != nil {
		return // a page with no visuals directory is valid
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		visualPath := path.Join(visualsDir, entry.Name(), "visual.json")
		raw, err := fs.ReadFile(r.fsys, visualPath)
		if err != nil {
			continue
		}
		visual, err := binding.ResolveModern(entry.Name(), raw)
		if err != nil {
			warn("failed to parse %s: %v", visualPath, err)
			continue
		}
		page.Visuals = append(page.Visuals, visual)
	}
}

// layoutDocument is the monolithic Layout blob, after UTF-16 decoding.
type layoutDocument struct {
	Sections []layoutSection `json:"sections"`
}

type layoutSection struct {
	Name             string            `json:"name"`
	DisplayName      string            `json:"displayName"`
	Ordinal          *int              `json:"ordinal"`
	Visibility       int               `json:"visibility"`
	VisualContainers []layoutContainer `json:"visualContainers"`
}

type layoutContainer struct {
	Config string  `json:"config"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r *Reader) discoverMonolithic() ([]*core.Page, []string) {
	var warnings []string
	warn := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		r.logger.Warn(msg)
		warnings = append(warnings, msg)
	}

	layoutPath := path.Join(r.base, "Layout")
	raw, err := fs.ReadFile(r.fsys, layoutPath)
	if err != nil {
		warn("failed to read %s: %v", layoutPath, err)
		return []*core.Page{}, warnings
	}
	decoded, err := textenc.DecodeUTF16(raw)
	if err != nil {
		warn("failed to decode %s: %v", layoutPath, err)
		return []*core.Page{}, warnings
	}
	var doc layoutDocument
	if err := json.Unmarshal(decoded, &doc); err != nil {
		warn("failed to parse %s: %v", layoutPath, err)
		return []*core.Page{}, warnings
	}

	pages := make([]*core.Page, 0, len(doc.Sections))
	for _, section := range doc.Sections {
		ordinal := defaultOrdinal
		if section.Ordinal != nil {
			ordinal = *section.Ordinal
		}
		page := &core.Page{
			Name:        firstNonEmpty(section.Name, fmt.Sprintf("page_%d", ordinal)),
			DisplayName: firstNonEmpty(section.DisplayName, section.Name, "Page"),
			Ordinal:     ordinal,
			Hidden:      section.Visibility != 0,
			Visuals:     []*core.Visual{},
		}
		for _, container := range section.VisualContainers {
			if container.Config == "" {
				continue
			}
			visual, err := binding.ResolveLegacy([]byte(container.Config))
			if err != nil {
				warn("failed to parse visual config on page %s: %v", page.Name, err)
				continue
			}
			// Position lives on the container, not the config blob.
			visual.Width = int(container.Width)
			visual.Height = int(container.Height)
			page.Visuals = append(page.Visuals, visual)
		}
		pages = append(pages, page)
	}

	// The legacy format carries authoritative ordinals; surface pages
	// in that order so the ordinal fallback is already stable.
	sort.SliceStable(pages, func(i, j int) bool { return pages[i].Ordinal < pages[j].Ordinal })
	return pages, warnings
}

func dirExists(fsys fs.FS, name string) bool {
	info, err := fs.Stat(fsys, name)
	return err == nil && info.IsDir()
}

func fileExists(fsys fs.FS, name string) bool {
	info, err := fs.Stat(fsys, name)
	return err == nil && !info.IsDir()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
