package report

import (
	"encoding/json"
	"io/fs"
	"path"
	"strings"
)

// PageOrder returns the ordered page identifiers from the pages.json
// order manifest. The second return is false when the manifest is
// absent, unparseable, or empty — callers fall through to the next
// ordering signal.
func (r *Reader) PageOrder() ([]string, bool) {
	raw, err := fs.ReadFile(r.fsys, path.Join(r.base, "definition", "pages", "pages.json"))
	if err != nil {
		return nil, false
	}
	var manifest struct {
		PageOrder []string `json:"pageOrder"`
	}
	if err := json.Unmarshal(raw, &manifest); err != nil {
		r.logger.Warn("failed to parse pages.json order manifest", "error", err)
		return nil, false
	}
	if len(manifest.PageOrder) == 0 {
		return nil, false
	}
	return manifest.PageOrder, true
}

// ImageStems returns the page-thumbnail image identifiers registered
// in report.json, in registration order, with the ".png" suffix
// stripped. Icon images (an ".svg" embedded in the stem) are skipped.
// Returns nil when the manifest is absent or holds no images.
func (r *Reader) ImageStems() []string {
	raw, err := fs.ReadFile(r.fsys, path.Join(r.base, "definition", "report.json"))
	if err != nil {
		return nil
	}
	var manifest struct {
		ResourcePackages []struct {
			Type  string `json:"type"`
			Items []struct {
				Type string `json:"type"`
				Name string `json:"name"`
			} `json:"items"`
		} `json:"resourcePackages"`
	}
	if err := json.Unmarshal(raw, &manifest); err != nil {
		r.logger.Warn("failed to parse report.json resource manifest", "error", err)
		return nil
	}

	var stems []string
	for _, pkg := range manifest.ResourcePackages {
		if pkg.Type != "RegisteredResources" {
			continue
		}
		for _, item := range pkg.Items {
			if item.Type != "Image" || !strings.HasSuffix(item.Name, ".png") {
				continue
			}
			stem := strings.TrimSuffix(item.Name, ".png")
			if strings.Contains(strings.ToLower(stem), ".svg") {
				continue
			}
			stems = append(stems, stem)
		}
	}
	return stems
}
