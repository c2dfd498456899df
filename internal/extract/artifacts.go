package extract

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Artifact file names, fixed so downstream consumers can find them
// without configuration.
const (
	RequestFileName = "analysis_request.json"
	ContextFileName = "context.json"
)

// slideMeta is one entry in the analysis request, mirroring the
// schema shared with the other ingestion pipelines. ImagePath is
// always null here; page screenshots come from a separate capture
// step when one is available.
type slideMeta struct {
	SlideNumber int     `json:"slide_number"`
	Title       string  `json:"title"`
	ImagePath   *string `json:"image_path"`
	SlideType   string  `json:"slide_type"`
	SourceType  string  `json:"source_type"`
}

type analysisRequest struct {
	SourceFile  string      `json:"source_file"`
	SourceType  string      `json:"source_type"`
	TotalSlides int         `json:"total_slides"`
	Slides      []slideMeta `json:"slides"`
}

// writeArtifacts emits the two analysis artifacts: the slide-level
// request document and the full extraction context.
func (e *Extractor) writeArtifacts(result *Result) error {
	if err := os.MkdirAll(e.outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	slides := make([]slideMeta, 0, len(result.Pages))
	for i, page := range result.Pages {
		slides = append(slides, slideMeta{
			SlideNumber: i + 1,
			Title:       page.DisplayName,
			SlideType:   ClassifyPage(page.DisplayName),
			SourceType:  result.SourceType,
		})
	}
	request := analysisRequest{
		SourceFile:  result.Source,
		SourceType:  result.SourceType,
		TotalSlides: len(slides),
		Slides:      slides,
	}

	result.RequestPath = filepath.Join(e.outDir, RequestFileName)
	if err := writeJSON(result.RequestPath, request); err != nil {
		return err
	}

	context := map[string]any{
		"pages":       result.Pages,
		"model":       result.Model,
		"dax_queries": result.Queries,
	}
	// The source path key doubles as the source type marker in the
	// shared context schema.
	switch result.SourceType {
	case SourceTypeArchive:
		context["pbix_path"] = result.Source
	default:
		context["pbip_path"] = result.Source
	}

	result.ContextPath = filepath.Join(e.outDir, ContextFileName)
	return writeJSON(result.ContextPath, context)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
