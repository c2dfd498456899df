package commands

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// Definition file extensions that trigger a re-extraction.
var watchedExtensions = map[string]bool{
	".json": true,
	".tmdl": true,
	".pbix": true,
	".pbip": true,
}

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <source>",
		Short: "Re-extract whenever the report definition changes",
		Long: `Watch the report source for changes and re-run the extraction
pipeline after each change, keeping the artifacts current.

Changes are debounced so bulk saves from authoring tools trigger a
single run. Stop with Ctrl-C.`,
		Example: `  # Keep artifacts in sync while editing
  reportlens watch ./reports/Demo.pbip`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			return runWatch(cmd.Context(), cmdCtx, args[0])
		},
	}
}

func runWatch(ctx context.Context, cmdCtx *CommandContext, source string) error {
	extractor := cmdCtx.Extractor()
	r := cmdCtx.Renderer
	logger := cmdCtx.Logger

	// Initial extraction so the artifacts exist before the first change.
	result, err := extractor.Run(ctx, source)
	if err != nil {
		return err
	}
	if renderErr := renderExtractResult(r, result); renderErr != nil {
		return renderErr
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watchSourceRecursive(watcher, source); err != nil {
		return err
	}

	debounce := time.Duration(cmdCtx.Cfg.Watch.DebounceMs) * time.Millisecond
	var debounceTimer *time.Timer

	r.Dim("watching for changes...")
	for {
		select {
		case <-ctx.Done():
			return nil

		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !watchedExtensions[strings.ToLower(filepath.Ext(event.Name))] {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounce, func() {
				logger.Debug("source changed, re-extracting", "file", event.Name)
				result, err := extractor.Run(ctx, source)
				if err != nil {
					logger.Error("extraction failed", "error", err)
					r.Warning(err.Error())
					return
				}
				r.Success("re-extracted " + source)
				for _, w := range result.Warnings {
					r.Warning(w)
				}
			})

		case err := <-watcher.Errors:
			logger.Error("watcher error", "error", err)
		}
	}
}

// watchSourceRecursive registers the source with the watcher: the
// whole tree for a directory or project file, the file itself for an
// archive.
func watchSourceRecursive(watcher *fsnotify.Watcher, source string) error {
	info, err := os.Stat(source)
	if err != nil {
		return err
	}

	root := source
	if !info.IsDir() {
		if strings.EqualFold(filepath.Ext(source), ".pbix") {
			return watcher.Add(source)
		}
		root = filepath.Dir(source)
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
