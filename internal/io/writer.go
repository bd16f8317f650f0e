package io

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2/maybe"
	"github.com/williampepple1/site-snapshot/pkg/models"
)

// ResultWriter writes snapshot artifacts under the output root
type ResultWriter struct {
	Layout Layout
}

// NewResultWriter creates a new result writer
func NewResultWriter(layout Layout) *ResultWriter {
	return &ResultWriter{
		Layout: layout,
	}
}

// EnsureDirs creates the pages and metadata directories and one directory per asset category
func (w *ResultWriter) EnsureDirs(categories ...models.Category) error {
	dirs := []string{w.Layout.PagesDir(), w.Layout.MetadataDir()}
	for _, c := range categories {
		dirs = append(dirs, w.Layout.AssetsDir(c))
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0755); err != nil {
			return models.NewSnapshotError(models.ErrCodeWrite, "creating "+d, err)
		}
	}
	return nil
}

// SavePage stores the HTML snapshot and screenshot of a page and returns their paths
func (w *ResultWriter) SavePage(p models.PageSpec, html string, screenshot []byte) (string, string, error) {
	htmlPath := w.Layout.PageHTMLPath(p)
	if err := writeFileAtomic(htmlPath, []byte(html)); err != nil {
		return "", "", models.NewSnapshotError(models.ErrCodeWrite, "saving page HTML", err)
	}

	shotPath := w.Layout.PageScreenshotPath(p)
	if err := writeFileAtomic(shotPath, screenshot); err != nil {
		return htmlPath, "", models.NewSnapshotError(models.ErrCodeWrite, "saving screenshot", err)
	}
	return htmlPath, shotPath, nil
}

// WriteManifest saves the asset manifest
func (w *ResultWriter) WriteManifest(m *models.AssetManifest) error {
	return writeJSON(w.Layout.ManifestPath(), m)
}

// WritePageList saves the resolved page list
func (w *ResultWriter) WritePageList(list *models.PageList) error {
	return writeJSON(w.Layout.PageListPath(), list)
}

// WriteDownloadLog saves the download log of a fetch run
func (w *ResultWriter) WriteDownloadLog(log *models.DownloadLog) error {
	return writeJSON(w.Layout.DownloadLogPath(), log)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := writeFileAtomic(path, data); err != nil {
		return models.NewSnapshotError(models.ErrCodeWrite, "writing "+filepath.Base(path), err)
	}
	return nil
}

// writeFileAtomic replaces path in one step so readers never observe a partial file.
// Parent directories are created as needed.
func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return maybe.WriteFile(path, data, 0644)
}

// AssetStore keeps downloaded assets on disk
type AssetStore struct{}

// Exists reports whether a file is already present at path.
func (AssetStore) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Write stores data at path, creating parent directories as needed.
func (AssetStore) Write(path string, data []byte) error {
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
