package io

import (
	"path/filepath"

	"github.com/williampepple1/site-snapshot/internal/config"
	"github.com/williampepple1/site-snapshot/pkg/models"
)

const (
	pagesDir    = "pages"
	assetsDir   = "assets"
	metadataDir = "metadata"

	manifestFile    = "assets.json"
	pageListFile    = "urls.json"
	downloadLogFile = "download-log.json"
)

// Layout maps snapshot artifacts to paths under the output root
type Layout struct {
	Root string
}

// NewLayout creates a layout from the output configuration
func NewLayout(cfg *config.OutputConfig) Layout {
	return Layout{Root: cfg.Root}
}

// PagesDir returns the directory holding HTML snapshots and screenshots.
func (l Layout) PagesDir() string { return filepath.Join(l.Root, pagesDir) }

// MetadataDir returns the directory holding the JSON artifacts.
func (l Layout) MetadataDir() string { return filepath.Join(l.Root, metadataDir) }

// AssetsDir returns the directory of one asset category.
func (l Layout) AssetsDir(c models.Category) string {
	return filepath.Join(l.Root, assetsDir, string(c))
}

func (l Layout) ManifestPath() string    { return filepath.Join(l.MetadataDir(), manifestFile) }
func (l Layout) PageListPath() string    { return filepath.Join(l.MetadataDir(), pageListFile) }
func (l Layout) DownloadLogPath() string { return filepath.Join(l.MetadataDir(), downloadLogFile) }

// PageHTMLPath returns where the HTML snapshot of a page is stored.
func (l Layout) PageHTMLPath(p models.PageSpec) string {
	return filepath.Join(l.PagesDir(), p.Filename)
}

// PageScreenshotPath returns where the screenshot of a page is stored:
// the page filename with its extension replaced by .png.
func (l Layout) PageScreenshotPath(p models.PageSpec) string {
	return filepath.Join(l.PagesDir(), p.ScreenshotFilename())
}

// AssetPath returns the destination of an asset URL in its category directory.
func (l Layout) AssetPath(c models.Category, rawURL string) string {
	return filepath.Join(l.AssetsDir(c), LocalFilename(rawURL))
}
