package models

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"time"
)

// PageSpec describes one page of the site to snapshot
type PageSpec struct {
	Path         string `yaml:"path" json:"path"`
	Filename     string `yaml:"filename" json:"filename"`
	RequiresAuth bool   `yaml:"requires_auth" json:"requiresAuth"`
}

// ScreenshotFilename is the page filename with its extension replaced by .png
func (p PageSpec) ScreenshotFilename() string {
	return strings.TrimSuffix(p.Filename, filepath.Ext(p.Filename)) + ".png"
}

// ResolvedPage is a PageSpec annotated with its full URL and render outcome
type ResolvedPage struct {
	PageSpec
	FullURL  string `json:"fullUrl"`
	Rendered bool   `json:"rendered"`
	Err      string `json:"error,omitempty"`
}

// PageList is the content of the resolved-pages metadata file
type PageList struct {
	ScrapedAt time.Time      `json:"scrapedAt"`
	Pages     []ResolvedPage `json:"pages"`
}

// RenderedPage holds what the browser produced for a single page
type RenderedPage struct {
	URL        string
	HTML       string
	Screenshot []byte
}

// DownloadStatus is the outcome of a single asset attempt
type DownloadStatus string

const (
	StatusDownloaded DownloadStatus = "downloaded"
	StatusSkipped    DownloadStatus = "skipped"
	StatusFailed     DownloadStatus = "failed"
)

// DownloadOutcome represents the result of fetching one asset
type DownloadOutcome struct {
	URL      string         `json:"url"`
	Category Category       `json:"category"`
	Path     string         `json:"path"`
	Status   DownloadStatus `json:"status"`
	Size     int64          `json:"size"`
	Err      string         `json:"error,omitempty"`
}

// MarshalJSON writes path as null when nothing was stored and reports size
// only for downloaded assets, zero-byte ones included.
func (o DownloadOutcome) MarshalJSON() ([]byte, error) {
	type wire struct {
		URL      string         `json:"url"`
		Category Category       `json:"category"`
		Path     *string        `json:"path"`
		Status   DownloadStatus `json:"status"`
		Size     *int64         `json:"size,omitempty"`
		Err      string         `json:"error,omitempty"`
	}
	w := wire{URL: o.URL, Category: o.Category, Status: o.Status, Err: o.Err}
	if o.Path != "" {
		w.Path = &o.Path
	}
	if o.Status == StatusDownloaded {
		w.Size = &o.Size
	}
	return json.Marshal(w)
}

// DownloadResults holds the aggregate counters of a fetch run
type DownloadResults struct {
	Downloaded int   `json:"downloaded"`
	Skipped    int   `json:"skipped"`
	Failed     int   `json:"failed"`
	TotalSize  int64 `json:"totalSize"`
}

// DownloadLog is written once at the end of a fetch run
type DownloadLog struct {
	CompletedAt time.Time         `json:"completedAt"`
	Results     DownloadResults   `json:"results"`
	Assets      []DownloadOutcome `json:"assets"`
}

// Summarize folds the outcomes into aggregate counters.
func Summarize(outcomes []DownloadOutcome) DownloadResults {
	var r DownloadResults
	for _, o := range outcomes {
		switch o.Status {
		case StatusDownloaded:
			r.Downloaded++
			r.TotalSize += o.Size
		case StatusSkipped:
			r.Skipped++
		default:
			r.Failed++
		}
	}
	return r
}
