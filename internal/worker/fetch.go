package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/williampepple1/site-snapshot/internal/config"
	"github.com/williampepple1/site-snapshot/internal/io"
	"github.com/williampepple1/site-snapshot/internal/scraper"
	"github.com/williampepple1/site-snapshot/pkg/models"
)

// Fetcher runs the fetch stage: it materializes manifest URLs under assets/
type Fetcher struct {
	Config *config.FetchConfig
	Client scraper.AssetGetter
	Layout io.Layout
	Writer *io.ResultWriter
	Store  io.AssetStore
}

// NewFetcher creates a fetch stage using client for downloads
func NewFetcher(cfg *config.AppConfig, client scraper.AssetGetter) *Fetcher {
	layout := io.NewLayout(&cfg.Output)
	return &Fetcher{
		Config: &cfg.Fetch,
		Client: client,
		Layout: layout,
		Writer: io.NewResultWriter(layout),
	}
}

// Run downloads every URL of the configured categories, one at a time.
// Files already on disk are skipped without a request. Failures are recorded
// and never abort the batch. The download log is written before returning.
func (f *Fetcher) Run(ctx context.Context, manifest *models.AssetManifest) (*models.DownloadLog, error) {
	categories := f.Config.Categories
	if len(categories) == 0 {
		categories = config.DefaultFetchCategories
	}
	if err := f.Writer.EnsureDirs(categories...); err != nil {
		return nil, err
	}

	outcomes := make([]models.DownloadOutcome, 0, manifest.Total(categories...))

loop:
	for _, c := range categories {
		urls := manifest.Bucket(c)
		slog.Info("fetching category", "category", c, "count", len(urls))

		for _, u := range urls {
			if ctx.Err() != nil {
				break loop
			}

			outcome := f.fetchOne(ctx, c, u)
			outcomes = append(outcomes, outcome)
			if outcome.Status == models.StatusSkipped {
				continue
			}
			if err := pause(ctx, f.Config.Delay); err != nil {
				break loop
			}
		}
	}

	dl := &models.DownloadLog{
		CompletedAt: time.Now().UTC(),
		Results:     models.Summarize(outcomes),
		Assets:      outcomes,
	}
	if err := f.Writer.WriteDownloadLog(dl); err != nil {
		return dl, err
	}
	return dl, ctx.Err()
}

func (f *Fetcher) fetchOne(ctx context.Context, c models.Category, url string) models.DownloadOutcome {
	path := f.Layout.AssetPath(c, url)
	outcome := models.DownloadOutcome{URL: url, Category: c}

	if f.Store.Exists(path) {
		slog.Info("asset skipped", "category", c, "path", path)
		outcome.Path = path
		outcome.Status = models.StatusSkipped
		return outcome
	}

	body, err := f.Client.Get(ctx, url)
	if err == nil {
		err = f.Store.Write(path, body)
		if err != nil {
			err = models.NewSnapshotError(models.ErrCodeWrite, "storing asset", err)
		}
	}
	if err != nil {
		slog.Warn("asset failed", "category", c, "url", url, "error", err)
		outcome.Status = models.StatusFailed
		outcome.Err = err.Error()
		return outcome
	}

	slog.Info("asset downloaded", "category", c, "path", path, "bytes", len(body))
	outcome.Path = path
	outcome.Status = models.StatusDownloaded
	outcome.Size = int64(len(body))
	return outcome
}
