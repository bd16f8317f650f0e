package worker

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/williampepple1/site-snapshot/internal/config"
	"github.com/williampepple1/site-snapshot/internal/extraction"
	"github.com/williampepple1/site-snapshot/internal/io"
	"github.com/williampepple1/site-snapshot/internal/scraper"
	"github.com/williampepple1/site-snapshot/pkg/models"
)

// Renderer runs the render stage: every configured page, one at a time
type Renderer struct {
	Config    *config.AppConfig
	Browser   scraper.PageRenderer
	Extractor *extraction.Extractor
	Writer    *io.ResultWriter
}

// NewRenderer creates a render stage over the given browser
func NewRenderer(cfg *config.AppConfig, browser scraper.PageRenderer) *Renderer {
	return &Renderer{
		Config:    cfg,
		Browser:   browser,
		Extractor: extraction.NewExtractor(),
		Writer:    io.NewResultWriter(io.NewLayout(&cfg.Output)),
	}
}

// Run renders every page, accumulating asset references into a manifest.
// A failing page is logged and recorded, and the loop moves on.
// The manifest and page list are written even when ctx is cancelled midway.
func (r *Renderer) Run(ctx context.Context) (*models.AssetManifest, *models.PageList, error) {
	if err := r.Writer.EnsureDirs(); err != nil {
		return nil, nil, err
	}

	manifest := models.NewAssetManifest(r.Config.Site.BaseURL)
	list := &models.PageList{Pages: make([]models.ResolvedPage, 0, len(r.Config.Site.Pages))}
	total := len(r.Config.Site.Pages)

	for i, p := range r.Config.Site.Pages {
		if ctx.Err() != nil {
			break
		}

		resolved := models.ResolvedPage{
			PageSpec: p,
			FullURL:  PageURL(r.Config.Site.BaseURL, p.Path),
		}
		logger := slog.With("page", p.Path, "n", i+1, "of", total)
		if p.RequiresAuth {
			logger.Warn("page requires authentication, rendering with the existing browser session")
		}

		added, err := r.renderPage(ctx, manifest, resolved)
		if err != nil {
			logger.Warn("page failed", "url", resolved.FullURL, "code", models.ErrorCode(err), "error", err)
			resolved.Err = err.Error()
		} else {
			logger.Info("page rendered", "url", resolved.FullURL, "new_assets", added)
			resolved.Rendered = true
		}
		list.Pages = append(list.Pages, resolved)
	}

	now := time.Now().UTC()
	manifest.ScrapedAt = now
	list.ScrapedAt = now

	if err := r.Writer.WriteManifest(manifest); err != nil {
		return manifest, list, err
	}
	if err := r.Writer.WritePageList(list); err != nil {
		return manifest, list, err
	}
	return manifest, list, ctx.Err()
}

func (r *Renderer) renderPage(ctx context.Context, manifest *models.AssetManifest, p models.ResolvedPage) (int, error) {
	rendered, err := r.Browser.Render(ctx, p.FullURL)
	if err != nil {
		return 0, err
	}

	added, err := r.Extractor.ExtractInto(manifest, rendered.HTML, p.FullURL)
	if err != nil {
		return added, err
	}

	if _, _, err := r.Writer.SavePage(p.PageSpec, rendered.HTML, rendered.Screenshot); err != nil {
		return added, err
	}
	return added, nil
}

// PageURL joins the base origin and a page path
func PageURL(baseURL, path string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}
