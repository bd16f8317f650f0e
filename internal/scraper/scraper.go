package scraper

import (
	"context"

	"github.com/williampepple1/site-snapshot/pkg/models"
)

// PageRenderer renders a page and returns its final markup and screenshot
type PageRenderer interface {
	Render(ctx context.Context, pageURL string) (*models.RenderedPage, error)
	Close() error
}

// AssetGetter downloads the body of an asset URL
type AssetGetter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

var (
	_ PageRenderer = (*BrowserScraper)(nil)
	_ AssetGetter  = (*HTTPScraper)(nil)
)
