package extraction

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/williampepple1/site-snapshot/pkg/models"
)

// Asset is a resolved asset reference and the bucket it belongs to
type Asset struct {
	URL      string
	Category models.Category
}

// Extractor finds static asset references in rendered HTML
type Extractor struct {
	rules []rule
}

// NewExtractor creates an extractor with the default reference rules
func NewExtractor() *Extractor {
	return &Extractor{
		rules: defaultRules,
	}
}

// Extract parses html and returns every asset it references, resolved
// against pageURL. Each URL is returned once, in rule order.
func (e *Extractor) Extract(html, pageURL string) ([]Asset, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parsing page URL %q: %w", pageURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML of %s: %w", pageURL, err)
	}

	seen := make(map[string]bool)
	var assets []Asset
	for _, r := range e.rules {
		doc.FindMatcher(r.matcher).Each(func(i int, s *goquery.Selection) {
			for _, ref := range r.collect(s) {
				abs, ok := resolve(base, ref.raw)
				if !ok {
					slog.Debug("skipping asset reference", "page", pageURL, "rule", r.name, "ref", ref.raw)
					continue
				}
				if seen[abs] {
					continue
				}
				seen[abs] = true
				assets = append(assets, Asset{URL: abs, Category: place(abs, ref.hint)})
			}
		})
	}

	return assets, nil
}

// ExtractInto adds the assets referenced by html to the manifest and
// returns how many of them were new.
func (e *Extractor) ExtractInto(m *models.AssetManifest, html, pageURL string) (int, error) {
	assets, err := e.Extract(html, pageURL)
	if err != nil {
		return 0, err
	}
	added := 0
	for _, a := range assets {
		if m.Add(a.Category, a.URL) {
			added++
		}
	}
	return added, nil
}

// resolve turns a raw reference into an absolute http(s) URL
func resolve(base *url.URL, raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	u, err := base.Parse(raw)
	if err != nil {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if u.Host == "" {
		return "", false
	}
	return u.String(), true
}
