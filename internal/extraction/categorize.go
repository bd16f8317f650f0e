package extraction

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/williampepple1/site-snapshot/pkg/models"
)

var categoryPatterns = []struct {
	category models.Category
	pattern  *regexp.Regexp
}{
	{models.CategoryCSS, regexp.MustCompile(`\.css(\?|$)`)},
	{models.CategoryJS, regexp.MustCompile(`\.js(\?|$)`)},
	{models.CategoryImages, regexp.MustCompile(`\.(png|jpg|jpeg|gif|svg|webp|ico)(\?|$)`)},
	{models.CategoryFonts, regexp.MustCompile(`\.(woff|woff2|ttf|eot|otf)(\?|$)`)},
}

// Categorize infers an asset bucket from the extension of the URL's path.
// The query string is never consulted. URLs without a recognised extension
// land in the other bucket.
func Categorize(rawURL string) models.Category {
	target := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		target = u.Path
	}
	lower := strings.ToLower(target)
	for _, cp := range categoryPatterns {
		if cp.pattern.MatchString(lower) {
			return cp.category
		}
	}
	return models.CategoryOther
}

// place picks the bucket for a URL found by a rule that suggests hint.
func place(rawURL string, hint models.Category) models.Category {
	if c := Categorize(rawURL); c != models.CategoryOther {
		return c
	}
	return hint
}
