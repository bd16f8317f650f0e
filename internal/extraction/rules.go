package extraction

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/williampepple1/site-snapshot/pkg/models"
)

// ref is an unresolved asset reference together with the bucket suggested by the rule that found it
type ref struct {
	raw  string
	hint models.Category
}

// rule finds asset references in a parsed document
type rule struct {
	name    string
	matcher cascadia.Selector
	collect func(s *goquery.Selection) []ref
}

var styleURLPattern = regexp.MustCompile(`url\(\s*['"]?([^'")]+?)['"]?\s*\)`)

// defaultRules is the fixed set of reference rules applied to every page
var defaultRules = []rule{
	{
		name:    "stylesheet",
		matcher: cascadia.MustCompile(`link[rel="stylesheet"][href]`),
		collect: attrRef("href", models.CategoryCSS),
	},
	{
		name:    "script",
		matcher: cascadia.MustCompile(`script[src]`),
		collect: attrRef("src", models.CategoryJS),
	},
	{
		name:    "image",
		matcher: cascadia.MustCompile(`img[src]`),
		collect: attrRef("src", models.CategoryImages),
	},
	{
		name:    "inline-style",
		matcher: cascadia.MustCompile(`[style*="url("]`),
		collect: styleRefs,
	},
	{
		name:    "icon",
		matcher: cascadia.MustCompile(`link[href][rel*="icon"], link[href][rel*="apple-touch"]`),
		collect: attrRef("href", models.CategoryImages),
	},
	{
		name:    "srcset",
		matcher: cascadia.MustCompile(`img[srcset], source[srcset]`),
		collect: srcsetRefs,
	},
	{
		name:    "preload",
		matcher: cascadia.MustCompile(`link[href][rel~="preload"], link[href][rel~="modulepreload"]`),
		collect: preloadRefs,
	},
}

func attrRef(attr string, hint models.Category) func(s *goquery.Selection) []ref {
	return func(s *goquery.Selection) []ref {
		v, ok := s.Attr(attr)
		if !ok {
			return nil
		}
		return []ref{{raw: v, hint: hint}}
	}
}

func styleRefs(s *goquery.Selection) []ref {
	style, _ := s.Attr("style")
	var refs []ref
	for _, m := range styleURLPattern.FindAllStringSubmatch(style, -1) {
		u := strings.TrimSpace(m[1])
		if u == "" || strings.HasPrefix(u, "data:") {
			continue
		}
		refs = append(refs, ref{raw: u, hint: models.CategoryImages})
	}
	return refs
}

// srcsetRefs returns the URL of every candidate in a srcset list
func srcsetRefs(s *goquery.Selection) []ref {
	srcset, _ := s.Attr("srcset")
	var refs []ref
	for _, candidate := range strings.Split(srcset, ",") {
		fields := strings.Fields(candidate)
		if len(fields) == 0 || strings.HasPrefix(fields[0], "data:") {
			continue
		}
		refs = append(refs, ref{raw: fields[0], hint: models.CategoryImages})
	}
	return refs
}

var preloadKinds = map[string]models.Category{
	"style":  models.CategoryCSS,
	"script": models.CategoryJS,
	"image":  models.CategoryImages,
	"font":   models.CategoryFonts,
}

func preloadRefs(s *goquery.Selection) []ref {
	href, _ := s.Attr("href")
	hint := models.CategoryOther
	if rel, _ := s.Attr("rel"); strings.Contains(rel, "modulepreload") {
		hint = models.CategoryJS
	} else if c, ok := preloadKinds[strings.ToLower(s.AttrOr("as", ""))]; ok {
		hint = c
	}
	return []ref{{raw: href, hint: hint}}
}
