package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Category is an asset bucket of the manifest
type Category string

const (
	CategoryCSS    Category = "css"
	CategoryJS     Category = "js"
	CategoryImages Category = "images"
	CategoryFonts  Category = "fonts"
	CategoryOther  Category = "other"
)

// AllCategories lists every bucket in manifest order.
var AllCategories = []Category{CategoryCSS, CategoryJS, CategoryImages, CategoryFonts, CategoryOther}

// ParseCategory converts a bucket name to a Category.
func ParseCategory(s string) (Category, error) {
	for _, c := range AllCategories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown asset category %q", s)
}

// AssetManifest is the handoff between the render and fetch stages.
// Every URL lives in at most one bucket; the first placement wins.
type AssetManifest struct {
	ScrapedAt time.Time `json:"scrapedAt"`
	BaseURL   string    `json:"baseUrl"`
	CSS       []string  `json:"css"`
	JS        []string  `json:"js"`
	Images    []string  `json:"images"`
	Fonts     []string  `json:"fonts"`
	Other     []string  `json:"other"`

	seen map[string]Category
}

// NewAssetManifest creates an empty manifest for the given origin.
func NewAssetManifest(baseURL string) *AssetManifest {
	return &AssetManifest{
		BaseURL: baseURL,
		CSS:     []string{},
		JS:      []string{},
		Images:  []string{},
		Fonts:   []string{},
		Other:   []string{},
		seen:    make(map[string]Category),
	}
}

func (m *AssetManifest) bucket(c Category) *[]string {
	switch c {
	case CategoryCSS:
		return &m.CSS
	case CategoryJS:
		return &m.JS
	case CategoryImages:
		return &m.Images
	case CategoryFonts:
		return &m.Fonts
	default:
		return &m.Other
	}
}

func (m *AssetManifest) index() {
	if m.seen != nil {
		return
	}
	m.seen = make(map[string]Category)
	for _, c := range AllCategories {
		for _, u := range *m.bucket(c) {
			if _, ok := m.seen[u]; !ok {
				m.seen[u] = c
			}
		}
	}
}

// Add inserts url into the bucket c. It reports false when the URL is
// already present in any bucket.
func (m *AssetManifest) Add(c Category, url string) bool {
	m.index()
	if _, ok := m.seen[url]; ok {
		return false
	}
	m.seen[url] = c
	b := m.bucket(c)
	*b = append(*b, url)
	return true
}

// Bucket returns the URLs of a single category in insertion order.
func (m *AssetManifest) Bucket(c Category) []string {
	return *m.bucket(c)
}

// Counts returns the number of URLs per category.
func (m *AssetManifest) Counts() map[Category]int {
	counts := make(map[Category]int, len(AllCategories))
	for _, c := range AllCategories {
		counts[c] = len(*m.bucket(c))
	}
	return counts
}

// Total returns the number of URLs across the given categories, or across
// all of them when none are given.
func (m *AssetManifest) Total(categories ...Category) int {
	if len(categories) == 0 {
		categories = AllCategories
	}
	n := 0
	for _, c := range categories {
		n += len(*m.bucket(c))
	}
	return n
}

// MarshalJSON keeps empty buckets as arrays instead of null.
func (m *AssetManifest) MarshalJSON() ([]byte, error) {
	type plain AssetManifest
	out := plain{
		ScrapedAt: m.ScrapedAt,
		BaseURL:   m.BaseURL,
	}
	for _, c := range AllCategories {
		urls := *m.bucket(c)
		if urls == nil {
			urls = []string{}
		}
		*(*AssetManifest)(&out).bucket(c) = urls
	}
	return json.Marshal(out)
}
