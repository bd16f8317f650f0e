package config

import "github.com/williampepple1/site-snapshot/pkg/models"

// DefaultUserAgent is a desktop Chrome user agent used by both the browser and the asset client
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultBaseURL is the origin snapshotted when no configuration is provided
const DefaultBaseURL = "https://deeppersonality.app"

// DefaultPages provides the page list used when none is configured
var DefaultPages = []models.PageSpec{
	{Path: "/", Filename: "index.html"},
	{Path: "/privacy", Filename: "privacy.html"},
	{Path: "/terms", Filename: "terms.html"},
	{Path: "/assessment", Filename: "assessment.html", RequiresAuth: true},
	{Path: "/results", Filename: "results.html", RequiresAuth: true},
	{Path: "/profile", Filename: "profile.html", RequiresAuth: true},
}

// DefaultFetchCategories is the bucket order used by the fetch stage.
// The other bucket is left for manual triage.
var DefaultFetchCategories = []models.Category{
	models.CategoryCSS,
	models.CategoryJS,
	models.CategoryImages,
	models.CategoryFonts,
}
