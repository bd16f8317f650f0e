package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestAssetManifestAdd(t *testing.T) {
	m := NewAssetManifest("https://x")

	if !m.Add(CategoryCSS, "https://x/a.css") {
		t.Fatal("first Add() should report the URL as new")
	}
	if m.Add(CategoryCSS, "https://x/a.css") {
		t.Error("second Add() of the same URL should report false")
	}
	if m.Add(CategoryOther, "https://x/a.css") {
		t.Error("a URL must not be placed in a second bucket")
	}

	if got := m.Bucket(CategoryCSS); len(got) != 1 {
		t.Errorf("css bucket = %v, want one URL", got)
	}
	if got := m.Bucket(CategoryOther); len(got) != 0 {
		t.Errorf("other bucket = %v, want empty", got)
	}
	if got := m.Bucket(CategoryCSS); len(got) != 1 || got[0] != "https://x/a.css" {
		t.Errorf("css bucket = %v", got)
	}
}

func TestAssetManifestPreservesInsertionOrder(t *testing.T) {
	m := NewAssetManifest("https://x")
	for i := 0; i < 5; i++ {
		m.Add(CategoryImages, fmt.Sprintf("https://x/%d.png", 4-i))
	}
	got := strings.Join(m.Bucket(CategoryImages), ",")
	want := "https://x/4.png,https://x/3.png,https://x/2.png,https://x/1.png,https://x/0.png"
	if got != want {
		t.Errorf("bucket order = %s, want %s", got, want)
	}
}

func TestAssetManifestTotal(t *testing.T) {
	m := NewAssetManifest("https://x")
	m.Add(CategoryCSS, "https://x/a.css")
	m.Add(CategoryJS, "https://x/a.js")
	m.Add(CategoryOther, "https://x/blob")

	if n := m.Total(); n != 3 {
		t.Errorf("Total() = %d, want 3", n)
	}
	if n := m.Total(CategoryCSS, CategoryJS); n != 2 {
		t.Errorf("Total(css, js) = %d, want 2", n)
	}
	if counts := m.Counts(); counts[CategoryOther] != 1 || counts[CategoryFonts] != 0 {
		t.Errorf("Counts() = %v", counts)
	}
}

func TestAssetManifestJSON(t *testing.T) {
	m := NewAssetManifest("https://x")
	m.Add(CategoryCSS, "https://x/a.css")

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	for _, key := range []string{"scrapedAt", "baseUrl", "css", "js", "images", "fonts", "other"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("manifest JSON lacks %q: %s", key, data)
		}
	}
	if string(raw["fonts"]) != "[]" {
		t.Errorf("empty bucket serialized as %s, want []", raw["fonts"])
	}
}

func TestAssetManifestDecodedCanBeExtended(t *testing.T) {
	var m AssetManifest
	if err := json.Unmarshal([]byte(`{"baseUrl":"https://x","css":["https://x/a.css"]}`), &m); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if m.Add(CategoryJS, "https://x/a.css") {
		t.Error("decoded URLs should be known to Add()")
	}
	if !m.Add(CategoryJS, "https://x/a.js") {
		t.Error("Add() of a new URL on a decoded manifest should succeed")
	}

	data, err := json.Marshal(&m)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), `"other":[]`) {
		t.Errorf("missing buckets should serialize as empty arrays: %s", data)
	}
}

func TestDownloadOutcomeJSON(t *testing.T) {
	tests := []struct {
		name    string
		outcome DownloadOutcome
		want    []string
		absent  []string
	}{
		{
			name:    "failed",
			outcome: DownloadOutcome{URL: "https://x/a.js", Category: CategoryJS, Status: StatusFailed, Err: "HTTP_STATUS: received status 404"},
			want:    []string{`"path":null`, `"status":"failed"`, `"error":"HTTP_STATUS: received status 404"`},
			absent:  []string{`"size"`},
		},
		{
			name:    "empty download",
			outcome: DownloadOutcome{URL: "https://x/empty.css", Category: CategoryCSS, Path: "assets/css/empty.css", Status: StatusDownloaded},
			want:    []string{`"path":"assets/css/empty.css"`, `"size":0`},
			absent:  []string{`"error"`},
		},
		{
			name:    "skipped",
			outcome: DownloadOutcome{URL: "https://x/a.css", Category: CategoryCSS, Path: "assets/css/a.css", Status: StatusSkipped},
			want:    []string{`"path":"assets/css/a.css"`, `"status":"skipped"`},
			absent:  []string{`"size"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal([]DownloadOutcome{tt.outcome})
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(string(data), w) {
					t.Errorf("%s lacks %s", data, w)
				}
			}
			for _, a := range tt.absent {
				if strings.Contains(string(data), a) {
					t.Errorf("%s should not contain %s", data, a)
				}
			}

			var back []DownloadOutcome
			if err := json.Unmarshal(data, &back); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if back[0] != tt.outcome {
				t.Errorf("decoded %+v, want %+v", back[0], tt.outcome)
			}
		})
	}
}

func TestParseCategory(t *testing.T) {
	for _, c := range AllCategories {
		got, err := ParseCategory(string(c))
		if err != nil || got != c {
			t.Errorf("ParseCategory(%q) = %q, %v", c, got, err)
		}
	}
	if _, err := ParseCategory("video"); err == nil {
		t.Error("ParseCategory(video) should fail")
	}
}

func TestSummarize(t *testing.T) {
	outcomes := []DownloadOutcome{
		{URL: "a", Status: StatusDownloaded, Size: 100},
		{URL: "b", Status: StatusDownloaded, Size: 50},
		{URL: "c", Status: StatusSkipped},
		{URL: "d", Status: StatusFailed, Err: "boom"},
	}
	got := Summarize(outcomes)
	want := DownloadResults{Downloaded: 2, Skipped: 1, Failed: 1, TotalSize: 150}
	if got != want {
		t.Errorf("Summarize() = %+v, want %+v", got, want)
	}
}

func TestSnapshotError(t *testing.T) {
	cause := errors.New("deadline exceeded")
	err := fmt.Errorf("page /: %w", NewSnapshotError(ErrCodeNavigationTimeout, "navigation timed out", cause))

	if !errors.Is(err, cause) {
		t.Error("SnapshotError should unwrap to its cause")
	}
	if code := ErrorCode(err); code != ErrCodeNavigationTimeout {
		t.Errorf("ErrorCode() = %q, want %q", code, ErrCodeNavigationTimeout)
	}
	if code := ErrorCode(cause); code != "" {
		t.Errorf("ErrorCode() of a plain error = %q, want empty", code)
	}
	if msg := NewSnapshotError(ErrCodeFetch, "no body", nil).Error(); msg != "FETCH_FAILED: no body" {
		t.Errorf("Error() = %q", msg)
	}
}
