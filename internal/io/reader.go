package io

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/williampepple1/site-snapshot/pkg/models"
)

// ErrManifestNotFound is returned when the fetch stage runs before any render produced a manifest
var ErrManifestNotFound = models.NewSnapshotError(models.ErrCodeManifestNotFound, "asset manifest not found", nil)

// ManifestReader reads the render stage's artifacts
type ManifestReader struct {
	Layout Layout
}

// NewManifestReader creates a new manifest reader
func NewManifestReader(layout Layout) *ManifestReader {
	return &ManifestReader{
		Layout: layout,
	}
}

// ReadManifest loads the asset manifest from the metadata directory
func (r *ManifestReader) ReadManifest() (*models.AssetManifest, error) {
	path := r.Layout.ManifestPath()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrManifestNotFound)
	}
	if err != nil {
		return nil, err
	}

	var manifest models.AssetManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &manifest, nil
}

// ReadPageList loads the resolved page list written by the render stage
func (r *ManifestReader) ReadPageList() (*models.PageList, error) {
	data, err := os.ReadFile(r.Layout.PageListPath())
	if err != nil {
		return nil, err
	}
	var list models.PageList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", r.Layout.PageListPath(), err)
	}
	return &list, nil
}
