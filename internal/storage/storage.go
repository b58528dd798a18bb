package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"lunch-menu-planner/internal/recipe"
)

// Snapshot is the on-disk layout of a classified catalog.
type Snapshot struct {
	Recipes []recipe.Recipe `json:"recipes"`
	Soups   []recipe.Soup   `json:"soups"`
}

// CatalogFile stores a classified catalog as a single JSON document so a
// planning run can start without the database.
type CatalogFile struct {
	path string
}

// NewCatalogFile creates a CatalogFile and ensures its directory exists.
func NewCatalogFile(path string) (*CatalogFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory for %s: %w", path, err)
	}
	return &CatalogFile{path: path}, nil
}

// Path returns the snapshot location.
func (f *CatalogFile) Path() string {
	return f.path
}

// Save writes the catalog, replacing any previous snapshot.
func (f *CatalogFile) Save(c *recipe.Catalog) error {
	data, err := json.MarshalIndent(Snapshot{Recipes: c.Recipes(), Soups: c.Soups()}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to replace catalog file: %w", err)
	}
	return nil
}

// Load reads the snapshot and rebuilds the catalog from it.
func (f *CatalogFile) Load() (*recipe.Catalog, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog: %w", err)
	}

	c, err := recipe.NewCatalogFrom(snap.Recipes, snap.Soups)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog from %s: %w", f.path, err)
	}
	return c, nil
}

// Exists checks if a snapshot has been written.
func (f *CatalogFile) Exists() bool {
	_, err := os.Stat(f.path)
	return err == nil
}
