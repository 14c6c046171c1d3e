// Package catalog supplies the action catalog that prices estimated actions.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"os"

	"github.com/mohannad-b/Wrkcodean-sub006/internal/domain"
)

// Loader fetches a fresh copy of the action catalog.
type Loader interface {
	Load(ctx context.Context) (domain.ActionCatalog, error)
}

// FileLoader reads a JSON object of the form {"action-type": {"listPrice": 0.25}}.
type FileLoader struct {
	Path string
}

// Load reads and decodes the catalog file.
func (l FileLoader) Load(_ context.Context) (domain.ActionCatalog, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", l.Path, err)
	}
	return Decode(data)
}

// Decode parses a JSON catalog and rejects negative list prices.
func Decode(data []byte) (domain.ActionCatalog, error) {
	var catalog domain.ActionCatalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	for action, entry := range catalog {
		if entry.ListPrice < 0 {
			return nil, fmt.Errorf("catalog entry %q has negative list price %v", action, entry.ListPrice)
		}
	}
	if catalog == nil {
		catalog = domain.ActionCatalog{}
	}
	return catalog, nil
}

// StaticLoader serves a fixed catalog.
type StaticLoader domain.ActionCatalog

// Load returns a copy of the fixed catalog.
func (l StaticLoader) Load(_ context.Context) (domain.ActionCatalog, error) {
	return maps.Clone(domain.ActionCatalog(l)), nil
}

// DefaultCatalog is served when no catalog file is configured.
var DefaultCatalog = StaticLoader{
	"wrkaction-1":  {ListPrice: 1},
	"wrkaction-2":  {ListPrice: 0.5},
	"wrkaction-10": {ListPrice: 0.1},
	"wrkaction-79": {ListPrice: 0.25},
}
