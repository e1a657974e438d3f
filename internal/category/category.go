// Package category holds the bundled category ontology and the lookups used
// to turn a category into discover and list queries.
package category

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"ravebox/discover/internal/domain"
)

//go:embed categories.json
var ontologyJSON []byte

var (
	defaultOnce sync.Once
	defaultList []domain.Category
	defaultErr  error
)

// Default returns the bundled ontology. It is parsed once and must be
// treated as read-only by callers.
func Default() ([]domain.Category, error) {
	defaultOnce.Do(func() {
		defaultList, defaultErr = Parse(ontologyJSON)
	})
	return defaultList, defaultErr
}

// Parse decodes a category ontology from JSON
func Parse(data []byte) ([]domain.Category, error) {
	var list []domain.Category
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to decode category ontology: %w", err)
	}
	return list, nil
}

// GetCategory returns the first top-level category with the given key that
// has sub-categories. Leaf categories are never returned, even on a key
// match: the result is always expandable with SubCategoryQueries.
func GetCategory(key string, list []domain.Category) (domain.Category, bool) {
	for _, c := range list {
		if c.Key == key && c.HasChildren() {
			return c, true
		}
	}
	return domain.Category{}, false
}

// Find looks a key up anywhere in the tree, depth first, leaves included
func Find(key string, list []domain.Category) (domain.Category, bool) {
	for _, c := range list {
		if c.Key == key {
			return c, true
		}
		if found, ok := Find(key, c.Children); ok {
			return found, true
		}
	}
	return domain.Category{}, false
}

// SubCategoryQueries returns the keys of the immediate children in order
func SubCategoryQueries(c domain.Category) []string {
	queries := make([]string, 0, len(c.Children))
	for _, child := range c.Children {
		queries = append(queries, child.Key)
	}
	return queries
}

func TopLevelCategories(list []domain.Category) []string {
	keys := make([]string, 0, len(list))
	for _, c := range list {
		keys = append(keys, c.Key)
	}
	return keys
}
