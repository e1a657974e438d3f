package domain

// Category is a node of the category ontology. Top-level nodes group
// sub-categories; sub-categories are leaves.
type Category struct {
	Key      string     `json:"key"`             // Unique per level, e.g. "technology"
	Label    string     `json:"label"`           // Display name, e.g. "Technology"
	Children []Category `json:"children,omitempty"`
}

// HasChildren reports whether the category groups sub-categories
func (c Category) HasChildren() bool {
	return len(c.Children) > 0
}
