package domain

// DiscoverGroup is the top level of the discover response: a category with
// its sub-category groups.
type DiscoverGroup struct {
	Category Category           `json:"category"`
	Items    []DiscoverSubGroup `json:"items"`
}

type DiscoverSubGroup struct {
	Category Category               `json:"category"`
	Items    []DiscoverProductGroup `json:"items"`
}

type DiscoverProductGroup struct {
	Product Product  `json:"product"`
	Reviews []Review `json:"reviews"`
}

// ReviewList is a flat, displayable list of reviews. ID is the key of the
// category (or query) it was derived from.
type ReviewList struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	URL     string   `json:"url"`
	Reviews []Review `json:"reviews"`
}
