package domain

import "time"

type User struct {
	ID     string `json:"_id"`
	Handle string `json:"handle"`
	Avatar string `json:"avatar,omitempty"`
}

type Product struct {
	ID         string     `json:"_id"`
	Brand      string     `json:"brand"`
	Name       string     `json:"name"`
	Categories []Category `json:"categories,omitempty"`
}

// Review is a rave: a user-submitted product review video.
// Values are copied by the transforms, never mutated in place.
type Review struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Product     Product   `json:"product"`
	User        User      `json:"user"`
	Recommended bool      `json:"recommended"`
	Sponsored   bool      `json:"sponsored"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
}
