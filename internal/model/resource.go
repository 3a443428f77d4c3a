package model

import "time"

// Resource is a catalogued external link (tutorial, tool, library).
type Resource struct {
	ID          string    `json:"id"              db:"id"`
	Title       string    `json:"title"           db:"title"`
	Description string    `json:"description"     db:"description"`
	URL         string    `json:"url"             db:"url"`
	Image       string    `json:"image,omitempty" db:"image"`
	CategoryID  string    `json:"categoryId"      db:"category_id"`
	Tags        Tags      `json:"tags"            db:"tags"`
	Featured    bool      `json:"featured"        db:"featured"`
	DateAdded   time.Time `json:"dateAdded"       db:"date_added"`
	ViewsCount  int64     `json:"viewsCount"      db:"views_count"`
	LikesCount  int64     `json:"likesCount"      db:"likes_count"`
	ClicksCount int64     `json:"clicksCount"     db:"clicks_count"`
}

// ResourceWithCategory pairs a resource with the category it belongs to.
// Category is nil when the referenced category no longer exists.
type ResourceWithCategory struct {
	Resource *Resource `json:"resource"`
	Category *Category `json:"category"`
}
