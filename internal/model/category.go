// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data. The `json` tags control the API
// shape and the `db` tags tell sqlx which column fills which field.
package model

import "time"

// Category is a named grouping used to filter resources.
//
// Slug is the public identifier used in URLs and filter selections
// (e.g. "react-libraries"); ID is the internal primary key that resources
// reference through CategoryID.
type Category struct {
	ID          string    `json:"id"                 db:"id"`
	Name        string    `json:"name"               db:"name"`
	Slug        string    `json:"slug"               db:"slug"`
	Description string    `json:"description"        db:"description"`
	Color       string    `json:"color,omitempty"    db:"color"`
	Icon        string    `json:"icon,omitempty"     db:"icon"`
	ParentID    *string   `json:"parentId,omitempty" db:"parent_id"`
	CreatedAt   time.Time `json:"createdAt"          db:"created_at"`
}

// AllCategories is the selection value meaning "no category filter".
const AllCategories = "all"
