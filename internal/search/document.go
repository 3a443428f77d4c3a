package search

import (
	"strings"

	"github.com/sakif/code-resources/internal/model"
)

// DocType distinguishes the kinds of documents in the index.
type DocType string

const (
	DocTypeResource DocType = "resource"
	DocTypeSnippet  DocType = "snippet"
)

// Valid reports whether t is a known document type.
func (t DocType) Valid() bool {
	return t == DocTypeResource || t == DocTypeSnippet
}

// Document is one indexed item.
type Document struct {
	ID          string
	Type        DocType
	Title       string
	Description string
	Tags        []string
	CategoryID  string
	Language    string
	Code        string
}

// key is the bleve document ID. Resource and snippet IDs come from separate
// tables, so the type is part of the key.
func (d *Document) key() string {
	return string(d.Type) + ":" + d.ID
}

// toMap converts the document to the field names used by the mapping.
func (d *Document) toMap() map[string]any {
	m := map[string]any{
		"id":          d.ID,
		"type":        string(d.Type),
		"title":       d.Title,
		"description": d.Description,
	}
	if len(d.Tags) > 0 {
		tags := make([]string, len(d.Tags))
		for i, t := range d.Tags {
			tags[i] = strings.ToLower(t)
		}
		m["tags"] = tags
	}
	if d.CategoryID != "" {
		m["category_id"] = d.CategoryID
	}
	if d.Language != "" {
		m["language"] = d.Language
	}
	if d.Code != "" {
		m["code"] = d.Code
	}
	return m
}

// ResourceDocument builds the index document for a resource.
func ResourceDocument(r *model.Resource) *Document {
	return &Document{
		ID:          r.ID,
		Type:        DocTypeResource,
		Title:       r.Title,
		Description: r.Description,
		Tags:        r.Tags,
		CategoryID:  r.CategoryID,
	}
}

// SnippetDocument builds the index document for a snippet.
func SnippetDocument(s *model.Snippet) *Document {
	return &Document{
		ID:          s.ID,
		Type:        DocTypeSnippet,
		Title:       s.Title,
		Description: s.Description,
		Tags:        s.Tags,
		Language:    s.Language,
		Code:        s.Code,
	}
}
