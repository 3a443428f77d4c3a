// Package catalog holds the in-memory resource catalog and the filter
// pipeline that produces the visible subset for a category selection and a
// free-text query.
//
// The pipeline is deliberately plain: category match AND text match, input
// order preserved, optional stable "featured first" partition. Ranked search
// lives in the search package.
package catalog

import (
	"strings"

	"github.com/samber/lo"

	"github.com/sakif/code-resources/internal/model"
)

// Query describes one filter request.
type Query struct {
	// Category is "all", empty, a category slug or a category id.
	Category string
	// Text is split on whitespace; every term must match.
	Text string

	// Featured restricts results to featured (true) or non-featured (false)
	// resources when set.
	Featured *bool
	// Tags lists tags that must all be present on a resource.
	Tags []string
	// FeaturedFirst moves featured resources to the front, keeping the
	// relative order inside both groups.
	FeaturedFirst bool
	// Limit truncates the result after ordering. Zero means no limit.
	Limit int
}

// Terms lower-cases q and splits it on whitespace. An empty or blank query
// yields no terms.
func Terms(q string) []string {
	return strings.Fields(strings.ToLower(q))
}

// SearchableText is the lower-cased text a resource is matched against:
// title, description and tags joined by spaces.
func SearchableText(r *model.Resource) string {
	parts := make([]string, 0, 2+len(r.Tags))
	parts = append(parts, r.Title, r.Description)
	parts = append(parts, r.Tags...)
	return strings.ToLower(strings.Join(parts, " "))
}

// MatchesText reports whether every term appears in the resource's
// searchable text. No terms matches everything.
func MatchesText(r *model.Resource, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	text := SearchableText(r)
	for _, term := range terms {
		if !strings.Contains(text, term) {
			return false
		}
	}
	return true
}

// MatchesCategory reports whether r belongs to the selected category.
// slugs maps category slug to category id; a slug missing from it matches
// nothing.
func MatchesCategory(r *model.Resource, selection string, slugs map[string]string) bool {
	if selection == "" || selection == model.AllCategories {
		return true
	}
	if r.CategoryID == selection {
		return true
	}
	id, ok := slugs[selection]
	return ok && r.CategoryID == id
}

func matchesTags(r *model.Resource, want []string) bool {
	if len(want) == 0 {
		return true
	}
	have := lo.Map(r.Tags, func(t string, _ int) string { return strings.ToLower(t) })
	return lo.Every(have, want)
}

// Filter returns the resources that satisfy q, in input order (or featured
// first when requested). The input slice is not modified. The result is never
// nil.
func Filter(resources []model.Resource, slugs map[string]string, q Query) []model.Resource {
	terms := Terms(q.Text)
	category := strings.TrimSpace(q.Category)
	tags := model.Tags(q.Tags).Normalize()

	out := lo.Filter(resources, func(r model.Resource, _ int) bool {
		if !MatchesCategory(&r, category, slugs) {
			return false
		}
		if q.Featured != nil && r.Featured != *q.Featured {
			return false
		}
		if !matchesTags(&r, tags) {
			return false
		}
		return MatchesText(&r, terms)
	})

	if q.FeaturedFirst {
		out = FeaturedFirst(out)
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

// FeaturedFirst is a stable partition: featured resources first, then the
// rest, each group in its original order.
func FeaturedFirst(resources []model.Resource) []model.Resource {
	isFeatured := func(r model.Resource, _ int) bool { return r.Featured }
	featured := lo.Filter(resources, isFeatured)
	rest := lo.Reject(resources, isFeatured)
	return append(featured, rest...)
}

// CountByCategory counts resources per category slug across the whole list.
// The "all" key holds the total. Categories without resources are present
// with a zero count.
func CountByCategory(resources []model.Resource, categories []model.Category) map[string]int {
	byID := lo.CountValuesBy(resources, func(r model.Resource) string { return r.CategoryID })

	counts := make(map[string]int, len(categories)+1)
	counts[model.AllCategories] = len(resources)
	for _, c := range categories {
		counts[c.Slug] = byID[c.ID]
	}
	return counts
}

// SlugIndex maps each category slug to its id.
func SlugIndex(categories []model.Category) map[string]string {
	return lo.SliceToMap(categories, func(c model.Category) (string, string) {
		return c.Slug, c.ID
	})
}
