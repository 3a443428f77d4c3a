package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the mapping for search documents.
//
// Text fields use the English analyzer and feed the _all field that
// free-text queries run against. Filter fields use the keyword analyzer and
// stay out of _all so an ID or category never matches query text.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	textField := func(store bool) *mapping.FieldMapping {
		f := bleve.NewTextFieldMapping()
		f.Analyzer = en.AnalyzerName
		f.Store = store
		return f
	}
	keywordField := func(store, inAll bool) *mapping.FieldMapping {
		f := bleve.NewTextFieldMapping()
		f.Analyzer = keyword.Name
		f.Store = store
		f.IncludeInAll = inAll
		return f
	}

	docMapping.AddFieldMappingsAt("title", textField(true))
	docMapping.AddFieldMappingsAt("description", textField(false))
	// Code is searchable but too large to store.
	docMapping.AddFieldMappingsAt("code", textField(false))

	// Tags are exact-match for filtering but still count as query text.
	docMapping.AddFieldMappingsAt("tags", keywordField(true, true))

	docMapping.AddFieldMappingsAt("id", keywordField(true, false))
	docMapping.AddFieldMappingsAt("type", keywordField(true, false))
	docMapping.AddFieldMappingsAt("category_id", keywordField(true, false))
	docMapping.AddFieldMappingsAt("language", keywordField(true, false))

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
