package index

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
)

// Field names in the index.
const (
	fieldTitle     = "title"
	fieldSummary   = "summary"
	fieldCategory  = "category"
	fieldSource    = "source_id"
	fieldCompanies = "companies"
	fieldTrust     = "trust"
	fieldPublished = "published"
	fieldViews     = "views"
	fieldShares    = "shares"
	fieldSaves     = "saves"
	fieldPayload   = "payload"
)

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()
	dm.Dynamic = false

	title := bleve.NewTextFieldMapping()
	title.Analyzer = standard.Name
	title.Store = true
	title.IncludeTermVectors = true

	summary := bleve.NewTextFieldMapping()
	summary.Analyzer = standard.Name
	summary.Store = false

	kw := func() *mapping.FieldMapping {
		f := bleve.NewTextFieldMapping()
		f.Analyzer = keyword.Name
		f.Store = false
		f.IncludeInAll = false
		return f
	}

	num := func() *mapping.FieldMapping {
		f := bleve.NewNumericFieldMapping()
		f.Store = true
		f.DocValues = true
		f.IncludeInAll = false
		return f
	}

	payload := bleve.NewTextFieldMapping()
	payload.Index = false
	payload.Store = true
	payload.IncludeInAll = false
	payload.DocValues = false

	dm.AddFieldMappingsAt(fieldTitle, title)
	dm.AddFieldMappingsAt(fieldSummary, summary)
	dm.AddFieldMappingsAt(fieldCategory, kw())
	dm.AddFieldMappingsAt(fieldSource, kw())
	dm.AddFieldMappingsAt(fieldCompanies, kw())
	dm.AddFieldMappingsAt(fieldTrust, num())
	dm.AddFieldMappingsAt(fieldPublished, num())
	dm.AddFieldMappingsAt(fieldViews, num())
	dm.AddFieldMappingsAt(fieldShares, num())
	dm.AddFieldMappingsAt(fieldSaves, num())
	dm.AddFieldMappingsAt(fieldPayload, payload)

	im.DefaultMapping = dm
	return im
}
