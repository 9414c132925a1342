// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the preprint-classifier pipeline.
// The fetch, merge, build, and train stages exchange these values through
// tab-delimited files; see the stage packages under internal/.
package types

// Column names of the preprints file, in file order. The merged file
// appends ColumnLabel.
const (
	ColumnTitle           = "Title"
	ColumnAbstract        = "Abstract"
	ColumnAuthors         = "Authors"
	ColumnPublicationDate = "Publication Date"
	ColumnDOI             = "DOI"
	ColumnLabel           = "Label"
)

// PreprintColumns is the fixed header of the preprints file.
var PreprintColumns = []string{
	ColumnTitle,
	ColumnAbstract,
	ColumnAuthors,
	ColumnPublicationDate,
	ColumnDOI,
}

// LabeledColumns is the header of the merged (labeled) file.
var LabeledColumns = append(append([]string{}, PreprintColumns...), ColumnLabel)

// Record holds the metadata of one preprint. Label is empty until the merge
// stage attaches the hand-assigned category.
type Record struct {
	// DOI is the unique external identifier of the preprint.
	DOI string

	// Title is the preprint title.
	Title string

	// Abstract is the whitespace-normalized abstract text.
	Abstract string

	// Authors is the author list as returned by the API ("Smith, J.; Doe, A.").
	Authors string

	// PublicationDate is the preprint posting date as text (YYYY-MM-DD).
	PublicationDate string

	// Label is the externally assigned category.
	Label string
}

// PreprintRow returns the record's fields in PreprintColumns order.
func (r Record) PreprintRow() []string {
	return []string{r.Title, r.Abstract, r.Authors, r.PublicationDate, r.DOI}
}
