// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ExtractionDateLayout is the timestamp format embedded in aggregate section
// headings. Existing aggregate issues depend on it; do not change it.
const ExtractionDateLayout = "2006-01-02 15:04:05"

// ActionItem is one entry of an "Action Items" list.
type ActionItem struct {
	// Raw is the verbatim markdown of the list item, marker included.
	Raw string `json:"raw" yaml:"raw"`

	// Text is the item's content with the list marker stripped. It is for
	// display only and never written back into a document.
	Text string `json:"text" yaml:"text"`
}

// ActionItemSet is the result of extracting the action items from one
// source issue. It is created per run and never mutated.
type ActionItemSet struct {
	// ExtractionDate is the UTC extraction time formatted with
	// ExtractionDateLayout. It is the only freshness signal.
	ExtractionDate string `json:"extraction_date" yaml:"extraction_date"`

	SourceTitle string `json:"source_title" yaml:"source_title"`

	// SourceID is the source issue number.
	SourceID int `json:"source_id" yaml:"source_id"`

	Items []ActionItem `json:"items" yaml:"items"`
}

// Raws returns the verbatim text of each item in order.
func (s *ActionItemSet) Raws() []string {
	raws := make([]string, len(s.Items))
	for i, it := range s.Items {
		raws[i] = it.Raw
	}
	return raws
}
