// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package actionitems finds the "Action Items" list of a source issue and
// captures its items verbatim.
package actionitems

import (
	"fmt"
	"regexp"
	"time"

	"github.com/pdiddy/issues-ltt/internal/markdown"
	"github.com/pdiddy/issues-ltt/pkg/types"
)

// DefaultHeadingPattern matches the action items heading regardless of case.
const DefaultHeadingPattern = `(?i)action items`

// Extractor locates the action items list in a tokenized issue body.
type Extractor struct {
	heading *regexp.Regexp

	// Now returns the current time. Tests replace it for deterministic
	// extraction dates.
	Now func() time.Time
}

// NewExtractor compiles pattern into an Extractor. An empty pattern selects
// DefaultHeadingPattern.
func NewExtractor(pattern string) (*Extractor, error) {
	if pattern == "" {
		pattern = DefaultHeadingPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling heading pattern %q: %w", pattern, err)
	}
	return &Extractor{heading: re, Now: time.Now}, nil
}

// Extract scans tokens for the first heading matching the extractor's
// pattern and returns the items of the list that immediately follows it.
//
// A nil set with a nil error means the issue has no action items heading.
// A matching heading that is not directly followed by a list is reported
// as markdown.ErrStructure. When an issue holds several matching headings
// only the first one is used.
func (e *Extractor) Extract(tokens []markdown.Block, source types.Issue) (*types.ActionItemSet, error) {
	for i, tok := range tokens {
		h, ok := tok.(*markdown.Heading)
		if !ok || !e.heading.MatchString(h.Text) {
			continue
		}

		if i+1 >= len(tokens) {
			return nil, fmt.Errorf("issue #%d: heading %q is the last block: %w", source.Number, h.Text, markdown.ErrStructure)
		}
		list, ok := tokens[i+1].(*markdown.List)
		if !ok {
			return nil, fmt.Errorf("issue #%d: heading %q is not followed by a list: %w", source.Number, h.Text, markdown.ErrStructure)
		}

		items := make([]types.ActionItem, len(list.Items))
		for j, it := range list.Items {
			items[j] = types.ActionItem{Raw: it.Raw, Text: it.Text}
		}
		return &types.ActionItemSet{
			ExtractionDate: FormatDate(e.Now()),
			SourceTitle:    source.Title,
			SourceID:       source.Number,
			Items:          items,
		}, nil
	}
	return nil, nil
}

// FormatDate renders t in UTC with second resolution, the form embedded in
// aggregate section headings.
func FormatDate(t time.Time) string {
	return t.UTC().Format(types.ExtractionDateLayout)
}
