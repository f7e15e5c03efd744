// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package aggregate keeps one section per source issue inside the aggregate
// tracking issue. Sections are edited by replacing their exact source text,
// so everything else in the aggregate body is left byte-for-byte intact.
//
// A section is a level-4 heading of the form
//
//	#### <title> - #<number> - <YYYY-MM-DD HH:MM:SS>
//
// followed immediately by the list of action items. Existing aggregate
// issues use this format; it must not change.
package aggregate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/issues-ltt/internal/markdown"
	"github.com/pdiddy/issues-ltt/pkg/types"
)

// SectionDepth is the heading level of aggregate sections.
const SectionDepth = 4

// ErrNoActionItems is returned when there is nothing to sync because the
// source issue has no action items heading.
var ErrNoActionItems = errors.New("source issue has no action items")

// Outcome describes what Sync did to the aggregate body.
type Outcome string

const (
	// OutcomeUnchanged means the section already carries the extraction
	// date; the body must not be persisted.
	OutcomeUnchanged Outcome = "unchanged"
	// OutcomeUpdated means an existing section was rewritten in place.
	OutcomeUpdated Outcome = "updated"
	// OutcomeAppended means a new section was added at the end.
	OutcomeAppended Outcome = "appended"
)

// Result is the aggregate body after a sync.
type Result struct {
	Outcome Outcome
	Body    string
}

// Changed reports whether Body differs from the input and needs persisting.
func (r Result) Changed() bool {
	return r.Outcome != OutcomeUnchanged
}

// Sync merges set into the aggregate body. tokens must be the tokenization
// of body.
//
// The first section whose heading carries "#<set.SourceID> - " is used.
// When its date equals set.ExtractionDate the body is returned unchanged,
// even if the items differ: the date is the only freshness signal.
// Otherwise the heading date and the list are replaced in place. When no
// section exists a new one is appended. New text uses the line terminator
// that dominates body.
func Sync(set *types.ActionItemSet, tokens []markdown.Block, body string) (Result, error) {
	if set == nil {
		return Result{}, ErrNoActionItems
	}

	key := sectionPattern(set.SourceID)
	nl := lineBreak(body)
	newList := joinItems(set.Raws(), nl)

	sec, found, err := findSection(tokens, key)
	if err != nil {
		return Result{}, fmt.Errorf("issue #%d: %w", set.SourceID, err)
	}
	if !found {
		return Result{Outcome: OutcomeAppended, Body: body + formatSection(set, newList, nl)}, nil
	}

	if sec.date == set.ExtractionDate {
		return Result{Outcome: OutcomeUnchanged, Body: body}, nil
	}

	updated, err := splice(body, sec, set.ExtractionDate, newList)
	if err != nil {
		return Result{}, fmt.Errorf("issue #%d: %w", set.SourceID, err)
	}
	return Result{Outcome: OutcomeUpdated, Body: updated}, nil
}

// sectionPattern matches the heading text of the section for issue id.
// The literal " - " after the number keeps #12 from matching #123.
func sectionPattern(id int) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`^.*#%d - (?P<date>.*)$`, id))
}

type section struct {
	heading *markdown.Heading
	list    *markdown.List

	// date and its byte range within heading.Text.
	date               string
	dateStart, dateEnd int
}

// findSection returns the first level-4 heading matching key and the list
// that follows it.
func findSection(tokens []markdown.Block, key *regexp.Regexp) (section, bool, error) {
	dateGroup := key.SubexpIndex("date")
	for i, tok := range tokens {
		h, ok := tok.(*markdown.Heading)
		if !ok || h.Depth != SectionDepth {
			continue
		}
		loc := key.FindStringSubmatchIndex(h.Text)
		if loc == nil {
			continue
		}
		if dateGroup < 0 || loc[2*dateGroup] < 0 {
			return section{}, false, fmt.Errorf("heading %q has no date: %w", h.Text, markdown.ErrStructure)
		}

		if i+1 >= len(tokens) {
			return section{}, false, fmt.Errorf("heading %q is the last block: %w", h.Text, markdown.ErrStructure)
		}
		list, ok := tokens[i+1].(*markdown.List)
		if !ok {
			return section{}, false, fmt.Errorf("heading %q is not followed by a list: %w", h.Text, markdown.ErrStructure)
		}

		ds, de := loc[2*dateGroup], loc[2*dateGroup+1]
		return section{
			heading:   h,
			list:      list,
			date:      h.Text[ds:de],
			dateStart: ds,
			dateEnd:   de,
		}, true, nil
	}
	return section{}, false, nil
}

// splice replaces the section's heading date and list in body. The list is
// searched for after the heading so that an identical list in an earlier
// section is never touched.
func splice(body string, sec section, date, newList string) (string, error) {
	oldHeading := sec.heading.Raw
	off := strings.Index(oldHeading, sec.heading.Text)
	if off < 0 {
		return "", fmt.Errorf("heading text not found in heading line %q: %w", oldHeading, markdown.ErrStructure)
	}
	newHeading := oldHeading[:off+sec.dateStart] + date + oldHeading[off+sec.dateEnd:]

	oldList := trimLineBreaks(sec.list.Raw)
	if oldList == "" {
		return "", fmt.Errorf("section list under %q is empty: %w", sec.heading.Text, markdown.ErrStructure)
	}

	hpos := strings.Index(body, oldHeading)
	if hpos < 0 {
		return "", fmt.Errorf("heading %q not found in body: %w", oldHeading, markdown.ErrStructure)
	}
	rest := body[hpos+len(oldHeading):]
	lpos := strings.Index(rest, oldList)
	if lpos < 0 {
		return "", fmt.Errorf("list under %q not found in body: %w", sec.heading.Text, markdown.ErrStructure)
	}

	var b strings.Builder
	b.Grow(len(body) - len(oldHeading) - len(oldList) + len(newHeading) + len(newList))
	b.WriteString(body[:hpos])
	b.WriteString(newHeading)
	b.WriteString(rest[:lpos])
	b.WriteString(newList)
	b.WriteString(rest[lpos+len(oldList):])
	return b.String(), nil
}
