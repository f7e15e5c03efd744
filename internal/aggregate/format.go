// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aggregate

import (
	"fmt"
	"strings"

	"github.com/pdiddy/issues-ltt/pkg/types"
)

// lineBreak returns the line terminator most lines of body end with. GitHub's
// web editor saves "\r\n"; the API and most tools write "\n".
func lineBreak(body string) string {
	crlf := strings.Count(body, "\r\n")
	if crlf > strings.Count(body, "\n")-crlf {
		return "\r\n"
	}
	return "\n"
}

// joinItems renders raw list items as a list block: one item per line, no
// trailing line break. Line breaks inside items are rewritten to nl.
func joinItems(raws []string, nl string) string {
	lines := make([]string, len(raws))
	for i, r := range raws {
		lines[i] = withLineBreak(trimLineBreaks(r), nl)
	}
	return trimLineBreaks(strings.Join(lines, nl))
}

func withLineBreak(s, nl string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if nl == "\n" {
		return s
	}
	return strings.ReplaceAll(s, "\n", nl)
}

func trimLineBreaks(s string) string {
	return strings.TrimRight(s, "\r\n")
}

// formatSection renders a new section to append to the aggregate body.
func formatSection(set *types.ActionItemSet, list, nl string) string {
	heading := SectionHeading(set.SourceTitle, set.SourceID, set.ExtractionDate)
	return nl + nl + heading + nl + list + nl
}

// SectionHeading renders the heading line of the section for one issue.
func SectionHeading(title string, id int, date string) string {
	return fmt.Sprintf("%s %s - #%d - %s", strings.Repeat("#", SectionDepth), title, id, date)
}
