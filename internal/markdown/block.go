// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package markdown turns raw markdown into a flat sequence of top-level
// blocks. Each block keeps the exact source text it was parsed from so that
// callers can splice documents without re-rendering them.
package markdown

import "errors"

// ErrStructure reports a document whose blocks do not have the shape the
// caller relies on, such as a heading that is not followed by a list.
var ErrStructure = errors.New("unexpected document structure")

// Block is one top-level block of a document: *Heading, *List, or *Other.
type Block interface {
	// Source returns the verbatim text of the block.
	Source() string
}

// Heading is an ATX or setext heading.
type Heading struct {
	// Depth is the heading level, 1 through 6.
	Depth int

	// Text is the inline source of the heading with the # markers and
	// surrounding whitespace removed.
	Text string

	// Raw is the full heading line without its line terminator.
	Raw string
}

// Source returns the heading line.
func (h *Heading) Source() string { return h.Raw }

// ListItem is a single entry of a List.
type ListItem struct {
	// Raw is the verbatim source of the item, marker and nested content
	// included, without trailing line breaks.
	Raw string

	// Text is the item content with the marker removed.
	Text string
}

// List is a bullet or ordered list.
type List struct {
	Ordered bool
	Items   []ListItem

	// Raw spans from the first item's marker to the end of the last item,
	// without trailing line breaks. Blank lines between items are kept.
	Raw string
}

// Source returns the list's verbatim text.
func (l *List) Source() string { return l.Raw }

// Other is any block the synchronizer does not inspect.
type Other struct {
	// Kind is the parser's node kind (e.g. "Paragraph", "FencedCodeBlock").
	Kind string
	Raw  string
}

// Source returns the block's verbatim text, if known.
func (o *Other) Source() string { return o.Raw }

// Lexer tokenizes a markdown document into top-level blocks.
type Lexer interface {
	Tokenize(src []byte) []Block
}
