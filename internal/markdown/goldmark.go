// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package markdown

import (
	"bytes"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// GoldmarkLexer implements Lexer with the goldmark CommonMark parser and
// the GitHub Flavored Markdown extensions, which matches how GitHub renders
// issue bodies. It is stateless and safe for concurrent use.
type GoldmarkLexer struct {
	parser parser.Parser
}

// NewGoldmarkLexer returns a lexer configured for GitHub issue bodies.
func NewGoldmarkLexer() *GoldmarkLexer {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	return &GoldmarkLexer{parser: md.Parser()}
}

// Tokenize parses src and returns its top-level blocks in document order.
// Positions are resolved against src, so every Raw field is a substring of
// the input.
func (l *GoldmarkLexer) Tokenize(src []byte) []Block {
	doc := l.parser.Parse(text.NewReader(src))

	var blocks []Block
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			blocks = append(blocks, headingBlock(node, src))
		case *ast.List:
			blocks = append(blocks, listBlock(node, src))
		default:
			o := &Other{Kind: n.Kind().String()}
			if start, stop, ok := span(n, src); ok {
				o.Raw = string(src[lineStart(src, start):lineEnd(src, stop)])
			}
			blocks = append(blocks, o)
		}
	}
	return blocks
}

func headingBlock(h *ast.Heading, src []byte) *Heading {
	out := &Heading{Depth: h.Level}
	lines := h.Lines()
	if lines.Len() == 0 {
		return out
	}

	parts := make([]string, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		parts = append(parts, strings.TrimSpace(string(seg.Value(src))))
	}
	out.Text = strings.Join(parts, "\n")

	first, last := lines.At(0), lines.At(lines.Len()-1)
	out.Raw = string(src[lineStart(src, first.Start):lineEnd(src, last.Stop)])
	return out
}

type itemBounds struct {
	start, content, end int
	known               bool
}

func listBlock(l *ast.List, src []byte) *List {
	var bounds []itemBounds
	for c := l.FirstChild(); c != nil; c = c.NextSibling() {
		var b itemBounds
		if s, e, ok := span(c, src); ok {
			b = itemBounds{start: lineStart(src, s), content: s, end: lineEnd(src, e), known: true}
		}
		bounds = append(bounds, b)
	}

	// Items without block content ("- " on its own) have no segments; they
	// occupy the line after the previous item or the line before the next.
	for i := range bounds {
		if bounds[i].known {
			continue
		}
		switch {
		case i > 0 && bounds[i-1].known:
			s := nextLine(src, bounds[i-1].end)
			bounds[i] = itemBounds{start: s, content: s, end: eol(src, s), known: true}
		case i+1 < len(bounds) && bounds[i+1].known && bounds[i+1].start > 0:
			s := lineStart(src, bounds[i+1].start-1)
			bounds[i] = itemBounds{start: s, content: s, end: eol(src, s), known: true}
		}
	}

	// An item ends where the next one starts, minus trailing whitespace.
	// This keeps closing fences and other unsegmented lines inside the item.
	for i := 0; i+1 < len(bounds); i++ {
		if !bounds[i].known || !bounds[i+1].known || bounds[i+1].start < bounds[i].start {
			continue
		}
		bounds[i].end = bounds[i+1].start
	}
	for i := range bounds {
		if !bounds[i].known || bounds[i].end < bounds[i].start {
			continue
		}
		chunk := bytes.TrimRightFunc(src[bounds[i].start:bounds[i].end], unicode.IsSpace)
		bounds[i].end = bounds[i].start + len(chunk)
		if bounds[i].content > bounds[i].end {
			bounds[i].content = bounds[i].end
		}
	}

	out := &List{Ordered: l.IsOrdered()}
	first, last := -1, -1
	for i, b := range bounds {
		if !b.known {
			out.Items = append(out.Items, ListItem{})
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
		out.Items = append(out.Items, ListItem{
			Raw:  string(src[b.start:b.end]),
			Text: strings.TrimSpace(string(src[b.content:b.end])),
		})
	}
	if first >= 0 {
		out.Raw = string(src[bounds[first].start:bounds[last].end])
	}
	return out
}

// span returns the smallest source range covering the segments of n and
// its block descendants.
func span(n ast.Node, src []byte) (start, stop int, ok bool) {
	if n.Type() != ast.TypeBlock && n.Type() != ast.TypeDocument {
		return 0, 0, false
	}

	merge := func(s, e int) {
		if !ok {
			start, stop, ok = s, e, true
			return
		}
		if s < start {
			start = s
		}
		if e > stop {
			stop = e
		}
	}

	if n.Type() == ast.TypeBlock {
		if lines := n.Lines(); lines != nil && lines.Len() > 0 {
			merge(lines.At(0).Start, lines.At(lines.Len()-1).Stop)
		}
	}

	if fc, isFenced := n.(*ast.FencedCodeBlock); isFenced {
		switch {
		case fc.Info != nil:
			merge(lineStart(src, fc.Info.Segment.Start), fc.Info.Segment.Stop)
		case ok:
			if ls := lineStart(src, start); ls > 0 {
				merge(lineStart(src, ls-1), stop)
			}
		}
		if ok {
			stop = closingFence(src, stop)
		}
	}

	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if s, e, cok := span(c, src); cok {
			merge(s, e)
		}
	}
	return start, stop, ok
}

// lineStart returns the offset of the first byte of the line containing pos.
func lineStart(src []byte, pos int) int {
	if pos > len(src) {
		pos = len(src)
	}
	for pos > 0 && src[pos-1] != '\n' {
		pos--
	}
	return pos
}

// lineEnd returns the exclusive end of the line that a segment ending at
// pos belongs to, excluding the line terminator. Segments may or may not
// include their trailing newline.
func lineEnd(src []byte, pos int) int {
	if pos > len(src) {
		pos = len(src)
	}
	if pos > 0 && src[pos-1] == '\n' {
		pos--
	} else {
		for pos < len(src) && src[pos] != '\n' {
			pos++
		}
	}
	if pos > 0 && src[pos-1] == '\r' {
		pos--
	}
	return pos
}

// eol returns the end of the line starting at or containing pos, excluding
// the line terminator.
func eol(src []byte, pos int) int {
	for pos < len(src) && src[pos] != '\n' {
		pos++
	}
	if pos > 0 && src[pos-1] == '\r' {
		pos--
	}
	return pos
}

// nextLine returns the offset of the line following the one that ends at end.
func nextLine(src []byte, end int) int {
	i := bytes.IndexByte(src[end:], '\n')
	if i < 0 {
		return len(src)
	}
	return end + i + 1
}

// closingFence extends stop over the closing ``` or ~~~ line of a fenced
// code block when one follows.
func closingFence(src []byte, stop int) int {
	end := lineEnd(src, stop)
	next := nextLine(src, end)
	if next >= len(src) {
		return stop
	}
	line := bytes.TrimSpace(src[next:eol(src, next)])
	if bytes.HasPrefix(line, []byte("```")) || bytes.HasPrefix(line, []byte("~~~")) {
		return eol(src, next)
	}
	return stop
}
