// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package actionitems

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/issues-ltt/internal/markdown"
	"github.com/pdiddy/issues-ltt/pkg/types"
)

var fixedNow = time.Date(2024, 3, 5, 14, 55, 45, 123, time.FixedZone("CET", 3600))

func newTestExtractor(t *testing.T, pattern string) *Extractor {
	t.Helper()
	e, err := NewExtractor(pattern)
	require.NoError(t, err)
	e.Now = func() time.Time { return fixedNow }
	return e
}

func TestExtract_FindsListAfterHeading(t *testing.T) {
	tokens := []markdown.Block{
		&markdown.Heading{Depth: 1, Text: "Retro", Raw: "# Retro"},
		&markdown.Other{Kind: "Paragraph", Raw: "notes"},
		&markdown.Heading{Depth: 2, Text: "Action Items", Raw: "## Action Items"},
		&markdown.List{Items: []markdown.ListItem{
			{Raw: "- [ ] one", Text: "[ ] one"},
			{Raw: "- two *em*", Text: "two *em*"},
		}},
	}
	source := types.Issue{Number: 42, Title: "Weekly sync"}

	set, err := newTestExtractor(t, "").Extract(tokens, source)
	require.NoError(t, err)
	require.NotNil(t, set)

	assert.Equal(t, "2024-03-05 13:55:45", set.ExtractionDate)
	assert.Equal(t, "Weekly sync", set.SourceTitle)
	assert.Equal(t, 42, set.SourceID)
	assert.Equal(t, []string{"- [ ] one", "- two *em*"}, set.Raws())
	assert.Equal(t, "two *em*", set.Items[1].Text)
}

func TestExtract_CaseInsensitiveHeading(t *testing.T) {
	for _, text := range []string{"action items", "ACTION ITEMS", "Our action Items for Q3"} {
		t.Run(text, func(t *testing.T) {
			tokens := []markdown.Block{
				&markdown.Heading{Depth: 3, Text: text},
				&markdown.List{Items: []markdown.ListItem{{Raw: "- a"}}},
			}
			set, err := newTestExtractor(t, "").Extract(tokens, types.Issue{Number: 1})
			require.NoError(t, err)
			require.NotNil(t, set)
		})
	}
}

func TestExtract_NoHeadingReturnsEmpty(t *testing.T) {
	tokens := []markdown.Block{
		&markdown.Heading{Depth: 2, Text: "Notes"},
		&markdown.List{Items: []markdown.ListItem{{Raw: "- a"}}},
	}
	set, err := newTestExtractor(t, "").Extract(tokens, types.Issue{Number: 1})
	require.NoError(t, err)
	assert.Nil(t, set)
}

func TestExtract_HeadingNotFollowedByList(t *testing.T) {
	tests := []struct {
		name   string
		tokens []markdown.Block
	}{
		{
			name: "paragraph after heading",
			tokens: []markdown.Block{
				&markdown.Heading{Depth: 2, Text: "Action Items"},
				&markdown.Other{Kind: "Paragraph", Raw: "none yet"},
				&markdown.List{Items: []markdown.ListItem{{Raw: "- a"}}},
			},
		},
		{
			name: "heading is last block",
			tokens: []markdown.Block{
				&markdown.Heading{Depth: 2, Text: "Action Items"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := newTestExtractor(t, "").Extract(tt.tokens, types.Issue{Number: 1})
			assert.Nil(t, set)
			assert.True(t, errors.Is(err, markdown.ErrStructure), "got %v", err)
		})
	}
}

func TestExtract_FirstHeadingWins(t *testing.T) {
	tokens := []markdown.Block{
		&markdown.Heading{Depth: 2, Text: "Action Items"},
		&markdown.List{Items: []markdown.ListItem{{Raw: "- current"}}},
		&markdown.Heading{Depth: 2, Text: "Previous action items"},
		&markdown.List{Items: []markdown.ListItem{{Raw: "- old"}}},
	}
	set, err := newTestExtractor(t, "").Extract(tokens, types.Issue{Number: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"- current"}, set.Raws())
}

func TestExtract_EmptyList(t *testing.T) {
	tokens := []markdown.Block{
		&markdown.Heading{Depth: 2, Text: "Action Items"},
		&markdown.List{},
	}
	set, err := newTestExtractor(t, "").Extract(tokens, types.Issue{Number: 1})
	require.NoError(t, err)
	require.NotNil(t, set)
	assert.Empty(t, set.Items)
}

func TestExtract_CustomPattern(t *testing.T) {
	tokens := []markdown.Block{
		&markdown.Heading{Depth: 2, Text: "Action Items"},
		&markdown.List{Items: []markdown.ListItem{{Raw: "- a"}}},
		&markdown.Heading{Depth: 2, Text: "Follow-ups"},
		&markdown.List{Items: []markdown.ListItem{{Raw: "- b"}}},
	}
	set, err := newTestExtractor(t, `^Follow-ups$`).Extract(tokens, types.Issue{Number: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"- b"}, set.Raws())
}

func TestNewExtractor_InvalidPattern(t *testing.T) {
	_, err := NewExtractor("(")
	assert.Error(t, err)
}

func TestExtract_FromLexer(t *testing.T) {
	body := "Intro\n\n## Action items\n- [ ] call vendor\n- [x] send notes\n\n## Other\n"
	tokens := markdown.NewGoldmarkLexer().Tokenize([]byte(body))

	set, err := newTestExtractor(t, "").Extract(tokens, types.Issue{Number: 7, Title: "Standup"})
	require.NoError(t, err)
	require.NotNil(t, set)
	assert.Equal(t, []string{"- [ ] call vendor", "- [x] send notes"}, set.Raws())
}
