package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize_WordsAndPunctuation(t *testing.T) {
	doc := tokenize("Hello, World-42")

	require.Len(t, doc.tokens, 5)
	assert.Equal(t, "hello", doc.tokens[0].text)
	assert.True(t, doc.tokens[0].isWord)
	assert.Equal(t, 0, doc.tokens[0].start)
	assert.Equal(t, 5, doc.tokens[0].end)

	assert.Equal(t, ",", doc.tokens[1].text)
	assert.False(t, doc.tokens[1].isWord)

	assert.Equal(t, "world", doc.tokens[2].text)
	assert.Equal(t, 7, doc.tokens[2].start)
	assert.Equal(t, 12, doc.tokens[2].end)

	assert.Equal(t, "-", doc.tokens[3].text)
	assert.Equal(t, "42", doc.tokens[4].text)
	assert.True(t, doc.tokens[4].isWord)

	require.Equal(t, 3, doc.wordCount())
	assert.Equal(t, "hello", doc.wordAt(0).text)
	assert.Equal(t, "world", doc.wordAt(1).text)
	assert.Equal(t, "42", doc.wordAt(2).text)
}

func TestTokenize_OffsetsAreCharacters(t *testing.T) {
	doc := tokenize("Héllo wörld")

	require.Equal(t, 2, doc.wordCount())
	assert.Equal(t, "héllo", doc.wordAt(0).text)
	assert.Equal(t, 0, doc.wordAt(0).start)
	assert.Equal(t, 5, doc.wordAt(0).end)
	assert.Equal(t, "wörld", doc.wordAt(1).text)
	assert.Equal(t, 6, doc.wordAt(1).start)
	assert.Equal(t, 11, doc.wordAt(1).end)

	// The folded copy stays rune-aligned with the original.
	assert.Len(t, doc.lower, len(doc.runes))
}

func TestTokenize_CJKRuns(t *testing.T) {
	doc := tokenize("日本語 test")

	require.Equal(t, 2, doc.wordCount())
	assert.Equal(t, "日本語", doc.wordAt(0).text)
	assert.Equal(t, 3, doc.wordAt(0).end)
	assert.Equal(t, "test", doc.wordAt(1).text)
	assert.Equal(t, 4, doc.wordAt(1).start)
}

func TestTokenize_Empty(t *testing.T) {
	doc := tokenize("")
	assert.Zero(t, doc.wordCount())
	assert.Empty(t, doc.tokens)
}

func TestQueryWords(t *testing.T) {
	assert.Equal(t, []string{"foo", "bar"}, queryWords("  Foo!! bar  "))
	assert.Empty(t, queryWords("://"))
	assert.Empty(t, queryWords(""))
	assert.Equal(t, []string{"a", "b2"}, queryWords("a-b2"))
}
