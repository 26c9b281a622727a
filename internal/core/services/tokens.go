package services

import "unicode"

// wordToken is one token of a document: a run of alphanumeric
// characters, or a run of non-whitespace punctuation. Offsets count
// characters into the original content.
type wordToken struct {
	start  int
	end    int
	text   string
	isWord bool
}

// tokenizedDoc is the shared case-folded tokenization of one
// candidate. The bucket scorer and the fuzzy matcher both consume it,
// so each candidate is folded and tokenized exactly once per query.
type tokenizedDoc struct {
	// runes is the original content.
	runes []rune

	// lower is the per-rune case-folded copy. Folding rune by rune
	// keeps it the same length as runes, so character offsets stay
	// valid in both.
	lower []rune

	// lowerStr is string(lower), kept for substring checks.
	lowerStr string

	// tokens are all tokens in order, punctuation runs included.
	tokens []wordToken

	// words indexes the alphanumeric tokens within tokens.
	words []int
}

// tokenize folds and tokenizes content in one pass.
func tokenize(content string) tokenizedDoc {
	runes := []rune(content)
	lower := make([]rune, len(runes))
	for i, r := range runes {
		lower[i] = unicode.ToLower(r)
	}

	doc := tokenizedDoc{
		runes:    runes,
		lower:    lower,
		lowerStr: string(lower),
	}

	i := 0
	for i < len(lower) {
		r := lower[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case isWordRune(r):
			start := i
			for i < len(lower) && isWordRune(lower[i]) {
				i++
			}
			doc.words = append(doc.words, len(doc.tokens))
			doc.tokens = append(doc.tokens, wordToken{
				start:  start,
				end:    i,
				text:   string(lower[start:i]),
				isWord: true,
			})
		default:
			start := i
			for i < len(lower) && !unicode.IsSpace(lower[i]) && !isWordRune(lower[i]) {
				i++
			}
			doc.tokens = append(doc.tokens, wordToken{
				start: start,
				end:   i,
				text:  string(lower[start:i]),
			})
		}
	}
	return doc
}

// wordAt returns the i-th alphanumeric token.
func (d *tokenizedDoc) wordAt(i int) wordToken {
	return d.tokens[d.words[i]]
}

// wordCount returns the number of alphanumeric tokens.
func (d *tokenizedDoc) wordCount() int {
	return len(d.words)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// queryWords folds and splits a query into its word tokens,
// discarding punctuation-only tokens.
func queryWords(query string) []string {
	doc := tokenize(query)
	words := make([]string, 0, len(doc.words))
	for i := range doc.words {
		words = append(words, doc.wordAt(i).text)
	}
	return words
}
