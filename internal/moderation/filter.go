// Package moderation flags and masks profanity in chat messages.
//
// Matching runs an Aho-Corasick automaton over a normalised copy of the text:
// case is folded, common leet substitutions are undone and punctuation or
// spacing inside a word is skipped, so "B.4.D" still matches "bad". A match
// only counts when it starts and ends on a word boundary of the original text.
package moderation

import (
	"fmt"
	"slices"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
	"github.com/samber/lo"
)

// DefaultReplacement masks matched characters.
const DefaultReplacement = '*'

// Filter implements chat.ContentPolicy. It is immutable after construction
// and safe for concurrent use.
type Filter struct {
	matcher     *goahocorasick.Machine
	replacement rune
}

type textMapping struct {
	normalized []rune
	origIdx    []int
}

type span struct {
	start, end int // original rune offsets, end exclusive
}

// NewFilter builds a filter from the built-in word list plus extraWords.
func NewFilter(extraWords []string, replacement rune) (*Filter, error) {
	return NewFilterWithWords(append(DefaultWords(), extraWords...), replacement)
}

// NewFilterWithWords builds a filter matching exactly words.
func NewFilterWithWords(words []string, replacement rune) (*Filter, error) {
	if replacement == 0 {
		replacement = DefaultReplacement
	}

	patterns := lo.FilterMap(words, func(word string, _ int) (string, bool) {
		normalized := string(normalizeRunes([]rune(word)))
		return normalized, normalized != ""
	})
	patterns = lo.Uniq(patterns)
	slices.Sort(patterns)

	f := &Filter{replacement: replacement}
	if len(patterns) == 0 {
		return f, nil
	}

	m := new(goahocorasick.Machine)
	keywords := lo.Map(patterns, func(p string, _ int) []rune { return []rune(p) })
	if err := m.Build(keywords); err != nil {
		return nil, fmt.Errorf("building profanity matcher: %w", err)
	}
	f.matcher = m
	return f, nil
}

// IsProfane reports whether text contains a listed word.
func (f *Filter) IsProfane(text string) bool {
	return len(f.find(text)) > 0
}

// Clean masks every listed word in text, keeping its length and the
// surrounding spacing.
func (f *Filter) Clean(text string) string {
	spans := f.find(text)
	if len(spans) == 0 {
		return text
	}

	runes := []rune(text)
	for _, s := range spans {
		for i := s.start; i < s.end; i++ {
			runes[i] = f.replacement
		}
	}
	return string(runes)
}

func (f *Filter) find(text string) []span {
	if f.matcher == nil || text == "" {
		return nil
	}

	mapping := normalize(text)
	if len(mapping.normalized) == 0 {
		return nil
	}

	orig := []rune(text)
	terms := f.matcher.MultiPatternSearch(mapping.normalized, false)

	var spans []span
	for _, term := range terms {
		normStart := term.Pos
		normEnd := normStart + len(term.Word)
		if normStart < 0 || normEnd > len(mapping.origIdx) {
			continue
		}

		s := span{start: mapping.origIdx[normStart], end: mapping.origIdx[normEnd-1] + 1}
		if !isBoundary(orig, s.start-1) || !isBoundary(orig, s.end) {
			continue
		}
		spans = append(spans, s)
	}
	return spans
}

// isBoundary reports whether position i of orig separates words. Positions
// outside the text count as boundaries.
func isBoundary(orig []rune, i int) bool {
	if i < 0 || i >= len(orig) {
		return true
	}
	r := orig[i]
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// normalize builds the searchable text and remembers where each kept rune
// came from.
func normalize(input string) textMapping {
	orig := []rune(input)
	mapping := textMapping{
		normalized: make([]rune, 0, len(orig)),
		origIdx:    make([]int, 0, len(orig)),
	}
	for i, r := range orig {
		clean := simplifyRune(r)
		if isNoise(clean) {
			continue
		}
		mapping.normalized = append(mapping.normalized, unicode.ToLower(clean))
		mapping.origIdx = append(mapping.origIdx, i)
	}
	return mapping
}

func normalizeRunes(input []rune) []rune {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		clean := simplifyRune(r)
		if isNoise(clean) {
			continue
		}
		out = append(out, unicode.ToLower(clean))
	}
	return out
}

// simplifyRune undoes common leet speak.
func simplifyRune(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}

func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}
