// Package textclean normalizes the text of extracted spans.
//
// Glyph merging leaves behind odd whitespace (tabs, non-breaking spaces,
// doubled spaces, zero-width characters) and compatibility characters such
// as ligatures. NormalizeWhitespace folds these into plain text, and
// Dehyphenate rejoins words split across a line wrap.
package textclean

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Hyphen characters that can end a wrapped line.
const (
	Hyphen     = '-'
	SoftHyphen = '\u00AD'
	UniHyphen  = '\u2010'
)

// NormalizeWhitespace collapses redundant whitespace and applies NFKC
// compatibility normalization. It is idempotent.
func NormalizeWhitespace(s string) string {
	if s == "" {
		return s
	}
	s = collapse(s)
	s = norm.NFKC.String(s)
	return collapse(s)
}

// collapse folds line endings, maps space separators to ' ', drops control
// and zero-width characters, squeezes runs of spaces and strips spaces in
// front of a line break.
func collapse(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	pendingSpace := false
	prevCR := false
	for _, r := range s {
		if prevCR {
			prevCR = false
			if r == '\n' {
				continue
			}
		}
		switch {
		case r == '\r':
			prevCR = true
			pendingSpace = false
			b.WriteByte('\n')
		case r == '\n':
			pendingSpace = false
			b.WriteByte('\n')
		case r == '\t' || (unicode.IsSpace(r) && r != '\n') || unicode.Is(unicode.Zs, r):
			pendingSpace = true
		case isZeroWidth(r) || unicode.IsControl(r):
			// dropped
		default:
			if pendingSpace {
				b.WriteByte(' ')
				pendingSpace = false
			}
			b.WriteRune(r)
		}
	}
	if pendingSpace {
		b.WriteByte(' ')
	}
	return b.String()
}

func isZeroWidth(r rune) bool {
	switch r {
	case '\u200B', '\u200C', '\u200D', '\u2060', '\uFEFF':
		return true
	}
	return false
}

// IsHyphen reports whether r can mark a word split at a line wrap.
func IsHyphen(r rune) bool {
	return r == Hyphen || r == SoftHyphen || r == UniHyphen
}

// Dehyphenate removes line-wrap hyphens. With keepHyphens the text is
// returned verbatim. Otherwise a hyphen that follows a letter and is followed
// by optional spaces and a single line break is a wrap hyphen: it is dropped
// together with the break and the next line's indentation when a letter
// follows, or together with the break when the text ends there. A blank line
// after the hyphen ends a paragraph and leaves the hyphen alone. Soft hyphens
// are never printed, so they are dropped whenever they end a line.
func Dehyphenate(s string, keepHyphens bool) string {
	if keepHyphens || s == "" {
		return s
	}

	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if !IsHyphen(r) || i == 0 || !unicode.IsLetter(runes[i-1]) {
			b.WriteRune(r)
			continue
		}

		j := skipSpaces(runes, i+1)
		if j < len(runes) && runes[j] == '\n' {
			k := skipSpaces(runes, j+1)
			switch {
			case k >= len(runes):
				i = len(runes)
				continue
			case unicode.IsLetter(runes[k]):
				i = k - 1
				continue
			}
		} else if j < len(runes) {
			// Mid-line hyphen, part of the word.
			b.WriteRune(r)
			continue
		}

		if r != SoftHyphen {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func skipSpaces(runes []rune, i int) int {
	for i < len(runes) && (runes[i] == ' ' || runes[i] == '\t') {
		i++
	}
	return i
}

// Clean is the span-level transform: whitespace normalization with hyphens
// kept verbatim. Rejoining split words needs the following span and happens
// in JoinLines.
func Clean(s string) string {
	return Dehyphenate(NormalizeWhitespace(s), true)
}

// JoinLines joins line texts with line breaks and then rejoins words split
// across the breaks unless keepHyphens is set.
func JoinLines(lines []string, keepHyphens bool) string {
	return Dehyphenate(strings.Join(lines, "\n"), keepHyphens)
}
