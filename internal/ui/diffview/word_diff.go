package diffview

import (
	"strings"
	"unicode"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Bounds on intraline highlighting.
const (
	// WordDiffMaxLineLength skips word diff for longer lines.
	WordDiffMaxLineLength = 500
	// WordDiffMaxPairs limits word diff to the first pairs of a file.
	WordDiffMaxPairs = 100
)

type segmentKind int

const (
	segmentSame segmentKind = iota
	segmentAdded
	segmentDeleted
)

type segment struct {
	kind segmentKind
	text string
}

// tokenize splits a line into words, single punctuation or symbol runes
// and single whitespace runes.
// Example: "foo.bar(x)" -> ["foo", ".", "bar", "(", "x", ")"]
func tokenize(line string) []string {
	var tokens []string
	var word strings.Builder
	flush := func() {
		if word.Len() > 0 {
			tokens = append(tokens, word.String())
			word.Reset()
		}
	}
	for _, r := range line {
		if unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) {
			flush()
			tokens = append(tokens, string(r))
			continue
		}
		word.WriteRune(r)
	}
	flush()
	return tokens
}

// wordDiff diffs two line bodies token by token. Each token is mapped to a
// single rune so diffmatchpatch never splits inside a word.
func wordDiff(oldLine, newLine string) (oldSegs, newSegs []segment) {
	if oldLine == "" || newLine == "" {
		return []segment{{segmentDeleted, oldLine}}, []segment{{segmentAdded, newLine}}
	}

	dict := map[string]rune{}
	var vocab []string
	encode := func(tokens []string) string {
		var b strings.Builder
		for _, t := range tokens {
			r, ok := dict[t]
			if !ok {
				r = rune(0xE000 + len(vocab))
				dict[t] = r
				vocab = append(vocab, t)
			}
			b.WriteRune(r)
		}
		return b.String()
	}
	decode := func(s string) string {
		var b strings.Builder
		for _, r := range s {
			b.WriteString(vocab[r-0xE000])
		}
		return b.String()
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(encode(tokenize(oldLine)), encode(tokenize(newLine)), false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	for _, d := range diffs {
		text := decode(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			oldSegs = append(oldSegs, segment{segmentSame, text})
			newSegs = append(newSegs, segment{segmentSame, text})
		case diffmatchpatch.DiffDelete:
			oldSegs = append(oldSegs, segment{segmentDeleted, text})
		case diffmatchpatch.DiffInsert:
			newSegs = append(newSegs, segment{segmentAdded, text})
		}
	}
	return oldSegs, newSegs
}

func joinSegments(segs []segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.text)
	}
	return b.String()
}
