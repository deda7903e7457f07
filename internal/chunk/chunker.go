// Package chunk splits extracted page text into overlapping fragments.
package chunk

import (
	"strings"
	"unicode"

	"github.com/hayasui/kotae/internal/models"
)

// maxUnitChars caps the length of a single packing unit; units longer than
// this are re-split on word boundaries before packing.
const maxUnitChars = 400

// Chunker packs sentence-sized units into overlapping fragments.
type Chunker struct {
	maxChars     int
	overlapChars int
}

// NewChunker creates a chunker producing fragments of roughly maxChars
// characters, carrying up to overlapChars of trailing text into the next
// fragment so context is not lost at fragment boundaries.
func NewChunker(maxChars, overlapChars int) *Chunker {
	return &Chunker{
		maxChars:     maxChars,
		overlapChars: overlapChars,
	}
}

// Chunk splits pages into fragments. Fragments never span pages.
// SequenceIndex is assigned globally across all pages in input order.
func (c *Chunker) Chunk(pages []models.PageText) []models.Fragment {
	var fragments []models.Fragment
	for _, p := range pages {
		fragments = append(fragments, c.chunkPage(p)...)
	}
	for i := range fragments {
		fragments[i].SequenceIndex = i
	}
	return fragments
}

// chunkPage packs one page's units greedily: a fragment is closed when the
// next unit would push it past maxChars, and the closed fragment's trailing
// units seed the next one as overlap.
func (c *Chunker) chunkPage(page models.PageText) []models.Fragment {
	if strings.TrimSpace(page.Text) == "" {
		return nil
	}

	units := splitUnits(page.Text)
	var fragments []models.Fragment
	var current []string
	currentLen := 0

	flush := func() {
		fragments = append(fragments, models.Fragment{
			Text:       strings.TrimSpace(strings.Join(current, " ")),
			SourceFile: page.SourceFile,
			Page:       page.Page,
		})
	}

	for _, unit := range units {
		unitLen := len(unit) + 1
		if currentLen+unitLen > c.maxChars && len(current) > 0 {
			flush()

			var tail []string
			tailLen := 0
			for i := len(current) - 1; i >= 0; i-- {
				u := current[i]
				if tailLen+len(u)+1 > c.overlapChars {
					break
				}
				tail = append([]string{u}, tail...)
				tailLen += len(u) + 1
			}
			current = tail
			currentLen = tailLen
		}
		current = append(current, unit)
		currentLen += unitLen
	}
	if len(current) > 0 {
		flush()
	}
	return fragments
}

// splitUnits splits text into sentence-sized units: after terminal
// punctuation followed by whitespace, and on newlines. Overlong units are
// re-split on word boundaries.
func splitUnits(text string) []string {
	var parts []string
	appendPart := func(cur []rune) {
		p := strings.TrimSpace(string(cur))
		if p == "" {
			return
		}
		if len(p) <= maxUnitChars {
			parts = append(parts, p)
			return
		}
		parts = append(parts, splitLongUnit(p)...)
	}

	runes := []rune(text)
	var cur []rune
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case r == '\n':
			appendPart(cur)
			cur = cur[:0]
			for i < len(runes) && runes[i] == '\n' {
				i++
			}
		case unicode.IsSpace(r) && len(cur) > 0 && isTerminal(cur[len(cur)-1]):
			appendPart(cur)
			cur = cur[:0]
			for i < len(runes) && unicode.IsSpace(runes[i]) {
				i++
			}
		default:
			cur = append(cur, r)
			i++
		}
	}
	appendPart(cur)
	return parts
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// splitLongUnit breaks a unit that has no usable sentence boundaries into
// word-boundary pieces of at most maxUnitChars.
func splitLongUnit(unit string) []string {
	words := strings.Fields(unit)
	var parts []string
	var current []string
	currentLen := 0
	for _, w := range words {
		if currentLen+len(w)+1 > maxUnitChars && len(current) > 0 {
			parts = append(parts, strings.Join(current, " "))
			current = []string{w}
			currentLen = len(w)
			continue
		}
		current = append(current, w)
		if currentLen == 0 {
			currentLen = len(w)
		} else {
			currentLen += len(w) + 1
		}
	}
	if len(current) > 0 {
		parts = append(parts, strings.Join(current, " "))
	}
	return parts
}
