package engine

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// document is one file's content with the lookups needed to place matches.
type document struct {
	content  string
	lines    []string
	newlines []int

	// rune view, built on first use by the backtracking matcher
	runeBuf []rune
	offsets []int
}

func newDocument(content string) *document {
	d := &document{
		content: content,
		lines:   strings.Split(content, "\n"),
	}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			d.newlines = append(d.newlines, i)
		}
	}
	return d
}

// lineAt returns the 1-based line containing byte offset pos.
func (d *document) lineAt(pos int) int {
	return sort.SearchInts(d.newlines, pos) + 1
}

// contextFor returns the trimmed line, or fallback when line is out of range.
func (d *document) contextFor(line int, fallback string) string {
	if line < 1 || line > len(d.lines) {
		return fallback
	}
	return strings.TrimSpace(d.lines[line-1])
}

func (d *document) runes() []rune {
	if d.runeBuf != nil {
		return d.runeBuf
	}
	n := utf8.RuneCountInString(d.content)
	d.runeBuf = make([]rune, 0, n)
	d.offsets = make([]int, 0, n+1)
	for i, r := range d.content {
		d.runeBuf = append(d.runeBuf, r)
		d.offsets = append(d.offsets, i)
	}
	d.offsets = append(d.offsets, len(d.content))
	return d.runeBuf
}

// byteOffset maps a rune index to its byte offset in content.
func (d *document) byteOffset(runeIndex int) int {
	d.runes()
	if runeIndex < 0 {
		return 0
	}
	if runeIndex >= len(d.offsets) {
		return len(d.content)
	}
	return d.offsets[runeIndex]
}
