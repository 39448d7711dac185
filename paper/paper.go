// Package paper is a small registry of named paper sizes in PostScript
// points, in the style of seehuhn.de/go/pdf/document's predefined
// pdf.Rectangle values (A4, Letter, ...): plain package-level data rather
// than a config file or embedded table.
package paper

import (
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const pt = 1.0
const mm = 2.8346456692913385211

// Size is a named page size in points.
type Size struct {
	Width, Height float64
}

var sizes = map[string]Size{
	"a0":     {841 * mm, 1189 * mm},
	"a1":     {594 * mm, 841 * mm},
	"a2":     {420 * mm, 594 * mm},
	"a3":     {297 * mm, 420 * mm},
	"a4":     {210 * mm, 297 * mm},
	"a5":     {148 * mm, 210 * mm},
	"a6":     {105 * mm, 148 * mm},
	"a7":     {74 * mm, 105 * mm},
	"a8":     {52 * mm, 74 * mm},
	"b5":     {176 * mm, 250 * mm},
	"letter": {612 * pt, 792 * pt},
	"legal":  {612 * pt, 1008 * pt},
	"tabloid": {792 * pt, 1224 * pt},
	"statement": {396 * pt, 612 * pt},
	"executive": {522 * pt, 756 * pt},
	"folio":  {612 * pt, 936 * pt},
	"quarto": {610 * pt, 780 * pt},
	"10x14":  {720 * pt, 1008 * pt},
}

// Lookup returns the width and height, in points, of the named paper
// size. The lookup is case-insensitive; ok is false for an unknown name.
func Lookup(name string) (width, height float64, ok bool) {
	s, ok := sizes[strings.ToLower(name)]
	if !ok {
		return 0, 0, false
	}
	return s.Width, s.Height, true
}

// Names returns the recognised paper size names in sorted order, for use
// in usage messages.
func Names() []string {
	names := maps.Keys(sizes)
	slices.Sort(names)
	return names
}
