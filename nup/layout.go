// Package nup implements the N-up layout optimiser: given a page count and
// a target grid size it searches for the grid dimensions and page scale
// that waste the least paper, then synthesises the psutils.Document that
// the imposition engine turns into the actual output.
//
// The package does no I/O; Layout is a pure function so it can be tested
// without a scanner or a real PostScript stream, and cmd/psnup is the only
// caller that wires its result into impose.Impose.
package nup

import (
	"seehuhn.de/go/geom/vec"

	psutils "github.com/cclauss/psutils"
)

// defaultTolerance is the score ceiling above which no layout is
// considered acceptable, matching the reference psnup default.
const defaultTolerance = 100000.0

// Options describes an N-up request. Width, Height, InputWidth and
// InputHeight are all in points; InputWidth and InputHeight default to
// Width and Height respectively when zero.
type Options struct {
	N int

	Width, Height           float64
	InputWidth, InputHeight float64

	Margin, Border float64

	Column, LeftRight, TopBottom, Flip bool

	// UserScale overrides the computed scale when positive.
	UserScale float64

	// Tolerance overrides defaultTolerance when positive.
	Tolerance float64
}

// layout is the winning grid found by search.
type layout struct {
	hor, ver       int
	rotated        bool
	scale          float64
	hshift, vshift float64
}

// Layout runs the divisor-pair search described for the N-up optimiser and
// returns the synthesised page-rearrangement spec ready to feed into
// impose.Impose with Modulo: opts.N, PPS: 1.
func Layout(opts Options) (psutils.Document, error) {
	if opts.N < 1 {
		return psutils.Document{}, psutils.ArgErrorf("n-up count must be at least 1, got %d", opts.N)
	}

	iw, ih := opts.InputWidth, opts.InputHeight
	if iw <= 0 {
		iw = opts.Width
	}
	if ih <= 0 {
		ih = opts.Height
	}
	if iw <= 0 || ih <= 0 {
		return psutils.Document{}, psutils.ArgErrorf("no page size available: set the output width and height")
	}

	ppwid := opts.Width - 2*opts.Margin
	pphgt := opts.Height - 2*opts.Margin
	if ppwid <= 0 || pphgt <= 0 {
		return psutils.Document{}, psutils.ArgErrorf("paper margins are too large")
	}

	best, err := search(opts, ppwid, pphgt, iw, ih)
	if err != nil {
		return psutils.Document{}, err
	}

	return synthesize(opts, best, ppwid, pphgt), nil
}

// search enumerates every divisor pair of opts.N and returns the grid,
// orientation and scale with the lowest wasted-area score.
func search(opts Options, ppwid, pphgt, iw, ih float64) (layout, error) {
	tolerance := opts.Tolerance
	if tolerance <= 0 {
		tolerance = defaultTolerance
	}

	border := opts.Border
	bestScore := tolerance
	var best layout
	found := false

	for hor := 1; hor != 0; hor = nextDivisor(hor, opts.N) {
		ver := opts.N / hor

		// Normal orientation: hor cells across, ver cells up, pages
		// upright.
		s := min(pphgt/(ih*float64(ver)), ppwid/(iw*float64(hor)))
		dw := ppwid - s*iw*float64(hor)
		dh := pphgt - s*ih*float64(ver)
		if score := dw*dw + dh*dh; score < bestScore {
			bestScore = score
			found = true
			scale := min((pphgt-2*border*float64(ver))/(ih*float64(ver)), (ppwid-2*border*float64(hor))/(iw*float64(hor)))
			best = layout{
				hor: hor, ver: ver, rotated: false,
				scale:  scale,
				hshift: (ppwid/float64(hor) - iw*scale) / 2,
				vshift: (pphgt/float64(ver) - ih*scale) / 2,
			}
		}

		// Rotated: the grid is transposed, so a "hor" wide page sits
		// in a "ver" tall arrangement of cells and vice versa.
		s = min(pphgt/(iw*float64(hor)), ppwid/(ih*float64(ver)))
		dw = pphgt - s*iw*float64(hor)
		dh = ppwid - s*ih*float64(ver)
		if score := dw*dw + dh*dh; score < bestScore {
			bestScore = score
			found = true
			scale := min((pphgt-2*border*float64(hor))/(iw*float64(hor)), (ppwid-2*border*float64(ver))/(ih*float64(ver)))
			best = layout{
				hor: ver, ver: hor, rotated: true,
				scale:  scale,
				hshift: (ppwid/float64(ver) - ih*scale) / 2,
				vshift: (pphgt/float64(hor) - iw*scale) / 2,
			}
		}
	}

	if !found {
		return layout{}, psutils.LayoutErrorf("can't find acceptable layout for %d-up", opts.N)
	}
	return best, nil
}

// nextDivisor returns the smallest divisor of n greater than d (n itself
// included), or 0 once d has reached n.
func nextDivisor(d, n int) int {
	for d++; d <= n; d++ {
		if n%d == 0 {
			return d
		}
	}
	return 0
}

// synthesize builds the merge-group spec list for the winning layout,
// walking cells in the order (column, leftright, topbottom) select and
// flipping that order when the winning grid geometry ends up 90-degree
// rotated relative to its cells (matching the reference psnup's row/column
// swap for rotated grids). opts.Flip inverts which of the two scored
// candidates (untransposed vs. transposed grid) actually gets that
// per-page rotation applied.
func synthesize(opts Options, best layout, ppwid, pphgt float64) psutils.Document {
	rotate := best.rotated != opts.Flip

	column, leftright, topbottom := opts.Column, opts.LeftRight, opts.TopBottom
	if rotate {
		leftright, topbottom = topbottom, !leftright
		column = !column
	}

	scale := best.scale
	if opts.UserScale > 0 {
		scale = opts.UserScale
	}

	shift := vec.Vec2{X: best.hshift, Y: best.vshift}
	margin := vec.Vec2{X: opts.Margin, Y: opts.Margin}

	specs := make(psutils.SpecList, opts.N)
	for page := 0; page < opts.N; page++ {
		var across, up int
		if column {
			if leftright {
				across = page / best.ver
			} else {
				across = best.hor - 1 - page/best.ver
			}
			if topbottom {
				up = best.ver - 1 - page%best.ver
			} else {
				up = page % best.ver
			}
		} else {
			if leftright {
				across = page % best.hor
			} else {
				across = best.hor - 1 - page%best.hor
			}
			if topbottom {
				up = best.ver - 1 - page/best.hor
			} else {
				up = page / best.hor
			}
		}

		cellWidth := ppwid / float64(best.hor)
		bottomLeft := margin.Add(vec.Vec2{X: float64(across) * cellWidth, Y: float64(up) * pphgt / float64(best.ver)})

		ps := psutils.NewPageSpec()
		ps.Pageno = page
		ps.Scale = scale
		ps.Flags.Set(psutils.Scale)
		ps.YOff = bottomLeft.Y + shift.Y
		if rotate {
			ps.XOff = bottomLeft.X + cellWidth - shift.X
			ps.Rotate = 90
			ps.Flags.Set(psutils.Rotate)
		} else {
			ps.XOff = bottomLeft.X + shift.X
		}
		ps.Flags.Set(psutils.Offset)

		if page < opts.N-1 {
			ps.Flags.Set(psutils.AddNext)
		}
		specs[page] = ps
	}

	return psutils.Document{Modulo: opts.N, Specs: specs}
}
