// Command psnup arranges several logical pages of a PostScript document
// onto each output sheet, in the manner of the reference psutils psnup.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"golang.org/x/term"

	psutils "github.com/cclauss/psutils"
	"github.com/cclauss/psutils/impose"
	"github.com/cclauss/psutils/internal/getopt"
	"github.com/cclauss/psutils/internal/seekable"
	"github.com/cclauss/psutils/nup"
	"github.com/cclauss/psutils/paper"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	valued := getopt.Valued{
		'd': true, 'w': true, 'h': true, 'W': true, 'H': true,
		'p': true, 'P': true, 'm': true, 'b': true, 't': true,
		's': true, 'n': true,
	}
	args := getopt.Split(argv, valued, map[byte]string{'d': "1pt"})

	fs := flag.NewFlagSet("psnup", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: psnup [-q] [-d[LW]] [-l] [-r] [-f] [-c] [-wW] [-hH] [-WW] [-HH]"+
			" [-pNAME|-PNAME] [-mM] [-bB] [-tT] [-sS] -nN|-N [infile [outfile]]\n")
		fs.PrintDefaults()
	}

	quiet := fs.Bool("q", false, "suppress per-page progress")
	drawStr := fs.String("d", "", "draw cell border lines at this width")
	landscapeLeft := fs.Bool("l", false, "landscape, rotated left")
	landscapeRight := fs.Bool("r", false, "landscape, rotated right")
	flip := fs.Bool("f", false, "swap output width and height and invert which layout orientation is rotated")
	columnMajor := fs.Bool("c", false, "lay out pages in column-major order")
	widthStr := fs.String("w", "", "output page width")
	heightStr := fs.String("h", "", "output page height")
	inWidthStr := fs.String("W", "", "input page width")
	inHeightStr := fs.String("H", "", "input page height")
	paperName := fs.String("p", "", "output (and by default input) paper size by name")
	paperNameAlt := fs.String("P", "", "output (and by default input) paper size by name (alias for -p)")
	marginStr := fs.String("m", "", "margin around the whole sheet")
	borderStr := fs.String("b", "", "border around each individual page")
	toleranceStr := fs.String("t", "", "layout tolerance")
	scaleStr := fs.String("s", "", "override the computed page scale")
	nStr := fs.String("n", "", "number of logical pages per output sheet")
	digits := make(map[string]*bool, 9)
	for d := '1'; d <= '9'; d++ {
		digits[string(d)] = fs.Bool(string(d), false, fmt.Sprintf("shorthand for -n %c", d))
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	n := 0
	if *nStr != "" {
		v, err := strconv.Atoi(*nStr)
		if err != nil || v < 1 {
			fmt.Fprintf(os.Stderr, "psnup: bad -n value %q\n", *nStr)
			return 1
		}
		n = v
	}
	for lit, set := range digits {
		if *set {
			v, _ := strconv.Atoi(lit)
			n = v
		}
	}
	if n < 1 {
		fmt.Fprintf(os.Stderr, "psnup: n-up count required, e.g. -n4 or -4\n")
		return 2
	}

	var cfg psutils.Config
	if name := firstNonEmpty(*paperName, *paperNameAlt); name != "" {
		w, h, ok := paper.Lookup(name)
		if !ok {
			fmt.Fprintf(os.Stderr, "psnup: unknown paper size %q\n", name)
			return 1
		}
		cfg.Width, cfg.Height = w, h
	}

	dim := func(flagName, s string) (float64, bool) {
		if s == "" {
			return 0, true
		}
		v, err := psutils.ParseDimension(s, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "psnup: %v\n", err)
			return 0, false
		}
		return v, true
	}

	var ok bool
	if cfg.Width, ok = overrideOrKeep(dim, "w", *widthStr, cfg.Width); !ok {
		return 1
	}
	if cfg.Height, ok = overrideOrKeep(dim, "h", *heightStr, cfg.Height); !ok {
		return 1
	}
	inWidth, ok := dim("W", *inWidthStr)
	if !ok {
		return 1
	}
	inHeight, ok := dim("H", *inHeightStr)
	if !ok {
		return 1
	}
	margin, ok := dim("m", *marginStr)
	if !ok {
		return 1
	}
	border, ok := dim("b", *borderStr)
	if !ok {
		return 1
	}
	draw, ok := dim("d", *drawStr)
	if !ok {
		return 1
	}

	var tolerance, userScale float64
	if *toleranceStr != "" {
		var err error
		tolerance, err = strconv.ParseFloat(*toleranceStr, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "psnup: bad -t value %q\n", *toleranceStr)
			return 1
		}
	}
	if *scaleStr != "" {
		var err error
		userScale, err = strconv.ParseFloat(*scaleStr, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "psnup: bad -s value %q\n", *scaleStr)
			return 1
		}
	}

	// -l, -r and -c each toggle the layout-order flags rather than set
	// them outright, matching the reference psnup's option handling: -l
	// toggles column-major and top-to-bottom, -r toggles column-major and
	// left-to-right, -c toggles column-major alone, so e.g. -l -r cancels
	// the column-major toggle and leaves both orderings flipped.
	column, leftright, topbottom := false, false, false
	if *landscapeLeft {
		column, topbottom = !column, !topbottom
	}
	if *landscapeRight {
		column, leftright = !column, !leftright
	}
	if *columnMajor {
		column = !column
	}

	doc, err := nup.Layout(nup.Options{
		N:           n,
		Width:       cfg.Width,
		Height:      cfg.Height,
		InputWidth:  inWidth,
		InputHeight: inHeight,
		Margin:      margin,
		Border:      border,
		Column:      column,
		LeftRight:   leftright,
		TopBottom:   topbottom,
		Flip:        *flip,
		UserScale:   userScale,
		Tolerance:   tolerance,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "psnup: %v\n", err)
		return 1
	}

	infile, outfile := "-", "-"
	if fs.NArg() >= 1 {
		infile = fs.Arg(0)
	}
	if fs.NArg() >= 2 {
		outfile = fs.Arg(1)
	}

	in, closeIn, err := openInput(infile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "psnup: %v\n", err)
		return 1
	}
	defer closeIn()

	rs, cleanup, err := seekable.Open(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "psnup: %v\n", err)
		return 1
	}
	defer cleanup()

	idx, err := psutils.Scan(rs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "psnup: %v\n", err)
		return 1
	}

	out, closeOut, err := openOutput(outfile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "psnup: %v\n", err)
		return 1
	}
	defer closeOut()

	progress := io.Discard
	if !*quiet {
		progress = os.Stderr
	}

	// -f swaps the clipping rectangle's width and height, since the
	// output page ends up used sideways; nup.Layout above must see the
	// original, un-swapped paper size, so the swap happens only here,
	// on the copy that feeds the imposition engine's %%BoundingBox,
	// %%DocumentMedia and clip-rectangle output.
	outCfg := cfg
	if *flip {
		outCfg.Width, outCfg.Height = outCfg.Height, outCfg.Width
	}

	opts := impose.Options{
		Modulo:  doc.Modulo,
		PPS:     1,
		Draw:    draw,
		Config:  outCfg,
		Verbose: !*quiet,
	}
	if err := impose.Impose(rs, idx, doc, opts, out, progress); err != nil {
		fmt.Fprintf(os.Stderr, "psnup: %v\n", err)
		return 1
	}
	return 0
}

// overrideOrKeep parses s (if non-empty) with dim and returns the parsed
// value, otherwise keeps the current value unchanged.
func overrideOrKeep(dim func(name, s string) (float64, bool), name, s string, current float64) (float64, bool) {
	if s == "" {
		return current, true
	}
	return dim(name, s)
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func openInput(name string) (io.Reader, func() error, error) {
	if name == "-" {
		return os.Stdin, func() error { return nil }, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, psutils.IOErrorf(-1, "open input", err)
	}
	return f, f.Close, nil
}

func openOutput(name string) (io.Writer, func() error, error) {
	if name == "-" {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return nil, nil, psutils.ArgErrorf("refusing to write PostScript output to a terminal; redirect stdout or give an outfile")
		}
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, nil, psutils.IOErrorf(-1, "create output", err)
	}
	return f, f.Close, nil
}
