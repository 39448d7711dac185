// Command pstops rearranges the pages of a PostScript document according
// to a page-specification string, in the manner of the reference psutils
// pstops.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	psutils "github.com/cclauss/psutils"
	"github.com/cclauss/psutils/impose"
	"github.com/cclauss/psutils/internal/getopt"
	"github.com/cclauss/psutils/internal/seekable"
	"github.com/cclauss/psutils/paper"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	valued := getopt.Valued{'p': true, 'P': true, 'w': true, 'h': true, 'c': true, 'd': true}
	args := getopt.Split(argv, valued, map[byte]string{'d': "1pt"})

	fs := flag.NewFlagSet("pstops", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: pstops [-q] [-b] [-pPAPER|-PPAPER] [-wW] [-hH] [-d[LW]] pagespecs [infile [outfile]]\n")
		fs.PrintDefaults()
	}

	quiet := fs.Bool("q", false, "suppress per-page progress")
	nobind := fs.Bool("b", false, "omit bind in the emitted procset")
	paperName := fs.String("p", "", "output paper size by name")
	paperNameAlt := fs.String("P", "", "output paper size by name (alias for -p)")
	widthStr := fs.String("w", "", "output page width")
	heightStr := fs.String("h", "", "output page height")
	drawStr := fs.String("d", "", "draw cell border lines at this width")
	cycle := fs.Int("c", 0, "pages per specification cycle")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return 2
	}

	var cfg psutils.Config
	if name := firstNonEmpty(*paperName, *paperNameAlt); name != "" {
		w, h, ok := paper.Lookup(name)
		if !ok {
			fmt.Fprintf(os.Stderr, "pstops: unknown paper size %q\n", name)
			return 1
		}
		cfg.Width, cfg.Height = w, h
	}
	if *widthStr != "" {
		w, err := psutils.ParseDimension(*widthStr, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "pstops: %v\n", err)
			return 1
		}
		cfg.Width = w
	}
	if *heightStr != "" {
		h, err := psutils.ParseDimension(*heightStr, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "pstops: %v\n", err)
			return 1
		}
		cfg.Height = h
	}

	doc, err := psutils.ParseSpec(fs.Arg(0), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pstops: %v\n", err)
		return 1
	}

	var draw float64
	if *drawStr != "" {
		draw, err = psutils.ParseDimension(*drawStr, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "pstops: %v\n", err)
			return 1
		}
	}

	infile, outfile := "-", "-"
	if fs.NArg() >= 2 {
		infile = fs.Arg(1)
	}
	if fs.NArg() >= 3 {
		outfile = fs.Arg(2)
	}

	in, closeIn, err := openInput(infile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pstops: %v\n", err)
		return 1
	}
	defer closeIn()

	rs, cleanup, err := seekable.Open(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pstops: %v\n", err)
		return 1
	}
	defer cleanup()

	idx, err := psutils.Scan(rs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pstops: %v\n", err)
		return 1
	}

	out, closeOut, err := openOutput(outfile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pstops: %v\n", err)
		return 1
	}
	defer closeOut()

	pps := *cycle
	if pps <= 0 {
		pps = len(doc.Specs.Groups())
		if pps == 0 {
			pps = 1
		}
	}

	progress := io.Discard
	if !*quiet {
		progress = os.Stderr
	}

	opts := impose.Options{
		Modulo:  doc.Modulo,
		PPS:     pps,
		NoBind:  *nobind,
		Draw:    draw,
		Config:  cfg,
		Verbose: !*quiet,
	}
	if err := impose.Impose(rs, idx, doc, opts, out, progress); err != nil {
		fmt.Fprintf(os.Stderr, "pstops: %v\n", err)
		return 1
	}
	return 0
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
