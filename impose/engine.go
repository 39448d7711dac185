package impose

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	psutils "github.com/cclauss/psutils"
)

// Options configures one run of the imposition engine.
type Options struct {
	// Modulo is the block size the spec list is replayed against.
	Modulo int
	// PPS is the number of output sheets per modulo block, used for the
	// emitted %%Pages: count. Zero or negative means the number of merge
	// groups in the spec list.
	PPS int
	// NoBind suppresses the procset's use of bind, for interpreters that
	// need to redefine its operators afterwards.
	NoBind bool
	// Draw, if positive, strokes the per-page clip rectangle at this line
	// width.
	Draw float64
	// Config carries the output paper dimensions; zero means unset.
	Config psutils.Config
	// Verbose enables the "[N]"/"[*]" per-page progress stream.
	Verbose bool
}

// Impose reads through r (an io.ReaderAt over the same bytes idx was
// built from) and writes the re-imposed document to out, driven by doc's
// spec list. progress, if non-nil, receives a "[N] " marker per emitted
// sheet ("[*] " when the sheet's first slot is blank) when opts.Verbose
// is set.
func Impose(r io.ReaderAt, idx *psutils.Index, doc psutils.Document, opts Options, out io.Writer, progress io.Writer) error {
	if opts.Modulo <= 0 {
		return psutils.ArgErrorf("modulo must be positive, got %d", opts.Modulo)
	}

	if opts.PPS <= 0 {
		opts.PPS = len(doc.Specs.Groups())
		if opts.PPS == 0 {
			opts.PPS = 1
		}
	}

	w := psutils.NewWriter(out)
	e := &engine{r: r, idx: idx, doc: doc, opts: opts, w: w, progress: progress}
	if err := e.run(); err != nil {
		return err
	}
	return w.Flush()
}

type engine struct {
	r        io.ReaderAt
	idx      *psutils.Index
	doc      psutils.Document
	opts     Options
	w        *psutils.Writer
	progress io.Writer
}

func (e *engine) run() error {
	pages := e.idx.Pages()
	blocks := ceilDiv(pages, e.opts.Modulo)
	maxPage := blocks * e.opts.Modulo
	outputSheets := blocks * e.opts.PPS

	if err := e.writeHeader(outputSheets); err != nil {
		return err
	}
	if err := e.writeProcset(); err != nil {
		return err
	}
	needsXform := !e.idx.HasProcset()
	if needsXform {
		if err := e.w.WriteString(xformPreserveStatement); err != nil {
			return err
		}
	}
	if err := e.writeSetup(); err != nil {
		return err
	}

	groups := e.doc.Specs.Groups()

	outputPage := 0
	for thisPg := 0; thisPg < maxPage; thisPg += e.opts.Modulo {
		for _, group := range groups {
			var err error
			outputPage, err = e.writeGroup(group, thisPg, maxPage, pages, outputPage, needsXform)
			if err != nil {
				return err
			}
		}
	}

	return e.writeTrailer()
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// writeHeader implements step 1: header copy, replacement size lines,
// %%Pages:, and the remainder of the header up to header_end.
func (e *engine) writeHeader(outputSheets int) error {
	sizeSet := make(map[int64]bool, len(e.idx.SizeHeaders))
	for _, off := range e.idx.SizeHeaders {
		sizeSet[off] = true
	}
	filter := func(offset int64, _ []byte) bool { return !sizeSet[offset] }

	cur := int64(0)
	if e.idx.PagesComment != 0 {
		if err := e.w.CopyRange(e.r, cur, e.idx.PagesComment, filter); err != nil {
			return err
		}
		cur = e.idx.PagesComment

		lineLen, err := lineLengthAt(e.r, cur)
		if err != nil {
			return err
		}
		cur += lineLen

		if e.opts.Config.Width > 0 && e.opts.Config.Height > 0 {
			w, h := int(e.opts.Config.Width), int(e.opts.Config.Height)
			if err := e.w.Printf("%%%%DocumentMedia: plain %d %d 0 () ()\n", w, h); err != nil {
				return err
			}
			if err := e.w.Printf("%%%%BoundingBox: 0 0 %d %d\n", w, h); err != nil {
				return err
			}
		}
		if err := e.w.Printf("%%%%Pages: %d 0\n", outputSheets); err != nil {
			return err
		}
	}

	if err := e.w.CopyRange(e.r, cur, e.idx.HeaderEnd, filter); err != nil {
		return err
	}
	return nil
}

// writeProcset implements step 2: the procset is always emitted, once,
// regardless of whether any spec actually needs a transform.
func (e *engine) writeProcset() error {
	tag := "%%BeginProcSet: PStoPS"
	if e.opts.NoBind {
		tag += "-nobind"
	}
	if err := e.w.Printf("%s 1 15\n", tag); err != nil {
		return err
	}
	if err := e.w.WriteString(prologueText); err != nil {
		return err
	}
	if e.opts.NoBind {
		if err := e.w.WriteString("/bind{}def\n"); err != nil {
			return err
		}
	}
	return e.w.WriteString("%%EndProcSet\n")
}

const xformPreserveStatement = "userdict/PStoPSxform PStoPSmatrix matrix currentmatrix\n" +
	" matrix invertmatrix matrix concatmatrix\n" +
	" matrix invertmatrix put\n"

// writeSetup implements step 4: copy from the end of the header through
// end_setup, splicing around any pre-existing procset, then bridge any
// remaining bytes up to the first page.
func (e *engine) writeSetup() error {
	cur := e.idx.HeaderEnd
	if e.idx.BeginProcset != 0 {
		if err := e.w.CopyVerbatim(e.r, cur, e.idx.BeginProcset); err != nil {
			return err
		}
		cur = e.idx.EndProcset
	}
	if err := e.w.CopyVerbatim(e.r, cur, e.idx.EndSetup); err != nil {
		return err
	}
	cur = e.idx.EndSetup

	firstPage := int64(0)
	if len(e.idx.PageOffsets) > 0 {
		firstPage = e.idx.PageOffsets[0]
	}
	if firstPage > cur {
		if err := e.w.CopyVerbatim(e.r, cur, firstPage); err != nil {
			return err
		}
	}
	return nil
}

// writeGroup implements steps 5.a-g for one merge group (one output
// sheet), returning the next output page counter.
func (e *engine) writeGroup(group []psutils.PageSpec, thisPg, maxPage, pages, outputPage int, needsXform bool) (int, error) {
	type resolved struct {
		spec   psutils.PageSpec
		actual int
		inBody bool
	}
	resolvedGroup := make([]resolved, len(group))
	for i, ps := range group {
		actual := thisPg + ps.Pageno
		if ps.Flags.Has(psutils.Reversed) {
			actual = maxPage - thisPg - e.opts.Modulo + ps.Pageno
		}
		inBody := actual >= 0 && actual < pages
		resolvedGroup[i] = resolved{spec: ps, actual: actual, inBody: inBody}
	}

	// The composite label always lists every group member's resolved
	// 1-based page number, in()-notation, even members that will end up blank;
	// the whole label collapses to "*" only when the group's first
	// member is itself out of range, matching the reference tool's
	// verbose "[*]" marker for a synthesised blank sheet.
	primary := resolvedGroup[0]
	label := "*"
	if primary.inBody {
		var b strings.Builder
		b.WriteByte('(')
		for i, rg := range resolvedGroup {
			if i > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, "%d", rg.actual+1)
		}
		b.WriteByte(')')
		label = b.String()
	}

	outputPage++
	e.w.NextPage(label)
	if err := e.w.Printf("%%%%Page: %s %d\n", label, outputPage); err != nil {
		return 0, err
	}
	if e.opts.Verbose && e.progress != nil {
		if primary.inBody {
			fmt.Fprintf(e.progress, "[%d] ", outputPage)
		} else {
			fmt.Fprintf(e.progress, "[*] ")
		}
	}

	for _, rg := range resolvedGroup {
		if err := e.writeOnePage(rg.spec, rg.actual, rg.inBody, needsXform); err != nil {
			return 0, err
		}
	}
	return outputPage, nil
}

func (e *engine) writeOnePage(ps psutils.PageSpec, actual int, inBody bool, needsXform bool) error {
	if err := e.w.WriteString("userdict/PStoPSsaved save put\n"); err != nil {
		return err
	}

	transformed := ps.Flags.Any(psutils.Offset, psutils.Rotate, psutils.HFlip, psutils.VFlip, psutils.Scale)
	if transformed {
		if err := e.writeTransform(ps); err != nil {
			return err
		}
	}

	if ps.Flags.Has(psutils.AddNext) {
		if err := e.w.WriteString("/PStoPSenablepage false def\n"); err != nil {
			return err
		}
	}

	if inBody {
		pageStart := e.idx.PageOffsets[actual]
		pageEnd := e.idx.PageOffsets[actual+1]

		if needsXform {
			// No pre-existing procset: there is no earlier setup to
			// search for or strip, so skip straight to the transform
			// and copy the page exactly as it appears in the input.
			if err := e.w.WriteString("PStoPSxform concat\n"); err != nil {
				return err
			}
			if err := e.w.CopyVerbatim(e.r, pageStart, pageEnd); err != nil {
				return err
			}
		} else {
			bodyStart, err := e.copyPageSetup(pageStart, pageEnd)
			if err != nil {
				return err
			}
			if err := e.w.CopyVerbatim(e.r, bodyStart, pageEnd); err != nil {
				return err
			}
		}
	} else {
		if needsXform {
			if err := e.w.WriteString("PStoPSxform concat\n"); err != nil {
				return err
			}
		}
		if err := e.w.WriteString("showpage\n"); err != nil {
			return err
		}
	}

	return e.w.WriteString("PStoPSsaved restore\n")
}

// writeTransform implements step d: the fixed translate, rotate, hflip,
// vflip, scale order. Reordering this changes the visible output and
// must not happen.
func (e *engine) writeTransform(ps psutils.PageSpec) error {
	if err := e.w.WriteString("PStoPSmatrix setmatrix\n"); err != nil {
		return err
	}
	if ps.Flags.Has(psutils.Offset) {
		if err := e.w.Printf("%f %f translate\n", ps.XOff, ps.YOff); err != nil {
			return err
		}
	}
	if ps.Flags.Has(psutils.Rotate) {
		if err := e.w.Printf("%d rotate\n", ps.Rotate); err != nil {
			return err
		}
	}
	width, height := e.opts.Config.Width, e.opts.Config.Height
	if ps.Flags.Has(psutils.HFlip) {
		if err := e.w.Printf("[ -1 0 0 1 %f 0 ] concat\n", width*ps.Scale); err != nil {
			return err
		}
	}
	if ps.Flags.Has(psutils.VFlip) {
		if err := e.w.Printf("[ 1 0 0 -1 0 %f ] concat\n", height*ps.Scale); err != nil {
			return err
		}
	}
	if ps.Flags.Has(psutils.Scale) {
		if err := e.w.Printf("%f dup scale\n", ps.Scale); err != nil {
			return err
		}
	}
	if err := e.w.WriteString("userdict/PStoPSmatrix matrix currentmatrix put\n"); err != nil {
		return err
	}
	if width > 0 && height > 0 {
		if err := e.w.Printf("userdict/PStoPSclip{0 0 moveto\n %f 0 rlineto 0 %f rlineto -%f 0 rlineto\n closepath}put initclip\n", width, height, width); err != nil {
			return err
		}
		if e.opts.Draw > 0 {
			if err := e.w.Printf("gsave clippath 0 setgray %f setlinewidth stroke grestore\n", e.opts.Draw); err != nil {
				return err
			}
		}
	}
	return nil
}

// copyPageSetup copies the lines after a page's %%Page: line up to (but
// not including) the line beginning "PStoPSxform", returning the offset
// right after that line so the caller can resume copying the page body
// from there. The %%Page: line itself is not copied. If no such line
// exists before pageEnd, it copies the rest of the range and returns
// pageEnd.
func (e *engine) copyPageSetup(pageStart, pageEnd int64) (int64, error) {
	lineLen, err := lineLengthAt(e.r, pageStart)
	if err != nil {
		return 0, err
	}

	sr := io.NewSectionReader(e.r, pageStart+lineLen, pageEnd-pageStart-lineLen)
	br := bufio.NewReader(sr)
	offset := pageStart + lineLen

	for {
		line, rerr := br.ReadString('\n')
		if strings.HasPrefix(line, "PStoPSxform") {
			offset += int64(len(line))
			return offset, nil
		}
		if len(line) > 0 {
			if werr := e.w.WriteString(line); werr != nil {
				return 0, werr
			}
			offset += int64(len(line))
		}
		if rerr == io.EOF {
			return offset, nil
		}
		if rerr != nil {
			return 0, psutils.IOErrorf(e.w.PageNum(), "reading page setup", rerr)
		}
	}
}

func (e *engine) writeTrailer() error {
	pages := e.idx.Pages()
	trailerOffset := e.idx.PageOffsets[pages]
	sr := io.NewSectionReader(e.r, trailerOffset, 1<<62)
	return e.w.CopyToEOF(sr, 0)
}

// lineLengthAt returns the byte length, including its terminating
// newline (or lack of one at EOF), of the line starting at offset.
func lineLengthAt(r io.ReaderAt, offset int64) (int64, error) {
	sr := io.NewSectionReader(r, offset, 1<<20)
	br := bufio.NewReader(sr)
	line, rerr := br.ReadString('\n')
	if rerr != nil && rerr != io.EOF {
		return 0, psutils.IOErrorf(-1, "measuring header line", rerr)
	}
	return int64(len(line)), nil
}
