package psutils

import (
	"bufio"
	"errors"
	"io"
)

// Index is the immutable result of scanning a DSC-conformant PostScript
// file: the byte offsets of its structural sections and of each page.
type Index struct {
	// HeaderEnd is the first byte after the header-comment block.
	HeaderEnd int64
	// PagesComment is the offset of the "%%Pages:" line in the header,
	// or 0 if absent.
	PagesComment int64
	// EndSetup is the offset of the "%%EndSetup" line itself, or the
	// start of the first page if absent (or if it lies past that page).
	EndSetup int64
	// BeginProcset and EndProcset delimit a previously embedded PStoPS
	// procset, or 0/0 if there is none.
	BeginProcset int64
	EndProcset   int64
	// PageOffsets[i] is the byte offset of the "%%Page:" line starting
	// page i; PageOffsets[len(PageOffsets)-1] (i.e. index Pages()) is the
	// offset of the trailer.
	PageOffsets []int64
	// SizeHeaders holds the offsets of %%BoundingBox/%%HiResBoundingBox/
	// %%DocumentPaperSizes/%%DocumentMedia lines found in the header.
	SizeHeaders []int64
}

// Pages is the number of pages found in the document.
func (idx *Index) Pages() int {
	if len(idx.PageOffsets) == 0 {
		return 0
	}
	return len(idx.PageOffsets) - 1
}

// HasProcset reports whether the input already carries an embedded PStoPS
// procset.
func (idx *Index) HasProcset() bool {
	return idx.BeginProcset != 0 || idx.EndProcset != 0
}

// Scan performs a single forward pass over r (which must support Seek; see
// the internal/seekable package for wrapping non-seekable input) and
// builds an Index. Offsets are tracked in a local counter rather than by
// querying the underlying stream position, mirroring the way
// seehuhn.de/go/pdf's internal scanner keeps its own running byte count
// instead of trusting the OS file position while it is reading through a
// buffered layer.
//
// header_end uses the same 0-as-unset sentinel as the reference scanner:
// it keeps tracking the first non-"%%" line encountered until a real,
// nonzero offset is recorded (either from that line, or from
// "%%EndComments"/"%%BeginProlog"), so a leading "%!PS-Adobe-3.0" line at
// offset 0 does not itself terminate the header.
func Scan(r io.ReadSeeker) (*Index, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, IOErrorf(-1, "seeking to start of file", err)
	}

	idx := &Index{}
	br := bufio.NewReader(r)

	var offset, trailerOffset int64
	nesting := 0

	for {
		lineStart := offset
		line, readErr := br.ReadString('\n')
		offset += int64(len(line))
		trailerOffset = offset

		isDSC := len(line) >= 2 && line[0] == '%' && line[1] == '%'
		stop := false

		if isDSC {
			switch {
			case nesting == 0 && hasKeyword(line, "%%Page:"):
				idx.PageOffsets = append(idx.PageOffsets, lineStart)
			case nesting == 0 && idx.HeaderEnd == 0 && hasKeyword(line, "%%BoundingBox:"),
				nesting == 0 && idx.HeaderEnd == 0 && hasKeyword(line, "%%HiResBoundingBox:"),
				nesting == 0 && idx.HeaderEnd == 0 && hasKeyword(line, "%%DocumentPaperSizes:"),
				nesting == 0 && idx.HeaderEnd == 0 && hasKeyword(line, "%%DocumentMedia:"):
				idx.SizeHeaders = append(idx.SizeHeaders, lineStart)
			case nesting == 0 && idx.HeaderEnd == 0 && hasKeyword(line, "%%Pages:"):
				idx.PagesComment = lineStart
			case nesting == 0 && idx.HeaderEnd == 0 && hasKeyword(line, "%%EndComments"):
				idx.HeaderEnd = offset
			case hasKeyword(line, "%%BeginDocument"), hasKeyword(line, "%%BeginBinary"), hasKeyword(line, "%%BeginFile"):
				nesting++
			case hasKeyword(line, "%%EndDocument"), hasKeyword(line, "%%EndBinary"), hasKeyword(line, "%%EndFile"):
				nesting--
			case nesting == 0 && idx.HeaderEnd == 0 && hasKeyword(line, "%%BeginProlog"):
				idx.HeaderEnd = offset
			case nesting == 0 && hasKeyword(line, "%%EndSetup"):
				idx.EndSetup = lineStart
			case nesting == 0 && hasKeyword(line, "%%BeginProcSet: PStoPS"):
				idx.BeginProcset = lineStart
			case idx.BeginProcset != 0 && idx.EndProcset == 0 && hasKeyword(line, "%%EndProcSet"):
				idx.EndProcset = offset
			case nesting == 0 && (hasKeyword(line, "%%Trailer") || hasKeyword(line, "%%EOF")):
				if _, err := r.Seek(lineStart, io.SeekStart); err != nil {
					return nil, IOErrorf(-1, "seeking to trailer", err)
				}
				trailerOffset = lineStart
				stop = true
			}
		} else if idx.HeaderEnd == 0 {
			idx.HeaderEnd = lineStart
		}

		if stop {
			break
		}
		if readErr != nil {
			if !errors.Is(readErr, io.EOF) {
				return nil, IOErrorf(-1, "scanning file", readErr)
			}
			break
		}
	}
	idx.PageOffsets = append(idx.PageOffsets, trailerOffset)

	firstPage := int64(0)
	if len(idx.PageOffsets) > 0 {
		firstPage = idx.PageOffsets[0]
	}
	if idx.EndSetup == 0 || idx.EndSetup > firstPage {
		idx.EndSetup = firstPage
	}

	return idx, nil
}

// hasKeyword reports whether line, ignoring the trailing "\n", begins with
// keyword.
func hasKeyword(line, keyword string) bool {
	if len(line) < len(keyword) {
		return false
	}
	return line[:len(keyword)] == keyword
}
