package psutils

import (
	"bufio"
	"fmt"
	"io"
)

// Writer is a stateful, byte-counted emitter for the output PostScript
// stream. It owns the sole io.Writer for the run and tracks the running
// byte count and the current 1-based output page number, mirroring the
// counting behaviour of seehuhn.de/go/pdf's Writer.
type Writer struct {
	w         *bufio.Writer
	written   int64
	pageNum   int
	pageLabel string
}

// NewWriter wraps w for buffered, byte-counted output.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Written returns the total number of bytes written so far.
func (wr *Writer) Written() int64 {
	return wr.written
}

// PageNum returns the current (1-based) output page number.
func (wr *Writer) PageNum() int {
	return wr.pageNum
}

// NextPage advances and returns the new output page number, remembering
// label for diagnostics.
func (wr *Writer) NextPage(label string) int {
	wr.pageNum++
	wr.pageLabel = label
	return wr.pageNum
}

// WriteString writes s verbatim.
func (wr *Writer) WriteString(s string) error {
	n, err := wr.w.WriteString(s)
	wr.written += int64(n)
	if err != nil {
		return IOErrorf(wr.pageNum, "writing output", err)
	}
	return nil
}

// Printf writes a formatted string, matching the reference writer's
// writestringf helper.
func (wr *Writer) Printf(format string, args ...any) error {
	return wr.WriteString(fmt.Sprintf(format, args...))
}

// CopyRange copies the byte range [from, to) from r (an io.ReaderAt) to
// the output, calling filter for each line so callers can suppress lines
// that start at an offset the caller wants ignored (used to drop
// %%BoundingBox-family lines being replaced).
//
// filter is called with the offset of the start of each line and the line
// itself; returning false drops the line from the output.
func (wr *Writer) CopyRange(r io.ReaderAt, from, to int64, filter func(offset int64, line []byte) bool) error {
	if to < from {
		return IOErrorf(wr.pageNum, "copying range", errShortRange)
	}
	sr := io.NewSectionReader(r, from, to-from)
	br := bufio.NewReader(sr)

	offset := from
	for offset < to {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			if filter == nil || filter(offset, line) {
				if werr := wr.WriteString(string(line)); werr != nil {
					return werr
				}
			}
			offset += int64(len(line))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return IOErrorf(wr.pageNum, "copying range", err)
		}
	}
	return nil
}

// CopyVerbatim copies bytes [from, to) from r with no filtering.
func (wr *Writer) CopyVerbatim(r io.ReaderAt, from, to int64) error {
	return wr.CopyRange(r, from, to, nil)
}

// CopyToEOF copies bytes from offset "from" to the end of r. If r is not
// an io.Seeker, from is ignored and copying starts at r's current
// position.
func (wr *Writer) CopyToEOF(r io.Reader, from int64) error {
	if seeker, ok := r.(io.Seeker); ok {
		if _, err := seeker.Seek(from, io.SeekStart); err != nil {
			return IOErrorf(wr.pageNum, "seeking to trailer", err)
		}
	}
	n, err := io.Copy(wr.w, r)
	wr.written += n
	if err != nil {
		return IOErrorf(wr.pageNum, "copying trailer", err)
	}
	return nil
}

// Flush flushes any buffered output.
func (wr *Writer) Flush() error {
	if err := wr.w.Flush(); err != nil {
		return IOErrorf(wr.pageNum, "flushing output", err)
	}
	return nil
}

var errShortRange = shortRangeError{}

type shortRangeError struct{}

func (shortRangeError) Error() string { return "range end precedes range start" }
