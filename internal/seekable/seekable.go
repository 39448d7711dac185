// Package seekable adapts an arbitrary io.Reader to an io.ReadSeeker so
// that the input can be scanned once and then re-read at random offsets
// by the imposition engine: pipes and other streamed sources are spooled
// to a temporary file first.
package seekable

import (
	"io"
	"os"
)

// ReadSeekerAt is the combination of io.ReadSeeker and io.ReaderAt that
// the imposition engine needs for its two-pass, random-access reads.
type ReadSeekerAt interface {
	io.ReadSeeker
	io.ReaderAt
}

// Open returns r itself if it already satisfies ReadSeekerAt (e.g. an
// *os.File opened on a real path). Otherwise it copies r's entire content
// into a temporary file and returns a handle to that file positioned at
// its start. The returned cleanup func removes the temporary file, if
// one was created, and must be called once the caller is done reading.
func Open(r io.Reader) (rs ReadSeekerAt, cleanup func() error, err error) {
	if rs, ok := r.(ReadSeekerAt); ok {
		return rs, func() error { return nil }, nil
	}

	tmp, err := os.CreateTemp("", "psutils-*.ps")
	if err != nil {
		return nil, nil, err
	}
	cleanup = func() error {
		closeErr := tmp.Close()
		removeErr := os.Remove(tmp.Name())
		if closeErr != nil {
			return closeErr
		}
		return removeErr
	}

	if _, err := io.Copy(tmp, r); err != nil {
		cleanup()
		return nil, nil, err
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		cleanup()
		return nil, nil, err
	}
	return tmp, cleanup, nil
}
