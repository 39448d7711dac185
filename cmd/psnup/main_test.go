package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `%!PS-Adobe-3.0
%%Pages: 4
%%BoundingBox: 0 0 300 400
%%EndComments
%%BeginProlog
%%EndProlog
%%BeginSetup
%%EndSetup
%%Page: 1 1
body one
showpage
%%Page: 2 2
body two
showpage
%%Page: 3 3
body three
showpage
%%Page: 4 4
body four
showpage
%%Trailer
%%EOF
`

func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "in.ps")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o644))
	return path
}

func TestRunFourUpProducesOneSheet(t *testing.T) {
	in := writeFixture(t)
	out := filepath.Join(t.TempDir(), "out.ps")

	code := run([]string{"-q", "-pa4", "-4", in, out})
	require.Equal(t, 0, code)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	content := string(got)
	// "%%Page: (" only appears in a synthesised sheet header; the input's
	// own "%%Page: N N" lines are copied into the body alongside it.
	assert.Equal(t, 1, countOccurrences(content, "%%Page: ("))
	for _, body := range []string{"body one", "body two", "body three", "body four"} {
		assert.Contains(t, content, body)
	}
}

func TestRunNFlagEquivalentToDigitShortcut(t *testing.T) {
	in := writeFixture(t)
	outN := filepath.Join(t.TempDir(), "n.ps")
	outDigit := filepath.Join(t.TempDir(), "digit.ps")

	require.Equal(t, 0, run([]string{"-q", "-pa4", "-n4", in, outN}))
	require.Equal(t, 0, run([]string{"-q", "-pa4", "-4", in, outDigit}))

	gotN, err := os.ReadFile(outN)
	require.NoError(t, err)
	gotDigit, err := os.ReadFile(outDigit)
	require.NoError(t, err)
	assert.Equal(t, string(gotN), string(gotDigit))
}

func TestRunRequiresNupCount(t *testing.T) {
	in := writeFixture(t)
	out := filepath.Join(t.TempDir(), "out.ps")
	code := run([]string{"-pa4", in, out})
	assert.NotEqual(t, 0, code)
}

func TestRunRejectsUnknownPaper(t *testing.T) {
	in := writeFixture(t)
	out := filepath.Join(t.TempDir(), "out.ps")
	code := run([]string{"-pbogus", "-2", in, out})
	assert.NotEqual(t, 0, code)
}

func TestRunFlipSwapsOutputMediaDimensions(t *testing.T) {
	in := writeFixture(t)
	outPlain := filepath.Join(t.TempDir(), "plain.ps")
	outFlipped := filepath.Join(t.TempDir(), "flipped.ps")

	require.Equal(t, 0, run([]string{"-q", "-w200", "-h400", "-2", in, outPlain}))
	require.Equal(t, 0, run([]string{"-q", "-w200", "-h400", "-f", "-2", in, outFlipped}))

	plain, err := os.ReadFile(outPlain)
	require.NoError(t, err)
	flipped, err := os.ReadFile(outFlipped)
	require.NoError(t, err)

	// -f swaps the clip rectangle's width and height for the output
	// document's %%BoundingBox/%%DocumentMedia, since the paper ends up
	// used sideways; it must not change the -w/-h values nup.Layout used
	// to pick the grid geometry itself.
	assert.Contains(t, string(plain), "%%BoundingBox: 0 0 200 400")
	assert.Contains(t, string(flipped), "%%BoundingBox: 0 0 400 200")
}

func countOccurrences(s, substr string) int {
	n := 0
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			n++
			i += len(substr) - 1
		}
	}
	return n
}
