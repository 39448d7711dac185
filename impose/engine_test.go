package impose

import (
	"bytes"
	"strings"
	"testing"

	psutils "github.com/cclauss/psutils"
)

const sampleDoc = `%!PS-Adobe-3.0
%%Pages: 2
%%BoundingBox: 0 0 100 200
%%EndComments
%%BeginProlog
%%EndProlog
%%BeginSetup
%%EndSetup
%%Page: 1 1
1 dict begin
/foo 1 def
end
showpage
%%Page: 2 2
2 dict begin
/bar 2 def
end
showpage
%%Trailer
%%EOF
`

func scanSample(t *testing.T) (*psutils.Index, *strings.Reader) {
	t.Helper()
	r := strings.NewReader(sampleDoc)
	idx, err := psutils.Scan(r)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	return idx, r
}

func TestImposeIdentitySpecPreservesPageCount(t *testing.T) {
	idx, r := scanSample(t)
	doc, err := psutils.ParseSpec("0", psutils.Config{})
	if err != nil {
		t.Fatalf("ParseSpec: %v", err)
	}

	var out bytes.Buffer
	err = Impose(r, idx, doc, Options{Modulo: 1}, &out, nil)
	if err != nil {
		t.Fatalf("Impose: %v", err)
	}

	got := out.String()
	// "%%Page: (" only ever appears in a synthesised sheet header; the
	// input's own "%%Page: N N" lines are copied verbatim into the body
	// alongside it, since there is no pre-existing procset setup to
	// search for and strip them from.
	if strings.Count(got, "%%Page: (") != 2 {
		t.Errorf("expected 2 synthesised %%%%Page: headers, got %d\n%s", strings.Count(got, "%%Page: ("), got)
	}
	if strings.Count(got, "%%BeginProcSet: PStoPS") != 1 {
		t.Error("expected exactly one PStoPS procset header")
	}
	if strings.Count(got, "%%EndProcSet") != 1 {
		msg := "expected exactly one %%EndProcSet"
		t.Error(msg)
	}
	if strings.Count(got, "userdict/PStoPSsaved save put") != strings.Count(got, "PStoPSsaved restore") {
		t.Error("save/restore imbalance")
	}
}

func TestImposeMergeGroupProducesOneSheet(t *testing.T) {
	idx, r := scanSample(t)
	doc, err := psutils.ParseSpec("2:0+1", psutils.Config{})
	if err != nil {
		t.Fatalf("ParseSpec: %v", err)
	}

	var out bytes.Buffer
	if err := Impose(r, idx, doc, Options{Modulo: 2}, &out, nil); err != nil {
		t.Fatalf("Impose: %v", err)
	}

	got := out.String()
	if strings.Count(got, "%%Page: (") != 1 {
		t.Errorf("merge group of 2 specs on one sheet should emit exactly one synthesised %%%%Page: header, got:\n%s", got)
	}
	if strings.Count(got, "/PStoPSenablepage false def") != 1 {
		t.Error("expected exactly one PStoPSenablepage-false statement, for the first of the two merged specs")
	}
}

const singlePageDoc = `%!PS-Adobe-3.0
%%Pages: 1
%%EndComments
%%BeginProlog
%%EndProlog
%%BeginSetup
%%EndSetup
%%Page: 1 1
1 dict begin
end
showpage
%%Trailer
%%EOF
`

func TestImposeBlankPageSynthesis(t *testing.T) {
	r := strings.NewReader(singlePageDoc)
	idx, err := psutils.Scan(r)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	// modulo 2 over a single-page document: the second slot in the only
	// block has no input page to draw from and must come out blank.
	doc, err := psutils.ParseSpec("2:0,1", psutils.Config{})
	if err != nil {
		t.Fatalf("ParseSpec: %v", err)
	}

	var out bytes.Buffer
	if err := Impose(r, idx, doc, Options{Modulo: 2}, &out, nil); err != nil {
		t.Fatalf("Impose: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "PStoPSxform concat\nshowpage\nPStoPSsaved restore") {
		t.Errorf("expected a synthesised blank page with the transform re-applied, got:\n%s", got)
	}
	if !strings.Contains(got, "%%Page: (1) 1") {
		t.Errorf("first sheet should carry the in-body page's own label, got:\n%s", got)
	}
	if !strings.Contains(got, "%%Page: * 2") {
		t.Errorf("second sheet, entirely out of range, should carry the \"*\" label, got:\n%s", got)
	}
}

func TestImposeExistingProcsetIsNotCopied(t *testing.T) {
	doc := `%!PS-Adobe-3.0
%%Pages: 1
%%EndComments
%%BeginProlog
%%BeginProcSet: PStoPS 1 15
userdict begin
/PStoPSmatrix matrix currentmatrix def
end
%%EndProcSet
%%EndProlog
%%BeginSetup
%%EndSetup
%%Page: 1 1
PStoPSxform concat
1 dict begin
end
showpage
%%Trailer
%%EOF
`
	r := strings.NewReader(doc)
	idx, err := psutils.Scan(r)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !idx.HasProcset() {
		t.Fatal("expected scan to find the embedded procset")
	}

	spec, err := psutils.ParseSpec("0", psutils.Config{})
	if err != nil {
		t.Fatalf("ParseSpec: %v", err)
	}

	var out bytes.Buffer
	if err := Impose(r, idx, spec, Options{Modulo: 1}, &out, nil); err != nil {
		t.Fatalf("Impose: %v", err)
	}

	got := out.String()
	if strings.Contains(got, "PStoPSmatrix matrix currentmatrix def\nend\n%%EndProcSet") {
		t.Error("the input's own procset body must not be copied to output")
	}
	if strings.Contains(got, "userdict/PStoPSxform PStoPSmatrix matrix currentmatrix") {
		t.Error("transform-preservation statement should not be emitted when the input already has a procset")
	}
	if strings.Count(got, "%%BeginProcSet: PStoPS") != 1 {
		t.Error("expected exactly one procset in the output")
	}
}

func TestImposeNoBindAppendsBindOverride(t *testing.T) {
	idx, r := scanSample(t)
	doc, err := psutils.ParseSpec("2:0,1", psutils.Config{})
	if err != nil {
		t.Fatalf("ParseSpec: %v", err)
	}

	var out bytes.Buffer
	if err := Impose(r, idx, doc, Options{Modulo: 2, NoBind: true}, &out, nil); err != nil {
		t.Fatalf("Impose: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "%%BeginProcSet: PStoPS-nobind 1 15") {
		t.Error("expected the -nobind marker in the procset header")
	}
	if !strings.Contains(got, "/bind{}def\n%%EndProcSet") {
		msg := "expected /bind{}def immediately before %%EndProcSet"
		t.Error(msg)
	}
}
