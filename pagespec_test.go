package psutils_test

import (
	"testing"

	psutils "github.com/cclauss/psutils"
)

func TestCanonicalRotate(t *testing.T) {
	cases := map[int]int{
		0:    0,
		90:   90,
		360:  0,
		450:  90,
		-90:  270,
		-450: 270,
	}
	for in, want := range cases {
		if got := psutils.CanonicalRotate(in); got != want {
			t.Errorf("CanonicalRotate(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestNewPageSpecDefaultsScaleToOne(t *testing.T) {
	ps := psutils.NewPageSpec()
	if ps.Scale != 1 {
		t.Errorf("NewPageSpec().Scale = %v, want 1", ps.Scale)
	}
}

func TestSpecListGroups(t *testing.T) {
	a := psutils.NewPageSpec()
	a.Flags.Set(psutils.AddNext)
	b := psutils.NewPageSpec()
	c := psutils.NewPageSpec()

	list := psutils.SpecList{a, b, c}
	groups := list.Groups()
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if len(groups[0]) != 2 {
		t.Errorf("expected first group to have 2 members (a+b), got %d", len(groups[0]))
	}
	if len(groups[1]) != 1 {
		t.Errorf("expected second group to have 1 member (c), got %d", len(groups[1]))
	}
}

func TestSpecListGroupsAllSeparate(t *testing.T) {
	list := psutils.SpecList{psutils.NewPageSpec(), psutils.NewPageSpec()}
	groups := list.Groups()
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
}
