package getopt_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cclauss/psutils/internal/getopt"
)

func TestSplitAttachedValue(t *testing.T) {
	valued := getopt.Valued{'p': true, 'w': true}
	got := getopt.Split([]string{"-pA4", "-w200pt", "specs"}, valued, nil)
	want := []string{"-p", "A4", "-w", "200pt", "specs"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Split() mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitBareFlagUsesDefault(t *testing.T) {
	valued := getopt.Valued{'d': true}
	got := getopt.Split([]string{"-d", "in.ps"}, valued, map[byte]string{'d': "1pt"})
	want := []string{"-d=1pt", "in.ps"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Split() mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitLeavesBooleanFlagsAlone(t *testing.T) {
	got := getopt.Split([]string{"-q", "-b"}, getopt.Valued{}, nil)
	want := []string{"-q", "-b"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Split() mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitLeavesUnvaluedShortFlagAlone(t *testing.T) {
	valued := getopt.Valued{'p': true}
	got := getopt.Split([]string{"-p"}, valued, nil)
	want := []string{"-p"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Split() mismatch (-want +got):\n%s", diff)
	}
}
