package psutils

// PageSpec describes one region of one input page placed on one output
// sheet. Rotate is canonicalised to one of {0, 90, 180, 270} by
// CanonicalRotate; Scale defaults to 1.
type PageSpec struct {
	Pageno int
	Flags  FlagSet
	Rotate int
	Scale  float64
	XOff   float64
	YOff   float64
}

// NewPageSpec returns a PageSpec with the documented zero values (Scale 1,
// everything else zero/unset).
func NewPageSpec() PageSpec {
	return PageSpec{Scale: 1}
}

// CanonicalRotate reduces r modulo 360 into the range [0, 360).
func CanonicalRotate(r int) int {
	r %= 360
	if r < 0 {
		r += 360
	}
	return r
}

// SpecList is an ordered sequence of PageSpec records. Consecutive specs
// with AddNext set form a merge group that shares one output page; this
// replaces the reference implementation's next-pointer linked list per the
// spec's own design note that an ordered sequence conveys the same
// structure without pointer identity.
type SpecList []PageSpec

// Document is a fully parsed (or synthesised) page-spec program: a modulo
// and the spec list that is replayed once per block of Modulo input pages.
type Document struct {
	Modulo int
	Specs  SpecList
}

// Groups splits the spec list into merge groups: runs of consecutive specs
// where every member but the last has AddNext set. Each group ends up on
// one output sheet.
func (s SpecList) Groups() [][]PageSpec {
	var groups [][]PageSpec
	var cur []PageSpec
	for _, ps := range s {
		cur = append(cur, ps)
		if !ps.Flags.Has(AddNext) {
			groups = append(groups, cur)
			cur = nil
		}
	}
	if len(cur) > 0 {
		groups = append(groups, cur)
	}
	return groups
}
