package psutils

import "github.com/bits-and-blooms/bitset"

// Flag names one bit of a PageSpec's flag set.
type Flag uint

const (
	Reversed Flag = iota
	GSave
	Offset
	Rotate
	HFlip
	VFlip
	Scale
	AddNext

	numFlags
)

// FlagSet is a small bitset over the flags a PageSpec can carry. It uses
// bitset.BitSet the same way github.com/kofi-q/scribe-go's ttf package
// tracks glyph-id membership (Set/Test on a handful of bit positions),
// rather than a hand-rolled uint8 mask.
type FlagSet struct {
	bits bitset.BitSet
}

// Set turns the flag on.
func (f *FlagSet) Set(flag Flag) {
	f.bits.Set(uint(flag))
}

// Clear turns the flag off.
func (f *FlagSet) Clear(flag Flag) {
	f.bits.Clear(uint(flag))
}

// Toggle flips the flag, matching the reference parser's use of XOR for
// "-", "H" and "V" so that a repeated modifier cancels itself.
func (f *FlagSet) Toggle(flag Flag) {
	if f.Has(flag) {
		f.Clear(flag)
	} else {
		f.Set(flag)
	}
}

// Has reports whether the flag is set.
func (f *FlagSet) Has(flag Flag) bool {
	return f.bits.Test(uint(flag))
}

// Any reports whether any of the given flags are set.
func (f *FlagSet) Any(flags ...Flag) bool {
	for _, fl := range flags {
		if f.Has(fl) {
			return true
		}
	}
	return false
}
