// Package getopt rewrites the classic single-dash, attached-value command
// lines these tools inherit from the reference psutils (-pA4, -d2pt, -n4)
// into the space- or equals-separated form the standard flag package
// expects, so cmd/pstops and cmd/psnup can keep that command line while
// still parsing it with flag.FlagSet.
package getopt

// Valued lists which single-letter flags take a value; any short flag not
// present is treated as boolean and left untouched.
type Valued map[byte]bool

// Split rewrites args, splitting "-xVALUE" into "-x", "VALUE" for every
// letter x present in valued. A bare "-x" (no attached value) is left
// alone unless defaults[x] supplies a value to substitute, which lets an
// optional-argument flag like "-d" (draw borders, default line width)
// still parse as a flag.String with a default instead of swallowing the
// next positional argument.
func Split(args []string, valued Valued, defaults map[byte]string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if len(a) >= 2 && a[0] == '-' && a[1] != '-' && valued[a[1]] {
			if len(a) > 2 {
				out = append(out, a[:2], a[2:])
				continue
			}
			if d, ok := defaults[a[1]]; ok {
				out = append(out, a[:2]+"="+d)
				continue
			}
		}
		out = append(out, a)
	}
	return out
}
