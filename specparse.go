package psutils

import (
	"strconv"
)

// ParseSpec parses the page-specification grammar described in the
// package's grammar reference:
//
//	pagespecs  = [ modulo ":" ] specs
//	specs      = spec ( ( "+" | "," ) spec )*
//	spec       = [ "-" ] [ pageno ] turns? ( "@" scale )? ( "(" xoff "," yoff ")" )?
//	turns      = ( "L" | "R" | "U" | "H" | "V" )+
//
// cfg supplies the output width/height used to resolve "w"/"h" dimension
// suffixes inside offset coordinates.
func ParseSpec(s string, cfg Config) (Document, error) {
	p := &specParser{s: s, cfg: cfg}
	return p.parse()
}

type specParser struct {
	s      string
	pos    int
	cfg    Config
	modulo int
}

func (p *specParser) parse() (Document, error) {
	p.modulo = 1

	if err := p.tryModulo(); err != nil {
		return Document{}, err
	}

	var specs SpecList
	var hadPagenos []bool
	total := 0
	for {
		spec, hadPageno, err := p.parseOneSpec()
		if err != nil {
			return Document{}, err
		}
		total++
		specs = append(specs, spec)
		hadPagenos = append(hadPagenos, hadPageno)

		if p.pos >= len(p.s) {
			break
		}
		switch p.s[p.pos] {
		case '+':
			specs[len(specs)-1].Flags.Set(AddNext)
			p.pos++
		case ',':
			p.pos++
		default:
			return Document{}, ArgErrorf("bad page specification %q: expected '+' or ',' at position %d", p.s, p.pos)
		}
	}

	if total == 1 {
		if !hadPagenos[0] {
			specs[0].Pageno = 0
		}
	} else {
		for _, had := range hadPagenos {
			if !had {
				return Document{}, ArgErrorf("bad page specification %q: page number is required when a spec list has more than one spec", p.s)
			}
		}
	}
	for i := range specs {
		specs[i].Flags.Clear(pagenoExplicit)
		if specs[i].Pageno < 0 || specs[i].Pageno >= p.modulo {
			return Document{}, ArgErrorf("bad page specification %q: page number %d out of range [0,%d)", p.s, specs[i].Pageno, p.modulo)
		}
	}

	return Document{Modulo: p.modulo, Specs: specs}, nil
}

// pagenoExplicit is an internal-use-only flag (beyond the eight documented
// ones) set on a spec while it is parsed when a page number literal was
// present, and cleared again before ParseSpec returns. The "single spec,
// pageno omitted" rule itself is decided from parseOneSpec's hadPageno
// results.
const pagenoExplicit Flag = numFlags

// tryModulo consumes a leading "N:" prefix, if present.
func (p *specParser) tryModulo() error {
	start := p.pos
	i := p.pos
	for i < len(p.s) && isDigit(p.s[i]) {
		i++
	}
	if i == start || i >= len(p.s) || p.s[i] != ':' {
		return nil
	}
	n, err := strconv.Atoi(p.s[start:i])
	if err != nil {
		return ArgErrorf("bad modulo %q: %v", p.s[start:i], err)
	}
	if n <= 0 {
		return ArgErrorf("bad modulo %d: must be positive", n)
	}
	p.modulo = n
	p.pos = i + 1
	return nil
}

func (p *specParser) parseOneSpec() (PageSpec, bool, error) {
	spec := NewPageSpec()
	hadPageno := false

	if p.pos < len(p.s) && p.s[p.pos] == '-' {
		spec.Flags.Toggle(Reversed)
		p.pos++
	}

	if p.pos < len(p.s) && isDigit(p.s[p.pos]) {
		start := p.pos
		for p.pos < len(p.s) && isDigit(p.s[p.pos]) {
			p.pos++
		}
		n, err := strconv.Atoi(p.s[start:p.pos])
		if err != nil {
			return PageSpec{}, false, ArgErrorf("bad page number %q: %v", p.s[start:p.pos], err)
		}
		spec.Pageno = n
		spec.Flags.Set(pagenoExplicit)
		hadPageno = true
	}

loop:
	for p.pos < len(p.s) {
		switch p.s[p.pos] {
		case 'L', 'l':
			spec.Rotate = CanonicalRotate(spec.Rotate + 90)
			spec.Flags.Set(Rotate)
			p.pos++
		case 'R', 'r':
			spec.Rotate = CanonicalRotate(spec.Rotate - 90)
			spec.Flags.Set(Rotate)
			p.pos++
		case 'U', 'u':
			spec.Rotate = CanonicalRotate(spec.Rotate + 180)
			spec.Flags.Set(Rotate)
			p.pos++
		case 'H', 'h':
			spec.Flags.Toggle(HFlip)
			p.pos++
		case 'V', 'v':
			spec.Flags.Toggle(VFlip)
			p.pos++
		default:
			break loop
		}
	}

	for p.pos < len(p.s) && p.s[p.pos] == '@' {
		p.pos++
		start := p.pos
		for p.pos < len(p.s) && isNumberChar(p.s[p.pos]) {
			p.pos++
		}
		if p.pos == start {
			return PageSpec{}, false, ArgErrorf("bad page specification %q: expected scale after '@'", p.s)
		}
		v, err := strconv.ParseFloat(p.s[start:p.pos], 64)
		if err != nil {
			return PageSpec{}, false, ArgErrorf("bad scale %q: %v", p.s[start:p.pos], err)
		}
		if spec.Flags.Has(Scale) {
			spec.Scale *= v
		} else {
			spec.Scale = v
		}
		spec.Flags.Set(Scale)
	}

	if p.pos < len(p.s) && p.s[p.pos] == '(' {
		p.pos++
		x, err := p.readDimension()
		if err != nil {
			return PageSpec{}, false, err
		}
		if p.pos >= len(p.s) || p.s[p.pos] != ',' {
			return PageSpec{}, false, ArgErrorf("bad page specification %q: expected ',' in offset", p.s)
		}
		p.pos++
		y, err := p.readDimension()
		if err != nil {
			return PageSpec{}, false, err
		}
		if p.pos >= len(p.s) || p.s[p.pos] != ')' {
			return PageSpec{}, false, ArgErrorf("bad page specification %q: expected ')' in offset", p.s)
		}
		p.pos++
		spec.XOff += x
		spec.YOff += y
		spec.Flags.Set(Offset)
	}

	return spec, hadPageno, nil
}

func (p *specParser) readDimension() (float64, error) {
	v, rest, err := parseDimensionPrefix(p.s[p.pos:], p.cfg)
	if err != nil {
		return 0, err
	}
	p.pos += len(p.s[p.pos:]) - len(rest)
	return v, nil
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isNumberChar(b byte) bool {
	return isDigit(b) || b == '.' || b == '+' || b == '-'
}
