// Package impose implements the imposition engine: it drives the DSC
// index, a page-spec document and the output writer to produce a
// transformed PostScript file.
package impose

import _ "embed"

// prologueText is the fixed PStoPS procset body, embedded verbatim as a
// bit-level output contract rather than generated, the same way
// seehuhn.de/go/pdf embeds its standard CMap and font resources with
// //go:embed instead of constructing them at runtime.
//
//go:embed prologue.ps
var prologueText string
