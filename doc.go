// Package psutils implements the core data types and file-scanning
// primitives shared by the pstops and psnup commands: a DSC scanner that
// indexes a PostScript file's structural sections and page offsets, a
// page-specification grammar and evaluator, a byte-counted output writer,
// and a small dimension lexer for PostScript length literals.
//
// The imposition engine that ties these together lives in the impose
// package; the N-up layout optimiser lives in the nup package.
package psutils
