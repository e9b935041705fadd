// Package card formats and parses 80-column FITS header cards.
//
// A header is a sequence of fixed-width records:
//
//	columns 1-8   keyword name, left justified, blank filled
//	columns 9-10  value indicator "= " (absent on commentary cards)
//	columns 11-80 value, optionally followed by " / comment"
//
// Keywords longer than eight characters, or containing characters outside
// the standard set, use the HIERARCH convention:
//
//	HIERARCH ESO DET CHIP = 'CCD42' / detector chip
//
// String values longer than one card use the long-string convention: every
// fragment but the last ends in '&' inside the quotes and is continued on a
// CONTINUE card.
//
//	LONGSTR = 'first part of the value&'
//	CONTINUE  'second part' / comment
//
// This package only deals in text. Header storage, keyword lookup and the
// status codes reported to callers live in package fits.
package card
