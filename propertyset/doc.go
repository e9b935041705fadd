// Package propertyset provides named collections of typed values used as
// FITS header metadata.
//
// A PropertySet holds any number of values per name, all of one type.
// A PropertyList additionally remembers the order in which names were
// first added and a comment per name, so that a header read into it can
// be written back in the same order.
package propertyset
