// Package block handles the 2880-byte record structure of FITS files.
//
// A FITS file is a sequence of Header/Data Units (HDUs). Each header is a
// run of 80-column cards terminated by END and blank padded to a multiple
// of 2880 bytes; each data unit is zero padded to the same boundary. The
// first HDU starts with the signature card "SIMPLE  =                    T".
//
// [Split] cuts a raw file image into [Unit] values and [Encode] serializes
// units back with the required padding. The size of each data unit is
// derived from BITPIX, NAXISn, PCOUNT and GCOUNT as the standard defines.
package block
