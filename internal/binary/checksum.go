package binary

// DataSum computes the FITS 32-bit ones' complement checksum of data, the
// value recorded in the DATASUM keyword. The data is interpreted as a
// sequence of big-endian 32-bit words; a trailing partial word is zero
// padded.
func DataSum(data []byte) uint32 {
	return accumulate(0, data)
}

// AddSum combines two ones' complement sums, as when summing a header and
// its data unit separately.
func AddSum(a, b uint32) uint32 {
	sum := uint64(a) + uint64(b)
	for sum>>32 != 0 {
		sum = (sum & 0xFFFFFFFF) + (sum >> 32)
	}
	return uint32(sum)
}

func accumulate(seed uint32, data []byte) uint32 {
	// hi and lo hold 16-bit halves so carries never overflow uint64.
	hi := uint64(seed >> 16)
	lo := uint64(seed & 0xFFFF)

	n := len(data) / 4 * 4
	for i := 0; i < n; i += 4 {
		hi += uint64(data[i])<<8 | uint64(data[i+1])
		lo += uint64(data[i+2])<<8 | uint64(data[i+3])
	}
	if rest := len(data) - n; rest > 0 {
		var word [4]byte
		copy(word[:], data[n:])
		hi += uint64(word[0])<<8 | uint64(word[1])
		lo += uint64(word[2])<<8 | uint64(word[3])
	}

	for {
		hicarry := hi >> 16
		locarry := lo >> 16
		if hicarry == 0 && locarry == 0 {
			break
		}
		hi = (hi & 0xFFFF) + locarry
		lo = (lo & 0xFFFF) + hicarry
	}
	return uint32(hi<<16 | lo)
}
