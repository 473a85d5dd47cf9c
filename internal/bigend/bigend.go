// Package bigend implements the minimal big-endian unsigned integer encoding
// used by KSI TLV elements that carry an integer-typed payload. Unlike a
// variable-length quantity, there is no continuation bit: the encoded length
// is implied entirely by the value, and a decoder must be told the number of
// available bytes up front.
package bigend

// Length returns the number of bytes needed to minimally encode n as a
// big-endian unsigned integer. Length(0) is 0: the KSI wire format represents
// zero as an empty payload.
func Length(n uint64) int {
	l := 0
	for v := n; v > 0; v >>= 8 {
		l++
	}
	return l
}

// AppendMinimal appends the minimal big-endian encoding of n to dst and
// returns the extended slice. The appended run is empty for n == 0.
func AppendMinimal(dst []byte, n uint64) []byte {
	l := Length(n)
	for i := l - 1; i >= 0; i-- {
		dst = append(dst, byte(n>>(uint(i)*8)))
	}
	return dst
}

// Decode interprets b as a big-endian unsigned integer. Decode does not
// require b to be minimally encoded; it is used by diagnostics and tests that
// need to recover the numeric value behind an integer-view payload.
//
// Decode panics if len(b) > 8, since the result would not fit in a uint64.
func Decode(b []byte) uint64 {
	if len(b) > 8 {
		panic("bigend: value too large for uint64")
	}
	var n uint64
	for _, c := range b {
		n = n<<8 | uint64(c)
	}
	return n
}
