package core

import "unicode/utf16"

// PlacementHash folds s into the polynomial hash used for participant
// placement: h = ((h << 5) - h) + c over UTF-16 code units, where the shift
// operates on the 32-bit truncation of h and the subtraction does not wrap.
// Browsers and native clients must agree on this value bit for bit.
func PlacementHash(s string) int64 {
	var h int64
	for _, c := range utf16.Encode([]rune(s)) {
		shifted := int64(int32(uint32(h) << 5))
		h = shifted - h + int64(c)
	}
	return h
}

// HashFraction returns (|h| mod 100) / 100.
func HashFraction(h int64) float64 {
	if h < 0 {
		h = -h
	}
	return float64(h%100) / 100
}

// HashFractionShifted returns (|int32(h) >> 2| mod 100) / 100.
func HashFractionShifted(h int64) float64 {
	return HashFraction(int64(int32(uint32(h)) >> 2))
}

// CodeUnitSum adds the UTF-16 code units of s. It backs the glyph fallback
// for participants without an explicit glyph index.
func CodeUnitSum(s string) int {
	sum := 0
	for _, c := range utf16.Encode([]rune(s)) {
		sum += int(c)
	}
	return sum
}
