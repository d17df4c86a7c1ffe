// Package barcode canonicalizes scanned or typed item codes to the fixed
// 13-digit key the catalog and record store are keyed by.
package barcode

import "strings"

// KeyWidth is the width of a canonical item code key.
const KeyWidth = 13

// EmptyKey is what Normalize returns for input holding no digits. Callers
// must treat it as "no code supplied" and reject before lookup.
const EmptyKey = "0000000000000"

// Normalize canonicalizes a raw barcode to a 13-digit key: non-digits are
// stripped, the trailing check digit is dropped from 12-digit (UPC-A) and
// 14-digit (GTIN-14) inputs, and the result is left-padded with zeros.
// The same product scans to the same key regardless of symbology.
func Normalize(raw string) string {
	digits := stripNonDigits(raw)

	if l := len(digits); l == 12 || l == 14 {
		digits = digits[:l-1]
	}

	if len(digits) >= KeyWidth {
		return digits[len(digits)-KeyWidth:]
	}
	return strings.Repeat("0", KeyWidth-len(digits)) + digits
}

// Compact strips non-digits and leading zeros. Display use only; it must
// never key the catalog, which is built and queried with Normalize.
func Compact(raw string) string {
	return strings.TrimLeft(stripNonDigits(raw), "0")
}

func stripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
