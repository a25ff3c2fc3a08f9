// Package bytesutil contains the byte-slice helpers shared across the light
// client packages.
package bytesutil

import "encoding/hex"

// ToBytes32 is a convenience method for converting a byte slice to a fixed
// 32-byte array. Input longer than 32 bytes is truncated.
func ToBytes32(x []byte) [32]byte {
	var y [32]byte
	copy(y[:], x)
	return y
}

// SafeCopyBytes returns a copy of the input, or nil for nil input.
func SafeCopyBytes(cp []byte) []byte {
	if cp == nil {
		return nil
	}
	copied := make([]byte, len(cp))
	copy(copied, cp)
	return copied
}

// Trunc truncates a byte slice to its hex-encoded first six bytes for
// compact log output.
func Trunc(x []byte) string {
	str := hex.EncodeToString(x)
	if len(str) > 12 {
		return str[:12] + "..."
	}
	return str
}
