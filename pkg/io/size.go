package io

// GetVarSize returns the number of bytes WriteVarUint spends on encoding
// the given length.
func GetVarSize(value int) int {
	if value < 0xFD {
		return 1 // unit8
	} else if value <= 0xFFFF {
		return 3 // byte + uint16
	}
	return 5 // byte + uint32
}

// GetVarBytesSize returns the encoded size of b written with WriteVarBytes.
func GetVarBytesSize(b []byte) int {
	return GetVarSize(len(b)) + len(b)
}
