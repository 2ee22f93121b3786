package util

import (
	"encoding/hex"
)

// Uint256Size is the size of Uint256 in bytes.
const Uint256Size = 32

// Uint256 is a 32 byte long unsigned integer. It's used to represent
// trie node and root digests which are kept in the big-endian (hash
// output) byte order.
type Uint256 [Uint256Size]uint8

// String implements the stringer interface.
func (u Uint256) String() string {
	return u.StringBE()
}

// StringBE produces string representation of Uint256 with BE byte order.
func (u Uint256) StringBE() string {
	return hex.EncodeToString(u[:])
}

// MarshalJSON implements the json marshaller interface.
func (u Uint256) MarshalJSON() ([]byte, error) {
	r := make([]byte, 3+Uint256Size*2+1)
	copy(r, `"0x`)
	r[len(r)-1] = '"'
	hex.Encode(r[3:], u[:])
	return r, nil
}
