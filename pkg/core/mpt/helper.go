package mpt

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const (
	// MaxKeyLength is the max length of the key (address) to put in the
	// trie before transforming to nibbles.
	MaxKeyLength = 64

	// maxPathLength is the max length of the nibble path.
	maxPathLength = MaxKeyLength * 2

	// MaxValueLength is the max length of a leaf node value.
	MaxValueLength = 1 << 16
)

// ErrInvalidKeyFormat is returned for keys that are not even-length hex strings
// of a suitable size.
var ErrInvalidKeyFormat = errors.New("invalid key format")

// NormalizeAddress returns the canonical form of the address: lower-case hex
// without "0x" prefix. The address must be a non-empty even-length hex string,
// optionally prefixed with "0x" or "0X".
func NormalizeAddress(address string) (string, error) {
	s := address
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	switch {
	case len(s) == 0:
		return "", fmt.Errorf("%w: empty address %q", ErrInvalidKeyFormat, address)
	case len(s)%2 != 0:
		return "", fmt.Errorf("%w: odd length address %q", ErrInvalidKeyFormat, address)
	case len(s) > MaxKeyLength*2:
		return "", fmt.Errorf("%w: address is too long (%d)", ErrInvalidKeyFormat, len(s)/2)
	}
	for i := 0; i < len(s); i++ {
		if fromHexChar(s[i]) > 0x0f {
			return "", fmt.Errorf("%w: non-hex character %q at %d", ErrInvalidKeyFormat, s[i], i)
		}
	}
	return strings.ToLower(s), nil
}

// AddressToNibbles converts the given address to the trie path. Every byte
// of the address is split into the high nibble followed by the low nibble.
func AddressToNibbles(address string) ([]byte, error) {
	addr, err := NormalizeAddress(address)
	if err != nil {
		return nil, err
	}
	key, err := hex.DecodeString(addr)
	if err != nil { // Can't happen after normalization.
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyFormat, err)
	}
	return toNibbles(key), nil
}

// nibblesToAddress is the inverse of AddressToNibbles for canonical addresses.
func nibblesToAddress(path []byte) string {
	return hex.EncodeToString(fromNibbles(path))
}

// fromHexChar returns the value of the hex digit or 0xff if c is not one.
func fromHexChar(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10
	}
	return 0xff
}

// toNibbles mangles the path by splitting every byte into 2 containing low- and high- 4-byte part.
func toNibbles(path []byte) []byte {
	result := make([]byte, len(path)*2)
	for i := range path {
		result[i*2] = path[i] >> 4
		result[i*2+1] = path[i] & 0x0F
	}
	return result
}

// fromNibbles performs an operation opposite to toNibbles and runs no path
// validity checks.
func fromNibbles(path []byte) []byte {
	result := make([]byte, len(path)/2)
	for i := range result {
		result[i] = path[2*i]<<4 + path[2*i+1]
	}
	return result
}

// nibblesToHex renders the path as a string with one hex digit per nibble.
func nibblesToHex(path []byte) string {
	const digits = "0123456789abcdef"
	b := make([]byte, len(path))
	for i := range path {
		b[i] = digits[path[i]&0x0f]
	}
	return string(b)
}

// isNibblePath checks that every element of the path is a valid nibble.
func isNibblePath(path []byte) bool {
	for _, b := range path {
		if b > 0x0f {
			return false
		}
	}
	return true
}

// lcp returns the longest common prefix of a and b.
// Note: it does no allocations.
func lcp(a, b []byte) []byte {
	if len(a) < len(b) {
		return lcp(b, a)
	}

	var i int
	for i = 0; i < len(b); i++ {
		if a[i] != b[i] {
			break
		}
	}

	return a[:i]
}

// splitPath returns the first nibble of the path and the rest of it.
func splitPath(path []byte) (byte, []byte) {
	return path[0], path[1:]
}

// concat returns a freshly allocated concatenation of the given paths.
func concat(paths ...[]byte) []byte {
	var n int
	for _, p := range paths {
		n += len(p)
	}
	res := make([]byte, 0, n)
	for _, p := range paths {
		res = append(res, p...)
	}
	return res
}

func copySlice(a []byte) []byte {
	if a == nil {
		return nil
	}
	b := make([]byte, len(a))
	copy(b, a)
	return b
}
