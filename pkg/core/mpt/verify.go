package mpt

import (
	"bytes"
)

// VerifyResult is the outcome of a local value check.
type VerifyResult byte

const (
	// Absent means the address is not stored.
	Absent VerifyResult = iota
	// Mismatch means the address is stored with another value.
	Mismatch
	// Present means the address is stored with exactly the claimed value.
	Present
)

// String implements fmt.Stringer.
func (r VerifyResult) String() string {
	switch r {
	case Absent:
		return "absent"
	case Mismatch:
		return "mismatch"
	case Present:
		return "present"
	default:
		return "unknown"
	}
}

// Check compares the claimed value with the one stored for the address. It
// uses the leaf index only, so it's a local check that proves nothing about
// the state root. Malformed addresses are reported as Absent.
func (t *Trie) Check(address string, value []byte) VerifyResult {
	addr, err := NormalizeAddress(address)
	if err != nil {
		return Absent
	}
	l, ok := t.index[addr]
	if !ok {
		return Absent
	}
	if !bytes.Equal(l.value, value) {
		return Mismatch
	}
	return Present
}

// Verify returns true if the address is stored with exactly the claimed value.
func (t *Trie) Verify(address string, value []byte) bool {
	return t.Check(address, value) == Present
}
