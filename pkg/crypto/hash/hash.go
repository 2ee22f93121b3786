/*
Package hash contains the digest function used to commit trie nodes.
*/
package hash

import (
	"github.com/statecommit/balance-mpt/pkg/util"
	"golang.org/x/crypto/sha3"
)

// Keccak256 hashes the concatenation of the given byte slices using the
// legacy Keccak-256 function (the one Ethereum calls keccak256).
func Keccak256(data ...[]byte) util.Uint256 {
	var h util.Uint256
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		_, _ = d.Write(b) // hash.Hash never returns an error on Write.
	}
	d.Sum(h[:0])
	return h
}

// Empty is the digest of an empty input.
var Empty = Keccak256()
