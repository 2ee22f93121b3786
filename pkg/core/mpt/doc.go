/*
Package mpt implements a Merkle Patricia trie mapping hex addresses to values.

The trie is persistent: nodes are never modified after creation, every Put
or Delete builds new nodes along the touched path and shares the rest with
the previous version. Node hashes are computed on creation, so the root hash
is always available and old Snapshots stay readable while the trie changes.

Leaf hash is H(key || value), extension hash is H(key || H(next)) and branch
hash is a fold over its non-empty children in slot order starting from
H(""), where keys are nibble paths with one byte per nibble and H is
Keccak-256. There are no proofs, Verify only consults the local leaf index.
*/
package mpt
