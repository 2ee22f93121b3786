package mpt

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/statecommit/balance-mpt/pkg/crypto/hash"
	"github.com/statecommit/balance-mpt/pkg/io"
)

// LeafNode represents MPT's leaf node. It keeps the rest of the path left
// after its ancestors and the value. A leaf with empty key and value is
// the empty trie.
type LeafNode struct {
	BaseNode
	key   []byte
	value []byte
}

var _ Node = (*LeafNode)(nil)

// emptyLeaf is the canonical root of an empty trie. Nodes are immutable, so
// it's shared.
var emptyLeaf = NewLeafNode(nil, nil)

// NewLeafNode returns leaf node with the specified remaining path and value.
// The key must be a nibble path.
func NewLeafNode(key, value []byte) *LeafNode {
	n := &LeafNode{key: copySlice(key), value: copySlice(value)}
	n.updateHash()
	return n
}

// NewEmptyLeaf returns the empty trie sentinel.
func NewEmptyLeaf() *LeafNode {
	return emptyLeaf
}

func (n *LeafNode) updateHash() {
	n.hash = hash.Keccak256(n.key, n.value)
}

// IsEmpty returns true if n is the empty trie sentinel (or a deleted value
// placeholder).
func (n *LeafNode) IsEmpty() bool {
	return len(n.value) == 0
}

// Key returns a copy of the remaining nibble path stored in the leaf.
func (n *LeafNode) Key() []byte {
	return copySlice(n.key)
}

// Value returns a copy of the leaf value.
func (n *LeafNode) Value() []byte {
	return copySlice(n.value)
}

// Type implements Node interface.
func (n *LeafNode) Type() NodeType { return LeafT }

// Size implements Node interface.
func (n *LeafNode) Size() int {
	return io.GetVarBytesSize(n.key) + io.GetVarBytesSize(n.value)
}

// Bytes implements Node interface.
func (n *LeafNode) Bytes() []byte {
	return toBytes(n)
}

// DecodeBinary implements io.Serializable.
func (n *LeafNode) DecodeBinary(r *io.BinReader) {
	key := r.ReadVarBytes(maxPathLength)
	value := r.ReadVarBytes(MaxValueLength)
	if r.Err != nil {
		return
	}
	if !isNibblePath(key) {
		r.Err = errors.New("leaf node key is not a nibble path")
		return
	}
	if len(key) != 0 && len(value) == 0 {
		r.Err = fmt.Errorf("leaf node with key %s has no value", nibblesToHex(key))
		return
	}
	n.key = key
	n.value = value
	n.updateHash()
}

// EncodeBinary implements io.Serializable.
func (n *LeafNode) EncodeBinary(w *io.BinWriter) {
	w.WriteVarBytes(n.key)
	w.WriteVarBytes(n.value)
}

// MarshalJSON implements json.Marshaler.
func (n *LeafNode) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"hash":  n.hash,
		"key":   nibblesToHex(n.key),
		"value": hex.EncodeToString(n.value),
	})
}
