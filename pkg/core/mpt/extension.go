package mpt

import (
	"encoding/json"
	"errors"

	"github.com/statecommit/balance-mpt/pkg/crypto/hash"
	"github.com/statecommit/balance-mpt/pkg/io"
)

// ExtensionNode represents an MPT's extension node. It compacts a run of
// nibbles shared by every key below it into a single edge.
type ExtensionNode struct {
	BaseNode
	key  []byte
	next Node
}

var _ Node = (*ExtensionNode)(nil)

// NewExtensionNode returns an extension node with the specified key and the next node.
// Note: since it is a part of a Trie, the key must be mangled, i.e. must contain only bytes with high half = 0.
func NewExtensionNode(key []byte, next Node) *ExtensionNode {
	e := &ExtensionNode{
		key:  copySlice(key),
		next: next,
	}
	e.updateHash()
	return e
}

func (e *ExtensionNode) updateHash() {
	h := e.next.Hash()
	e.hash = hash.Keccak256(e.key, h[:])
}

// Key returns a copy of the shared nibble path.
func (e *ExtensionNode) Key() []byte {
	return copySlice(e.key)
}

// Next returns the child node.
func (e *ExtensionNode) Next() Node {
	return e.next
}

// Type implements Node interface.
func (e *ExtensionNode) Type() NodeType { return ExtensionT }

// Size implements Node interface.
func (e *ExtensionNode) Size() int {
	return io.GetVarBytesSize(e.key) + 1 + e.next.Size()
}

// Bytes implements Node interface.
func (e *ExtensionNode) Bytes() []byte {
	return toBytes(e)
}

// DecodeBinary implements io.Serializable.
func (e *ExtensionNode) DecodeBinary(r *io.BinReader) {
	key := r.ReadVarBytes(maxPathLength)
	if r.Err != nil {
		return
	}
	if len(key) == 0 || !isNibblePath(key) {
		r.Err = errors.New("invalid extension node key")
		return
	}
	next := DecodeNodeWithType(r)
	if r.Err != nil {
		return
	}
	e.key = key
	e.next = next
	e.updateHash()
}

// EncodeBinary implements io.Serializable.
func (e *ExtensionNode) EncodeBinary(w *io.BinWriter) {
	w.WriteVarBytes(e.key)
	encodeNodeWithType(e.next, w)
}

// MarshalJSON implements json.Marshaler.
func (e *ExtensionNode) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"hash": e.hash,
		"key":  nibblesToHex(e.key),
		"next": e.next,
	})
}
