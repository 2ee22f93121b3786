package mpt

import (
	"encoding/json"

	"github.com/statecommit/balance-mpt/pkg/crypto/hash"
	"github.com/statecommit/balance-mpt/pkg/io"
)

// childrenCount represents the number of children of a branch node, one
// per nibble value.
const childrenCount = 16

// BranchNode represents an MPT's branch node. Its hash folds child hashes
// in slot order but doesn't include slot indices, so two branches having the
// same children in different slots hash the same.
type BranchNode struct {
	BaseNode
	children [childrenCount]Node
}

var _ Node = (*BranchNode)(nil)

// NewBranchNode returns a new branch node with the given children, nil
// entries are empty slots.
func NewBranchNode(children [childrenCount]Node) *BranchNode {
	b := &BranchNode{children: children}
	b.updateHash()
	return b
}

// updateHash folds child hashes in slot order starting from the hash of
// an empty input.
func (b *BranchNode) updateHash() {
	acc := hash.Empty
	for i := range b.children {
		if b.children[i] != nil {
			h := b.children[i].Hash()
			acc = hash.Keccak256(acc[:], h[:])
		}
	}
	b.hash = acc
}

// withChild returns a copy of b with the i-th child replaced.
func (b *BranchNode) withChild(i byte, c Node) *BranchNode {
	children := b.children
	children[i] = c
	return NewBranchNode(children)
}

// Child returns the child at the given slot or nil.
func (b *BranchNode) Child(i byte) Node {
	return b.children[i]
}

// Count returns the number of non-empty slots.
func (b *BranchNode) Count() int {
	var n int
	for i := range b.children {
		if b.children[i] != nil {
			n++
		}
	}
	return n
}

// Type implements Node interface.
func (b *BranchNode) Type() NodeType { return BranchT }

// Size implements Node interface.
func (b *BranchNode) Size() int {
	sz := childrenCount
	for i := range b.children {
		if b.children[i] != nil {
			sz += 1 + b.children[i].Size()
		}
	}
	return sz
}

// Bytes implements Node interface.
func (b *BranchNode) Bytes() []byte {
	return toBytes(b)
}

// EncodeBinary implements io.Serializable.
func (b *BranchNode) EncodeBinary(w *io.BinWriter) {
	for i := 0; i < childrenCount; i++ {
		w.WriteBool(b.children[i] != nil)
		if b.children[i] != nil {
			encodeNodeWithType(b.children[i], w)
		}
	}
}

// DecodeBinary implements io.Serializable.
func (b *BranchNode) DecodeBinary(r *io.BinReader) {
	for i := 0; i < childrenCount; i++ {
		if r.ReadBool() {
			b.children[i] = DecodeNodeWithType(r)
		}
		if r.Err != nil {
			return
		}
	}
	b.updateHash()
}

// MarshalJSON implements json.Marshaler.
func (b *BranchNode) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"hash":     b.hash,
		"children": b.children,
	})
}
