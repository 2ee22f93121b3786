package mpt

import (
	"encoding/json"
	"fmt"

	"github.com/statecommit/balance-mpt/pkg/io"
	"github.com/statecommit/balance-mpt/pkg/util"
)

// NodeType represents node type.
type NodeType byte

// Node types definitions.
const (
	BranchT    NodeType = 0x00
	ExtensionT NodeType = 0x01
	LeafT      NodeType = 0x03
)

// String implements fmt.Stringer.
func (t NodeType) String() string {
	switch t {
	case BranchT:
		return "branch"
	case ExtensionT:
		return "extension"
	case LeafT:
		return "leaf"
	default:
		return fmt.Sprintf("unknown(%d)", byte(t))
	}
}

// NodeObject represents Node together with its type.
// It is used for serialization/deserialization where type info
// is also expected.
type NodeObject struct {
	Node
}

var _ io.Serializable = (*NodeObject)(nil)

// Node represents common interface of all MPT nodes. Nodes are immutable,
// every trie modification produces new nodes along the modified path.
type Node interface {
	json.Marshaler
	Hash() util.Uint256
	Type() NodeType
	// Size returns the size of the encoded node body (without type byte).
	Size() int
	// Bytes returns the node encoded together with its type.
	Bytes() []byte
	EncodeBinary(*io.BinWriter)
}

// EncodeBinary implements io.Serializable.
func (n NodeObject) EncodeBinary(w *io.BinWriter) {
	encodeNodeWithType(n.Node, w)
}

// DecodeBinary implements io.Serializable.
func (n *NodeObject) DecodeBinary(r *io.BinReader) {
	n.Node = DecodeNodeWithType(r)
}

// MarshalJSON implements json.Marshaler.
func (n NodeObject) MarshalJSON() ([]byte, error) {
	return n.Node.MarshalJSON()
}

// encodeNodeWithType encodes node together with its type.
func encodeNodeWithType(n Node, w *io.BinWriter) {
	w.WriteB(byte(n.Type()))
	n.EncodeBinary(w)
}

// DecodeNodeWithType decodes node together with its type.
func DecodeNodeWithType(r *io.BinReader) Node {
	if r.Err != nil {
		return nil
	}
	var n interface {
		Node
		io.Serializable
	}
	switch typ := NodeType(r.ReadB()); typ {
	case BranchT:
		n = new(BranchNode)
	case ExtensionT:
		n = new(ExtensionNode)
	case LeafT:
		n = new(LeafNode)
	default:
		if r.Err == nil {
			r.Err = fmt.Errorf("invalid node type: %x", byte(typ))
		}
		return nil
	}
	n.DecodeBinary(r)
	if r.Err != nil {
		return nil
	}
	return n
}

// NodeFromBytes decodes a node serialized with Bytes. It fails on
// trailing data.
func NodeFromBytes(data []byte) (Node, error) {
	r := io.NewBinReaderFromBuf(data)
	n := DecodeNodeWithType(r)
	r.Finish()
	if r.Err != nil {
		return nil, r.Err
	}
	return n, nil
}

// toBytes is a helper for serializing node.
func toBytes(n Node) []byte {
	buf := io.NewBufBinWriter()
	encodeNodeWithType(n, buf.BinWriter)
	return buf.Bytes()
}
