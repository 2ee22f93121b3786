package mpt

import (
	"encoding/json"
	"testing"

	"github.com/statecommit/balance-mpt/internal/random"
	"github.com/statecommit/balance-mpt/pkg/crypto/hash"
	"github.com/statecommit/balance-mpt/pkg/io"
	"github.com/stretchr/testify/require"
)

func getTestFuncEncode(ok bool, expected Node) func(t *testing.T) {
	return func(t *testing.T) {
		bs := expected.Bytes()
		actual, err := NodeFromBytes(bs)
		if !ok {
			require.Error(t, err)
			return
		}
		require.NoError(t, err)
		require.Equal(t, expected.Type(), actual.Type())
		require.Equal(t, expected.Hash(), actual.Hash())
		require.Equal(t, 1+expected.Size(), len(bs))
		require.Equal(t, bs, actual.Bytes())
	}
}

func TestNode_Serializable(t *testing.T) {
	t.Run("Leaf", func(t *testing.T) {
		t.Run("Good", getTestFuncEncode(true, NewLeafNode(toNibbles(random.Bytes(5)), random.Bytes(123))))
		t.Run("NoKey", getTestFuncEncode(true, NewLeafNode(nil, random.Bytes(3))))
		t.Run("Empty", getTestFuncEncode(true, NewEmptyLeaf()))
		t.Run("BigValue", getTestFuncEncode(false, NewLeafNode([]byte{1}, random.Bytes(MaxValueLength+1))))
		t.Run("NotNibbles", getTestFuncEncode(false, NewLeafNode([]byte{0x10}, []byte{1})))
		t.Run("DeletedValue", getTestFuncEncode(false, NewLeafNode([]byte{1}, nil)))
	})

	t.Run("Extension", func(t *testing.T) {
		t.Run("Good", getTestFuncEncode(true,
			NewExtensionNode(toNibbles(random.Bytes(21)), NewLeafNode([]byte{1}, random.Bytes(10)))))
		t.Run("BigKey", getTestFuncEncode(false,
			NewExtensionNode(make([]byte, maxPathLength+1), NewLeafNode(nil, random.Bytes(10)))))
		t.Run("EmptyKey", getTestFuncEncode(false,
			NewExtensionNode(nil, NewLeafNode(nil, random.Bytes(10)))))
	})

	t.Run("Branch", func(t *testing.T) {
		var children [childrenCount]Node
		children[0] = NewLeafNode([]byte{1, 2}, random.Bytes(10))
		children[7] = NewExtensionNode([]byte{3}, newTestBranch())
		children[lastChild] = NewLeafNode([]byte{4, 5}, random.Bytes(10))
		t.Run("Good", getTestFuncEncode(true, NewBranchNode(children)))
	})

	t.Run("InvalidType", func(t *testing.T) {
		_, err := NodeFromBytes([]byte{0x02})
		require.Error(t, err)
		_, err = NodeFromBytes([]byte{0x42, 0x00})
		require.Error(t, err)
	})

	t.Run("TrailingData", func(t *testing.T) {
		bs := NewLeafNode([]byte{1}, []byte{2}).Bytes()
		_, err := NodeFromBytes(append(bs, 0))
		require.ErrorIs(t, err, io.ErrTrailingData)
	})

	t.Run("Truncated", func(t *testing.T) {
		bs := NewBranchNode(newTestBranch().children).Bytes()
		_, err := NodeFromBytes(bs[:len(bs)-1])
		require.Error(t, err)
	})

	t.Run("NodeObject", func(t *testing.T) {
		l := NewLeafNode([]byte{1, 2}, []byte("42"))
		w := io.NewBufBinWriter()
		NodeObject{l}.EncodeBinary(w.BinWriter)
		require.NoError(t, w.Err)

		var actual NodeObject
		r := io.NewBinReaderFromBuf(w.Bytes())
		actual.DecodeBinary(r)
		require.NoError(t, r.Err)
		require.Equal(t, l.Hash(), actual.Hash())
	})
}

const lastChild = childrenCount - 1

func newTestBranch() *BranchNode {
	var children [childrenCount]Node
	children[1] = NewLeafNode([]byte{1}, []byte("1"))
	children[2] = NewLeafNode([]byte{2}, []byte("2"))
	return NewBranchNode(children)
}

func TestNode_Hash(t *testing.T) {
	t.Run("Leaf", func(t *testing.T) {
		l := NewLeafNode([]byte{1, 2}, []byte("100"))
		require.Equal(t, hash.Keccak256([]byte{1, 2, '1', '0', '0'}), l.Hash())
		require.Equal(t, hash.Empty, NewEmptyLeaf().Hash())
	})
	t.Run("Extension", func(t *testing.T) {
		b := newTestBranch()
		e := NewExtensionNode([]byte{3, 4}, b)
		h := b.Hash()
		require.Equal(t, hash.Keccak256([]byte{3, 4}, h[:]), e.Hash())
	})
	t.Run("Branch", func(t *testing.T) {
		b := newTestBranch()
		h1, h2 := b.children[1].Hash(), b.children[2].Hash()
		acc := hash.Empty
		acc = hash.Keccak256(acc[:], h1[:])
		acc = hash.Keccak256(acc[:], h2[:])
		require.Equal(t, acc, b.Hash())

		var empty [childrenCount]Node
		require.Equal(t, hash.Empty, NewBranchNode(empty).Hash())
	})
	t.Run("BranchSlotsNotCommitted", func(t *testing.T) {
		a, b := NewLeafNode([]byte{1}, []byte("1")), NewLeafNode([]byte{2}, []byte("2"))
		var low, high [childrenCount]Node
		low[0], low[1] = a, b
		high[7], high[lastChild] = a, b
		require.Equal(t, NewBranchNode(low).Hash(), NewBranchNode(high).Hash())

		// Child order still matters.
		high[7], high[lastChild] = b, a
		require.NotEqual(t, NewBranchNode(low).Hash(), NewBranchNode(high).Hash())
	})
	t.Run("Deterministic", func(t *testing.T) {
		key, value := toNibbles(random.Bytes(4)), random.Bytes(8)
		require.Equal(t, NewLeafNode(key, value).Hash(), NewLeafNode(key, value).Hash())

		changed := copySlice(value)
		changed[3] ^= 1
		require.NotEqual(t, NewLeafNode(key, value).Hash(), NewLeafNode(key, changed).Hash())
	})
	t.Run("Immutable", func(t *testing.T) {
		key, value := []byte{1, 2}, []byte("100")
		l := NewLeafNode(key, value)
		h := l.Hash()
		key[0], value[0] = 5, '5'
		l.Key()[1] = 7
		l.Value()[1] = '7'
		require.Equal(t, h, NewLeafNode([]byte{1, 2}, []byte("100")).Hash())
		require.Equal(t, []byte{1, 2}, l.Key())
		require.Equal(t, []byte("100"), l.Value())
	})
}

func TestNode_JSON(t *testing.T) {
	l := NewLeafNode([]byte{0xa, 0xb}, []byte{0x01, 0x02})
	e := NewExtensionNode([]byte{1}, newTestBranch())

	data, err := json.Marshal(NodeObject{e})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	require.Equal(t, "1", m["key"])
	require.Equal(t, "0x"+e.Hash().StringBE(), m["hash"])
	next, ok := m["next"].(map[string]any)
	require.True(t, ok)
	children, ok := next["children"].([]any)
	require.True(t, ok)
	require.Equal(t, childrenCount, len(children))
	require.Nil(t, children[0])
	require.NotNil(t, children[1])

	data, err = json.Marshal(l)
	require.NoError(t, err)
	require.JSONEq(t, `{"hash":"0x`+l.Hash().StringBE()+`","key":"ab","value":"0102"}`, string(data))
}

func TestNodeType_String(t *testing.T) {
	require.Equal(t, "branch", BranchT.String())
	require.Equal(t, "extension", ExtensionT.String())
	require.Equal(t, "leaf", LeafT.String())
	require.Equal(t, "unknown(2)", NodeType(2).String())
}
