package mpt

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/statecommit/balance-mpt/pkg/util"
)

// Trie is an MPT trie storing address-value pairs. It also keeps an index of
// leaves by address for fast local verification. Trie is not safe for
// concurrent use, but a Snapshot taken from it is.
type Trie struct {
	root Node
	// index maps canonical address to the leaf holding its value.
	index map[string]*LeafNode
	// keyLen is the nibble length of all keys stored, 0 for an empty trie.
	keyLen int
}

var (
	// ErrNotFound is returned when requested trie item is missing.
	ErrNotFound = errors.New("item not found")
	// ErrValueTooBig is returned for values exceeding MaxValueLength.
	ErrValueTooBig = errors.New("value is too big")
)

// NewTrie returns an empty MPT trie.
func NewTrie() *Trie {
	return &Trie{
		root:  NewEmptyLeaf(),
		index: make(map[string]*LeafNode),
	}
}

// parseKey checks address format and returns its canonical form along
// with the nibble path. Keys must have the same length as the ones already
// stored.
func (t *Trie) parseKey(address string) (string, []byte, error) {
	addr, err := NormalizeAddress(address)
	if err != nil {
		return "", nil, err
	}
	path, err := AddressToNibbles(addr)
	if err != nil {
		return "", nil, err
	}
	if t.keyLen != 0 && len(path) != t.keyLen {
		return "", nil, fmt.Errorf("%w: key length %d differs from trie key length %d",
			ErrInvalidKeyFormat, len(path)/2, t.keyLen/2)
	}
	return addr, path, nil
}

// Put puts address-value pair in t. An empty value deletes the address.
// Putting the value already stored doesn't change anything.
func (t *Trie) Put(address string, value []byte) error {
	if len(value) > MaxValueLength {
		return fmt.Errorf("%w: %d bytes", ErrValueTooBig, len(value))
	}
	if len(value) == 0 {
		return t.Delete(address)
	}
	addr, path, err := t.parseKey(address)
	if err != nil {
		return err
	}
	r, leaf := t.putIntoNode(t.root, nil, path, value)
	t.setRoot(r)
	t.keyLen = len(path)
	t.index[addr] = leaf
	return nil
}

// putIntoNode puts value at the path in a subtrie rooted in curr, prefix is
// the path from the root to curr. It returns the new subtrie root and the
// leaf now holding the value.
func (t *Trie) putIntoNode(curr Node, prefix, path, value []byte) (Node, *LeafNode) {
	switch n := curr.(type) {
	case *LeafNode:
		return t.putIntoLeaf(n, prefix, path, value)
	case *BranchNode:
		return t.putIntoBranch(n, prefix, path, value)
	case *ExtensionNode:
		return t.putIntoExtension(n, prefix, path, value)
	default:
		panic(fmt.Errorf("%w: invalid MPT node type %T", ErrCorruptStructure, curr))
	}
}

// putIntoLeaf puts value to trie if current node is a Leaf.
func (t *Trie) putIntoLeaf(curr *LeafNode, prefix, path, value []byte) (Node, *LeafNode) {
	if curr.IsEmpty() {
		l := NewLeafNode(path, value)
		return l, l
	}
	if bytes.Equal(curr.key, path) {
		if bytes.Equal(curr.value, value) {
			return curr, curr
		}
		l := NewLeafNode(path, value)
		return l, l
	}

	pref := lcp(curr.key, path)
	lp := len(pref)
	if lp == len(curr.key) || lp == len(path) {
		panic(fmt.Errorf("%w: key %s is a prefix of another key", ErrCorruptStructure,
			nibblesToHex(concat(prefix, pref))))
	}
	// The old leaf moves one level down, so its key gets shorter.
	moved := NewLeafNode(curr.key[lp+1:], curr.value)
	t.reindex(concat(prefix, curr.key), moved)

	var children [childrenCount]Node
	children[curr.key[lp]] = moved
	l := NewLeafNode(path[lp+1:], value)
	children[path[lp]] = l
	b := NewBranchNode(children)
	if lp > 0 {
		return NewExtensionNode(pref, b), l
	}
	return b, l
}

// putIntoBranch puts value to trie if current node is a Branch.
func (t *Trie) putIntoBranch(curr *BranchNode, prefix, path, value []byte) (Node, *LeafNode) {
	i, rest := splitPath(path)
	child := curr.children[i]
	if child == nil {
		child = NewEmptyLeaf()
	}
	r, l := t.putIntoNode(child, concat(prefix, []byte{i}), rest, value)
	if r == child {
		return curr, l
	}
	return t.compactBranch(prefix, curr.withChild(i, r)), l
}

// putIntoExtension puts value to trie if current node is an Extension.
func (t *Trie) putIntoExtension(curr *ExtensionNode, prefix, path, value []byte) (Node, *LeafNode) {
	if bytes.HasPrefix(path, curr.key) {
		r, l := t.putIntoNode(curr.next, concat(prefix, curr.key), path[len(curr.key):], value)
		if r == curr.next {
			return curr, l
		}
		return NewExtensionNode(curr.key, r), l
	}

	pref := lcp(curr.key, path)
	lp := len(pref)
	keyTail := curr.key[lp:]
	pathTail := path[lp:]

	var children [childrenCount]Node
	children[keyTail[0]] = newSubTrie(keyTail[1:], curr.next)

	i, pathTail := splitPath(pathTail)
	l := NewLeafNode(pathTail, value)
	children[i] = l

	b := NewBranchNode(children)
	if lp > 0 {
		return NewExtensionNode(pref, b), l
	}
	return b, l
}

// newSubTrie creates a new trie containing node at provided path.
func newSubTrie(path []byte, val Node) Node {
	if len(path) == 0 {
		return val
	}
	return NewExtensionNode(path, val)
}

// Delete removes address from trie.
// It returns no error on missing key.
func (t *Trie) Delete(address string) error {
	addr, path, err := t.parseKey(address)
	if err != nil {
		return err
	}
	r, err := t.deleteFromNode(t.root, nil, path)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	t.setRoot(r)
	delete(t.index, addr)
	return nil
}

func (t *Trie) deleteFromNode(curr Node, prefix, path []byte) (Node, error) {
	switch n := curr.(type) {
	case *LeafNode:
		if !n.IsEmpty() && bytes.Equal(n.key, path) {
			return nil, nil
		}
		return nil, ErrNotFound
	case *BranchNode:
		return t.deleteFromBranch(n, prefix, path)
	case *ExtensionNode:
		return t.deleteFromExtension(n, prefix, path)
	default:
		panic(fmt.Errorf("%w: invalid MPT node type %T", ErrCorruptStructure, curr))
	}
}

func (t *Trie) deleteFromBranch(b *BranchNode, prefix, path []byte) (Node, error) {
	if len(path) == 0 {
		return nil, ErrNotFound
	}
	i, rest := splitPath(path)
	if b.children[i] == nil {
		return nil, ErrNotFound
	}
	r, err := t.deleteFromNode(b.children[i], concat(prefix, []byte{i}), rest)
	if err != nil {
		return nil, err
	}
	return t.compactBranch(prefix, b.withChild(i, r)), nil
}

func (t *Trie) deleteFromExtension(n *ExtensionNode, prefix, path []byte) (Node, error) {
	if !bytes.HasPrefix(path, n.key) {
		return nil, ErrNotFound
	}
	r, err := t.deleteFromNode(n.next, concat(prefix, n.key), path[len(n.key):])
	if err != nil {
		return nil, err
	}
	return t.compactExtension(prefix, n.key, r), nil
}

// setRoot replaces the root, nil means the trie is empty now.
func (t *Trie) setRoot(r Node) {
	if r == nil {
		r = NewEmptyLeaf()
	}
	if err := checkRoot(r); err != nil {
		panic(err)
	}
	if l, ok := r.(*LeafNode); ok && l.IsEmpty() {
		t.keyLen = 0
	}
	t.root = r
}

// reindex points the index entry for the key at fullPath to l.
func (t *Trie) reindex(fullPath []byte, l *LeafNode) {
	t.index[nibblesToAddress(fullPath)] = l
}

// Get returns value for the provided address in t. The value is looked up
// by walking the trie from the root, not via the index.
func (t *Trie) Get(address string) ([]byte, error) {
	return t.Snapshot().Get(address)
}

// StateRoot returns root hash of t.
func (t *Trie) StateRoot() util.Uint256 {
	return t.root.Hash()
}

// Root returns the root node of t.
func (t *Trie) Root() Node {
	return t.root
}

// Len returns the number of addresses stored in t.
func (t *Trie) Len() int {
	return len(t.index)
}

// Snapshot returns an immutable view of the current trie state.
func (t *Trie) Snapshot() Snapshot {
	return Snapshot{root: t.root}
}

// Snapshot is a read-only view of a trie state. Trie nodes are never
// modified after creation, so a Snapshot stays valid and can be read from
// any number of goroutines while the trie it was taken from changes.
type Snapshot struct {
	root Node
}

// Get returns value for the provided address in the snapshot.
func (s Snapshot) Get(address string) ([]byte, error) {
	path, err := AddressToNibbles(address)
	if err != nil {
		return nil, err
	}
	l := getLeaf(s.root, path)
	if l == nil {
		return nil, ErrNotFound
	}
	return copySlice(l.value), nil
}

// StateRoot returns the root hash of the snapshot.
func (s Snapshot) StateRoot() util.Uint256 {
	return s.root.Hash()
}

// Root returns the root node of the snapshot.
func (s Snapshot) Root() Node {
	return s.root
}

// getLeaf returns the leaf for the provided path in a subtrie rooting in
// curr or nil if there is none.
func getLeaf(curr Node, path []byte) *LeafNode {
	for {
		switch n := curr.(type) {
		case *LeafNode:
			if !n.IsEmpty() && bytes.Equal(n.key, path) {
				return n
			}
			return nil
		case *BranchNode:
			if len(path) == 0 {
				return nil
			}
			var i byte
			i, path = splitPath(path)
			curr = n.children[i]
			if curr == nil {
				return nil
			}
		case *ExtensionNode:
			if !bytes.HasPrefix(path, n.key) {
				return nil
			}
			curr, path = n.next, path[len(n.key):]
		default:
			panic(fmt.Errorf("%w: invalid MPT node type %T", ErrCorruptStructure, curr))
		}
	}
}
