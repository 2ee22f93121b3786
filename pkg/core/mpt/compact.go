package mpt

import (
	"errors"
	"fmt"
)

// ErrCorruptStructure means the trie violates its structural invariants. It
// signals a bug in the trie code, not a user error.
var ErrCorruptStructure = errors.New("corrupt trie structure")

// compactBranch restores canonical shape of a branch that has possibly lost
// a child: an empty branch disappears, a branch with a single child is merged
// with it. prefix is the path from the root to b.
func (t *Trie) compactBranch(prefix []byte, b *BranchNode) Node {
	var count, index int
	for i := range b.children {
		if b.children[i] != nil {
			index = i
			count++
		}
	}
	switch count {
	case 0:
		return nil
	case 1:
		return t.compactExtension(prefix, []byte{byte(index)}, b.children[index])
	default:
		return b
	}
}

// compactExtension returns the canonical node for the given key leading to
// the next node: a leaf absorbs the key, an extension merges with it and a
// branch gets wrapped into an extension.
func (t *Trie) compactExtension(prefix []byte, key []byte, next Node) Node {
	switch n := next.(type) {
	case nil:
		return nil
	case *LeafNode:
		l := NewLeafNode(concat(key, n.key), n.value)
		t.reindex(concat(prefix, l.key), l)
		return l
	case *ExtensionNode:
		return NewExtensionNode(concat(key, n.key), n.next)
	case *BranchNode:
		return NewExtensionNode(key, n)
	default:
		panic(fmt.Errorf("%w: invalid MPT node type %T", ErrCorruptStructure, next))
	}
}

// checkRoot performs cheap sanity checks of the trie root.
func checkRoot(r Node) error {
	switch n := r.(type) {
	case *BranchNode:
		if n.Count() < 2 {
			return fmt.Errorf("%w: root branch has %d children", ErrCorruptStructure, n.Count())
		}
	case *ExtensionNode:
		if _, ok := n.next.(*BranchNode); !ok {
			return fmt.Errorf("%w: root extension points to %s", ErrCorruptStructure, n.next.Type())
		}
	}
	return nil
}

// Validate checks that every node of t is in canonical form:
//   - every branch has at least 2 children;
//   - every extension has a non-empty key and leads to a branch;
//   - only the root can be an empty leaf;
//   - all keys have the same length.
func (t *Trie) Validate() error {
	if l, ok := t.root.(*LeafNode); ok && l.IsEmpty() {
		if len(l.key) != 0 || len(t.index) != 0 {
			return fmt.Errorf("%w: malformed empty trie", ErrCorruptStructure)
		}
		return nil
	}
	var leaves int
	err := validate(t.root, 0, t.keyLen, &leaves)
	if err != nil {
		return err
	}
	if leaves != len(t.index) {
		return fmt.Errorf("%w: %d leaves, %d index entries", ErrCorruptStructure, leaves, len(t.index))
	}
	return nil
}

func validate(curr Node, depth int, keyLen int, leaves *int) error {
	switch n := curr.(type) {
	case *LeafNode:
		if n.IsEmpty() {
			return fmt.Errorf("%w: empty leaf at depth %d", ErrCorruptStructure, depth)
		}
		if depth+len(n.key) != keyLen {
			return fmt.Errorf("%w: leaf key length %d at depth %d", ErrCorruptStructure, len(n.key), depth)
		}
		*leaves++
		return nil
	case *ExtensionNode:
		if len(n.key) == 0 {
			return fmt.Errorf("%w: empty extension key at depth %d", ErrCorruptStructure, depth)
		}
		if _, ok := n.next.(*BranchNode); !ok {
			return fmt.Errorf("%w: extension at depth %d points to %s", ErrCorruptStructure, depth, n.next.Type())
		}
		return validate(n.next, depth+len(n.key), keyLen, leaves)
	case *BranchNode:
		if n.Count() < 2 {
			return fmt.Errorf("%w: branch at depth %d has %d children", ErrCorruptStructure, depth, n.Count())
		}
		for i := range n.children {
			if n.children[i] == nil {
				continue
			}
			if err := validate(n.children[i], depth+1, keyLen, leaves); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: invalid MPT node type %T", ErrCorruptStructure, curr)
	}
}
