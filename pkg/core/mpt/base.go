package mpt

import (
	"github.com/statecommit/balance-mpt/pkg/util"
)

// BaseNode holds the digest every node type needs. The hash is computed once
// when the node is built and never changes after that, a modified node is a
// new node.
type BaseNode struct {
	hash util.Uint256
}

// Hash returns the digest of the node.
func (b *BaseNode) Hash() util.Uint256 {
	return b.hash
}
