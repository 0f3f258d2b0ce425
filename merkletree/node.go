package merkletree

import (
	"github.com/recordseal/recordseal-go/crypto/hasher"
)

// node is a vertex of the tree. Parents own their children; there are
// no upward links. A self-paired node is the left and right child of
// its parent at the same time.
type node struct {
	digest []byte
	left   *node
	right  *node
	// id is the identifier of the originating record, set on leaves only.
	id string
}

func newLeafNode(h hasher.TreeHasher, id string, encoded []byte) *node {
	return &node{
		digest: h.HashLeaf(encoded),
		id:     id,
	}
}

func newInteriorNode(h hasher.TreeHasher, left, right *node) *node {
	return &node{
		digest: h.HashInterior(left.digest, right.digest),
		left:   left,
		right:  right,
	}
}

func (n *node) isLeaf() bool {
	return n.left == nil && n.right == nil
}

func (n *node) isSelfPaired() bool {
	return n.left != nil && n.left == n.right
}
