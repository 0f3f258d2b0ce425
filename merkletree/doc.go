/*
Package merkletree implements the record hash tree and related data structures.
The tree seals an ordered sequence of records under a single apex digest,
so that any insertion, deletion, reordering or field change of a record
changes the apex, and any single record's membership can be proven
against a previously published apex.

Record Tree

The tree is a binary Merkle tree built bottom-up from one leaf per record,
in input order. A leaf's digest is H(encode(record)), where encode is the
canonical record encoding of the record package, and an interior node's
digest is H(left || right). Each level is reduced by pairing consecutive
nodes left to right. When a level has an odd number of nodes, the
trailing node is paired with itself, so the tree shape depends only on
the record count and every step of an authentication path has a sibling
digest. The tree is immutable: a changed record set is sealed by building
a new tree.

Authentication Paths

An AuthenticationPath lists, from the leaf up to the apex, the digest of
the sibling at every level and whether the path owner sits in the left or
the right slot. Verify recomputes the apex from a leaf digest and a path
alone, so a party holding only the proof and a trusted apex can check a
record's membership without the rest of the dataset.

Apex Snapshots

An ApexSnapshot is the durable trust anchor of a published build: the
apex digest, record count, tree height and dataset name, linked to the
previous snapshot of the same dataset via a hash chain and optionally
signed. Snapshots are never mutated; each publish appends a new version
to the dataset's History.
*/
package merkletree
