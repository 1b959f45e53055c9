// Package chain holds the data model shared by every streaming stage:
// hashes, blocks, transactions, and the small position/chain bookkeeping
// types that ride alongside them.
package chain

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Hash is a 32-byte double-SHA256 digest, stored in internal (little-
// endian-as-written) byte order. Its String() form is reversed-hex, matching
// how block explorers and bitcoin-cli display block and transaction hashes.
type Hash = chainhash.Hash

// ZeroHash is the all-zero hash used as the "previous block" reference of
// the genesis block.
var ZeroHash Hash

// HashFromBytes copies b (internal byte order, must be 32 bytes) into a Hash.
func HashFromBytes(b []byte) (Hash, error) {
	return chainhash.NewHash(b)
}

// DoubleSHA256 computes the digest Bitcoin uses for block and transaction
// identifiers.
func DoubleSHA256(b []byte) Hash {
	return chainhash.DoubleHashH(b)
}
