package chain

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/wire"
	"chainwalk/internal/binformat"
)

// HeaderSize is the fixed size of a Bitcoin block header.
const HeaderSize = 80

// MalformedBlockError reports that a block's raw bytes could not be
// structurally decomposed.
type MalformedBlockError struct {
	Reason string
}

func (e *MalformedBlockError) Error() string {
	return fmt.Sprintf("chain: malformed block: %s", e.Reason)
}

// Block is a lazily-parsed block: the header is decoded eagerly (it is
// small and every consumer needs it for the hash), but transactions are
// only split out of blob on demand via Txs.
//
// A Block borrows its backing bytes from whatever buffer produced it (an
// mmap'd file region, typically); it must not be retained past the
// lifetime of that buffer unless the buffer's owner says otherwise.
type Block struct {
	blob      []byte // full record: 80-byte header + tx-count varint + tx bytes
	height    int    // -1 until a stream assigns it (e.g. TopologicalStream)
	blockHash Hash
	header    wire.BlockHeader
	txsOffset int // offset into blob where the tx-count varint begins
}

// ParseBlock decodes the header of blob and locates the start of its
// transaction list. blob must be exactly the block's payload (no 8-byte
// frame header, no trailing bytes from the next block).
func ParseBlock(blob []byte) (*Block, error) {
	if len(blob) < HeaderSize {
		return nil, &MalformedBlockError{Reason: "shorter than header size"}
	}
	var hdr wire.BlockHeader
	if err := hdr.Deserialize(bytes.NewReader(blob[:HeaderSize])); err != nil {
		return nil, &MalformedBlockError{Reason: "header: " + err.Error()}
	}
	return &Block{
		blob:      blob,
		height:    -1,
		blockHash: hdr.BlockHash(),
		header:    hdr,
		txsOffset: HeaderSize,
	}, nil
}

// RawSize is the number of bytes this block occupies in its source file,
// not counting the 8-byte frame header.
func (b *Block) RawSize() int { return len(b.blob) }

// Blob returns the block's raw bytes (header + tx list).
func (b *Block) Blob() []byte { return b.blob }

// BlockHash is this block's double-SHA256 identifier.
func (b *Block) BlockHash() Hash { return b.blockHash }

// PrevBlockHash is the identifier of the block this one extends.
func (b *Block) PrevBlockHash() Hash { return Hash(b.header.PrevBlock) }

// MerkleRoot is the header's merkle-root field, taken as-is (not
// recomputed or verified against the block's transactions).
func (b *Block) MerkleRoot() Hash { return Hash(b.header.MerkleRoot) }

// Version is the block header's version field.
func (b *Block) Version() int32 { return b.header.Version }

// Timestamp is the header's timestamp field, as Bitcoin Core wrote it
// (seconds since epoch, not strictly ordered between blocks).
func (b *Block) Timestamp() uint32 { return uint32(b.header.Timestamp.Unix()) }

// Bits is the header's compact-target field.
func (b *Block) Bits() uint32 { return b.header.Bits }

// Nonce is the header's nonce field.
func (b *Block) Nonce() uint32 { return b.header.Nonce }

// Height is this block's position in the chain. It is -1 until a stream
// that establishes topology (TopologicalStream and downstream) assigns it.
func (b *Block) Height() int { return b.height }

// SetHeight assigns this block's chain height. Called by TopologicalStream
// once the block's predecessor is known.
func (b *Block) SetHeight(h int) { b.height = h }

// NumTxs is the transaction count recorded at the start of the tx list.
func (b *Block) NumTxs() (uint64, error) {
	n, _, err := binformat.ParseVarInt(b.blob[b.txsOffset:])
	if err != nil {
		return 0, &MalformedBlockError{Reason: "tx count: " + err.Error()}
	}
	return n, nil
}

// txsBlob returns the bytes following the tx-count varint: the
// concatenated raw transactions.
func (b *Block) txsBlob() ([]byte, error) {
	_, n, err := binformat.ParseVarInt(b.blob[b.txsOffset:])
	if err != nil {
		return nil, &MalformedBlockError{Reason: "tx count: " + err.Error()}
	}
	return b.blob[b.txsOffset+n:], nil
}

// Txs returns a lazy iterator over this block's transactions. includeBlob
// causes each Tx's Blob field to be populated with its raw bytes.
func (b *Block) Txs(includeBlob bool) (*BlockTxs, error) {
	numTxs, err := b.NumTxs()
	if err != nil {
		return nil, err
	}
	body, err := b.txsBlob()
	if err != nil {
		return nil, err
	}
	return &BlockTxs{block: b, body: body, numTxs: numTxs, includeBlob: includeBlob}, nil
}
