// Package utxo maintains an in-memory index of unspent transaction
// outputs, used to resolve each transaction input to the output it
// spends as a tx stream is consumed.
package utxo

import (
	"fmt"

	"chainwalk/internal/chain"
	"chainwalk/internal/logging"
)

var log = logging.For("utxo")

// OutputInfo is what the index keeps per unspent output.
type OutputInfo struct {
	Value       int64
	BlockHeight int
	Script      []byte // nil unless the index was configured to retain scripts
}

// UnknownOutputError reports that an input referenced an output the index
// has no record of — either pruned (already spent), never seen (data
// gap), or a corrupt reference.
type UnknownOutputError struct {
	Txid chain.Hash
	Vout uint32
}

func (e *UnknownOutputError) Error() string {
	return fmt.Sprintf("utxo: unknown output %s:%d", e.Txid, e.Vout)
}

// key12 and key36 are the two supported map key widths: an 8-byte txid
// prefix (the default — safe in practice, since no two distinct
// transactions observed in the wild have shared an 8-byte prefix) or the
// full 32-byte txid, each paired with a 4-byte output index. Using a
// smaller key type genuinely shrinks the index's memory footprint, not
// just the bytes compared.
type key12 [12]byte
type key36 [36]byte

// Index is an in-memory unspent-output set.
type Index struct {
	prefixBytes    int // 8 or 32
	includeScripts bool

	byPrefix map[key12]OutputInfo
	byFull   map[key36]OutputInfo
}

// Config controls an Index's memory/precision trade-off.
type Config struct {
	// PrefixBytes is how many leading txid bytes are used as the map key:
	// 8 (default) or 32 (full txid, safer, more memory).
	PrefixBytes int
	// IncludeScripts keeps each output's script alongside its value, for
	// callers that need to inspect script types of spent outputs.
	IncludeScripts bool
}

// NewIndex returns an empty index.
func NewIndex(cfg Config) *Index {
	prefix := cfg.PrefixBytes
	if prefix == 0 {
		prefix = 8
	}
	idx := &Index{prefixBytes: prefix, includeScripts: cfg.IncludeScripts}
	if prefix == 32 {
		idx.byFull = make(map[key36]OutputInfo)
	} else {
		idx.byPrefix = make(map[key12]OutputInfo)
	}
	return idx
}

func key12From(txid chain.Hash, vout uint32) key12 {
	var k key12
	copy(k[0:8], txid[:8])
	putUint32(k[8:12], vout)
	return k
}

func key36From(txid chain.Hash, vout uint32) key36 {
	var k key36
	copy(k[0:32], txid[:])
	putUint32(k[32:36], vout)
	return k
}

func putUint32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

// Insert records a new unspent output. A duplicate insertion (the same
// txid:vout already present) overwrites the old entry; this is logged as
// a warning rather than treated as an error, since it only indicates a
// pathological but not corrupt input (e.g. a duplicate coinbase before
// BIP34).
func (idx *Index) Insert(txid chain.Hash, vout uint32, info OutputInfo) {
	if !idx.includeScripts {
		info.Script = nil
	}
	if idx.prefixBytes == 32 {
		k := key36From(txid, vout)
		if _, exists := idx.byFull[k]; exists {
			log.Warn().Str("txid", txid.String()).Uint32("vout", vout).Msg("overwriting existing UTXO entry")
		}
		idx.byFull[k] = info
		return
	}
	k := key12From(txid, vout)
	if _, exists := idx.byPrefix[k]; exists {
		log.Warn().Str("txid", txid.String()).Uint32("vout", vout).Msg("overwriting existing UTXO entry")
	}
	idx.byPrefix[k] = info
}

// Remove deletes and returns the output at txid:vout, or an
// UnknownOutputError if not present.
func (idx *Index) Remove(txid chain.Hash, vout uint32) (OutputInfo, error) {
	if idx.prefixBytes == 32 {
		k := key36From(txid, vout)
		info, ok := idx.byFull[k]
		if !ok {
			return OutputInfo{}, &UnknownOutputError{Txid: txid, Vout: vout}
		}
		delete(idx.byFull, k)
		return info, nil
	}
	k := key12From(txid, vout)
	info, ok := idx.byPrefix[k]
	if !ok {
		return OutputInfo{}, &UnknownOutputError{Txid: txid, Vout: vout}
	}
	delete(idx.byPrefix, k)
	return info, nil
}

// Lookup returns the output at txid:vout without removing it, or an
// UnknownOutputError if not present.
func (idx *Index) Lookup(txid chain.Hash, vout uint32) (OutputInfo, error) {
	if idx.prefixBytes == 32 {
		k := key36From(txid, vout)
		info, ok := idx.byFull[k]
		if !ok {
			return OutputInfo{}, &UnknownOutputError{Txid: txid, Vout: vout}
		}
		return info, nil
	}
	k := key12From(txid, vout)
	info, ok := idx.byPrefix[k]
	if !ok {
		return OutputInfo{}, &UnknownOutputError{Txid: txid, Vout: vout}
	}
	return info, nil
}

// Len is the number of unspent outputs currently tracked.
func (idx *Index) Len() int {
	if idx.prefixBytes == 32 {
		return len(idx.byFull)
	}
	return len(idx.byPrefix)
}
