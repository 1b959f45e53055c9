package chain

import (
	"fmt"

	"chainwalk/internal/binformat"
)

// MalformedTxError reports that a transaction's raw bytes could not be
// parsed, naming the block it came from when known.
type MalformedTxError struct {
	BlockHash *Hash
	Index     int
	Err       error
}

func (e *MalformedTxError) Error() string {
	if e.BlockHash != nil {
		return fmt.Sprintf("chain: malformed tx #%d in block %s: %v", e.Index, e.BlockHash, e.Err)
	}
	return fmt.Sprintf("chain: malformed tx #%d: %v", e.Index, e.Err)
}

func (e *MalformedTxError) Unwrap() error { return e.Err }

// TxInput is one transaction input. A coinbase input is recognised by
// Coinbase being true; its SpentTxid/SpentOutputIdx/SpentOutput carry no
// meaning and are left at their zero values.
type TxInput struct {
	Coinbase       bool
	SpentTxid      Hash
	SpentOutputIdx uint32
	Script         []byte
	Sequence       uint32
	Witness        [][]byte

	// SpentOutput is filled in by a UTXO tracker (internal/utxo) as it
	// resolves this input against the outputs it has seen. Nil until then,
	// and always nil for coinbase inputs.
	SpentOutput *SpentOutputRef
}

// SpentOutputRef is what a UTXO tracker attaches to a resolved input: just
// enough about the output being spent to compute fees and track script
// reuse, without retaining the whole spending transaction.
type SpentOutputRef struct {
	Value       int64
	BlockHeight int
	Script      []byte // nil unless the tracker was configured to keep scripts
}

// TxOutput is one transaction output.
type TxOutput struct {
	Value  int64
	Script []byte
}

// Tx is a fully-parsed transaction. Blob is nil unless the iterator that
// produced it was configured to include raw bytes.
type Tx struct {
	Version    uint32
	HasWitness bool
	Inputs     []TxInput
	Outputs    []TxOutput
	Locktime   uint32
	Txid       Hash
	RawSize    int
	Blob       []byte
}

// IsCoinbase reports whether this is a block's coinbase transaction.
func (tx *Tx) IsCoinbase() bool {
	return len(tx.Inputs) > 0 && tx.Inputs[0].Coinbase
}

// TotalOutputValue sums every output's value, in satoshis.
func (tx *Tx) TotalOutputValue() int64 {
	var total int64
	for _, out := range tx.Outputs {
		total += out.Value
	}
	return total
}

// TotalInputValue sums every input's resolved spent value. ok is false if
// any non-coinbase input has not been resolved against a UTXO index.
func (tx *Tx) TotalInputValue() (total int64, ok bool) {
	for _, in := range tx.Inputs {
		if in.Coinbase {
			continue
		}
		if in.SpentOutput == nil {
			return 0, false
		}
		total += in.SpentOutput.Value
	}
	return total, true
}

// Fee is TotalInputValue minus TotalOutputValue. ok is false for coinbase
// transactions (no fee) or if any input is unresolved.
func (tx *Tx) Fee() (fee int64, ok bool) {
	if tx.IsCoinbase() {
		return 0, false
	}
	in, ok := tx.TotalInputValue()
	if !ok {
		return 0, false
	}
	return in - tx.TotalOutputValue(), true
}

// parseTx builds a Tx from raw bytes, computing its txid. Non-witness
// transactions hash their own bytes directly; segwit transactions hash the
// non-witness serialization (version, inputs, outputs, locktime only).
func parseTx(buf []byte, includeBlob bool) (*Tx, int, error) {
	split, err := binformat.SplitTx(buf)
	if err != nil {
		return nil, 0, err
	}

	tx := &Tx{
		Version:    split.Version,
		HasWitness: split.HasWitness,
		Locktime:   split.Locktime,
		RawSize:    split.Consumed,
	}
	tx.Inputs = make([]TxInput, len(split.Inputs))
	for i, f := range split.Inputs {
		in := TxInput{
			// Coinbase-ness is a property of the first input only: a later
			// input carrying the same reserved sentinel is not a coinbase.
			Coinbase: i == 0 && f.IsCoinbase(),
			Script:   f.Script,
			Sequence: f.Sequence,
		}
		if !in.Coinbase {
			in.SpentTxid = Hash(f.SpentTxid)
			in.SpentOutputIdx = f.SpentOutputIdx
		}
		if split.HasWitness && split.Witnesses != nil {
			in.Witness = split.Witnesses[i]
		}
		tx.Inputs[i] = in
	}
	tx.Outputs = make([]TxOutput, len(split.Outputs))
	for i, f := range split.Outputs {
		tx.Outputs[i] = TxOutput{Value: int64(f.Value), Script: f.Script}
	}

	tx.Txid = computeTxid(buf, split)
	if includeBlob {
		tx.Blob = buf[:split.Consumed]
	}
	return tx, split.Consumed, nil
}

// computeTxid hashes the non-witness serialization of the transaction
// described by split. Non-witness transactions hash buf directly; for
// segwit transactions the non-witness form is re-serialized from split's
// fields (only the version bytes are copied from buf).
func computeTxid(buf []byte, split binformat.TxSplit) Hash {
	if !split.HasWitness {
		return DoubleSHA256(buf[:split.Consumed])
	}
	// Re-serialize without the marker/flag/witness data: version, inputs,
	// outputs, locktime, exactly as they appeared on the wire.
	out := make([]byte, 0, split.Consumed)
	out = append(out, buf[0:4]...) // version
	out = binformat.PutVarInt(out, uint64(len(split.Inputs)))
	for _, in := range split.Inputs {
		out = append(out, in.SpentTxid[:]...)
		out = appendUint32LE(out, in.SpentOutputIdx)
		out = binformat.PutVarInt(out, uint64(len(in.Script)))
		out = append(out, in.Script...)
		out = appendUint32LE(out, in.Sequence)
	}
	out = binformat.PutVarInt(out, uint64(len(split.Outputs)))
	for _, o := range split.Outputs {
		out = appendUint64LE(out, o.Value)
		out = binformat.PutVarInt(out, uint64(len(o.Script)))
		out = append(out, o.Script...)
	}
	out = appendUint32LE(out, split.Locktime)
	return DoubleSHA256(out)
}

func appendUint32LE(b []byte, v uint32) []byte {
	return append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func appendUint64LE(b []byte, v uint64) []byte {
	return append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24), byte(v>>32), byte(v>>40), byte(v>>48), byte(v>>56))
}
