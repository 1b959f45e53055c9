package binformat

import "fmt"

// MalformedTxError reports a structural problem found while splitting a
// transaction's raw bytes into its fields.
type MalformedTxError struct {
	Offset int
	Reason string
}

func (e *MalformedTxError) Error() string {
	return fmt.Sprintf("binformat: malformed transaction at offset %d: %s", e.Offset, e.Reason)
}

// InputFields is the raw, un-interpreted field set of one tx input, as they
// appear on the wire (segwit marker/flag and witness data are recorded
// separately on TxSplit, since their presence is signaled before the
// input list rather than per-input).
type InputFields struct {
	SpentTxid      [32]byte // internal byte order, all-zero for coinbase
	SpentOutputIdx uint32   // 0xffffffff for coinbase
	Script         []byte
	Sequence       uint32
}

// IsCoinbase reports whether these fields describe the single coinbase
// input of a transaction.
func (f InputFields) IsCoinbase() bool {
	return f.SpentOutputIdx == 0xffffffff
}

// OutputFields is the raw field set of one tx output.
type OutputFields struct {
	Value  uint64
	Script []byte
}

// TxSplit is the structural decomposition of one transaction's raw bytes:
// enough to build a Tx value, without yet attaching block context or a
// computed txid.
type TxSplit struct {
	Version    uint32
	HasWitness bool
	Inputs     []InputFields
	Outputs    []OutputFields
	Witnesses  [][][]byte // per input, only populated when HasWitness
	Locktime   uint32
	Consumed   int // bytes consumed from the start of the buffer passed to SplitTx
}

// SplitTx decomposes one transaction from the start of buf. It does not
// compute the txid (segwit transactions hash the non-witness serialization,
// which the caller reconstructs from these fields) nor allocate TxInput/
// TxOutput values — callers in internal/chain do that.
func SplitTx(buf []byte) (TxSplit, error) {
	var split TxSplit
	off := 0

	readUint32 := func(label string) (uint32, error) {
		if off+4 > len(buf) {
			return 0, &MalformedTxError{Offset: off, Reason: label + ": truncated"}
		}
		v := Uint32LE(buf[off:])
		off += 4
		return v, nil
	}
	readVarInt := func(label string) (uint64, error) {
		v, n, err := ParseVarInt(buf[off:])
		if err != nil {
			return 0, &MalformedTxError{Offset: off, Reason: label + ": " + err.Error()}
		}
		off += n
		return v, nil
	}
	readBytes := func(n uint64, label string) ([]byte, error) {
		if n > uint64(len(buf)-off) {
			return nil, &MalformedTxError{Offset: off, Reason: label + ": truncated"}
		}
		b := buf[off : off+int(n)]
		off += int(n)
		return b, nil
	}

	version, err := readUint32("version")
	if err != nil {
		return split, err
	}
	split.Version = version

	// Segwit marker: a zero byte followed by a non-zero flag byte, in the
	// position where the input count would otherwise be.
	if off+2 <= len(buf) && buf[off] == 0x00 && buf[off+1] != 0x00 {
		split.HasWitness = true
		off += 2
	}

	numInputs, err := readVarInt("input count")
	if err != nil {
		return split, err
	}
	split.Inputs = make([]InputFields, 0, numInputs)
	for i := uint64(0); i < numInputs; i++ {
		var in InputFields
		txidBytes, err := readBytes(32, "input txid")
		if err != nil {
			return split, err
		}
		copy(in.SpentTxid[:], txidBytes)
		vout, err := readUint32("input vout")
		if err != nil {
			return split, err
		}
		in.SpentOutputIdx = vout
		scriptLen, err := readVarInt("input script length")
		if err != nil {
			return split, err
		}
		in.Script, err = readBytes(scriptLen, "input script")
		if err != nil {
			return split, err
		}
		seq, err := readUint32("input sequence")
		if err != nil {
			return split, err
		}
		in.Sequence = seq
		split.Inputs = append(split.Inputs, in)
	}

	numOutputs, err := readVarInt("output count")
	if err != nil {
		return split, err
	}
	split.Outputs = make([]OutputFields, 0, numOutputs)
	for i := uint64(0); i < numOutputs; i++ {
		var out OutputFields
		if off+8 > len(buf) {
			return split, &MalformedTxError{Offset: off, Reason: "output value: truncated"}
		}
		out.Value = Uint64LE(buf[off:])
		off += 8
		scriptLen, err := readVarInt("output script length")
		if err != nil {
			return split, err
		}
		out.Script, err = readBytes(scriptLen, "output script")
		if err != nil {
			return split, err
		}
		split.Outputs = append(split.Outputs, out)
	}

	if split.HasWitness {
		split.Witnesses = make([][][]byte, len(split.Inputs))
		for i := range split.Inputs {
			numItems, err := readVarInt("witness item count")
			if err != nil {
				return split, err
			}
			items := make([][]byte, 0, numItems)
			for j := uint64(0); j < numItems; j++ {
				itemLen, err := readVarInt("witness item length")
				if err != nil {
					return split, err
				}
				item, err := readBytes(itemLen, "witness item")
				if err != nil {
					return split, err
				}
				items = append(items, item)
			}
			split.Witnesses[i] = items
		}
	}

	locktime, err := readUint32("locktime")
	if err != nil {
		return split, err
	}
	split.Locktime = locktime
	split.Consumed = off
	return split, nil
}
