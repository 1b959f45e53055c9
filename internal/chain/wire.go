package chain

import (
	"bytes"

	"github.com/btcsuite/btcd/wire"
)

// ToWireMsgTx builds a *wire.MsgTx from tx's raw bytes, for callers that
// want to hand the transaction to btcd-based code rather than work with
// this package's own Tx type. Blob must be populated (the iterator that
// produced tx must have been configured with includeBlob).
func (tx *Tx) ToWireMsgTx() (*wire.MsgTx, error) {
	if tx.Blob == nil {
		return nil, &MalformedTxError{Index: -1, Err: errNoBlob}
	}
	var msgTx wire.MsgTx
	if err := msgTx.Deserialize(bytes.NewReader(tx.Blob)); err != nil {
		return nil, err
	}
	return &msgTx, nil
}

var errNoBlob = errNoBlobType("tx blob not retained; reparse with includeBlob")

type errNoBlobType string

func (e errNoBlobType) Error() string { return string(e) }
