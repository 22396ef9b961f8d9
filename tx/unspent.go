package tx

import (
	"encoding/hex"
	"fmt"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"

	"github.com/bchforge/libcash-go/txscript"
)

// UnspentOutput normalizes a caller-supplied UTXO descriptor. TxID is
// held in wire (little-endian) order; the hex constructors accept the
// usual big-endian display form.
type UnspentOutput struct {
	TxID           []byte
	OutputIndex    uint32
	Script         txscript.Script
	Satoshis       uint64
	SequenceNumber uint32
	PublicKeys     []*ec.PublicKey
	Token          *TokenData
}

// NewUnspentOutput normalizes a descriptor given the display-order txid
// hex and the locking script hex.
func NewUnspentOutput(txIDHex string, outputIndex uint32, scriptHex string, satoshis uint64) (*UnspentOutput, error) {
	txID, err := TxIDFromHex(txIDHex)
	if err != nil {
		return nil, err
	}
	script, err := txscript.NewFromHex(scriptHex)
	if err != nil {
		return nil, fmt.Errorf("%w: script hex: %w", ErrInvalidArgument, err)
	}
	return &UnspentOutput{
		TxID:           txID,
		OutputIndex:    outputIndex,
		Script:         script,
		Satoshis:       satoshis,
		SequenceNumber: DefaultSequenceNumber,
	}, nil
}

// TxIDHex returns the txid in display (big-endian) hex.
func (u *UnspentOutput) TxIDHex() string {
	return hex.EncodeToString(reverseBytes(u.TxID))
}

// spentOutput builds the Output this descriptor refers to.
func (u *UnspentOutput) spentOutput() *Output {
	return &Output{
		Satoshis: u.Satoshis,
		Script:   append(txscript.Script{}, u.Script...),
		Token:    u.Token.Copy(),
	}
}

// sequenceOrDefault returns the descriptor's sequence number, falling
// back to the final sequence when unset.
func (u *UnspentOutput) sequenceOrDefault() uint32 {
	if u.SequenceNumber == 0 {
		return DefaultSequenceNumber
	}
	return u.SequenceNumber
}

// TxIDFromHex parses a display-order txid into wire order.
func TxIDFromHex(txIDHex string) ([]byte, error) {
	b, err := hex.DecodeString(txIDHex)
	if err != nil {
		return nil, fmt.Errorf("%w: txid hex: %w", ErrInvalidArgument, err)
	}
	if len(b) != 32 {
		return nil, fmt.Errorf("%w: txid must be 32 bytes, got %d", ErrInvalidArgument, len(b))
	}
	return reverseBytes(b), nil
}
