package tx

import (
	"bytes"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-sdk/transaction/sighash"

	"github.com/bchforge/libcash-go/codec"
	"github.com/bchforge/libcash-go/txscript"
)

// Worst-case signed sizes used by fee estimation.
const (
	inputBaseSize  = 32 + 4 + 4 // outpoint + sequence
	sigPushSize    = 1 + 72 + 1 // push op + DER signature + sighash byte
	pubKeyPushSize = 1 + 33     // push op + compressed key
)

// Input is the capability contract every input template satisfies. The
// engine only depends on these operations; each template knows how to
// size, sign and assemble its own unlocking script. Templates are a
// closed set within this package.
type Input interface {
	// PrevTxID returns the 32-byte previous txid in wire order.
	PrevTxID() []byte
	// OutputIndex returns the index of the spent output.
	OutputIndex() uint32
	// SequenceNumber returns the input's sequence number.
	SequenceNumber() uint32
	// SetSequenceNumber replaces the sequence number.
	SetSequenceNumber(uint32)
	// UnlockingScript returns the current unlocking script, nil before
	// signing.
	UnlockingScript() txscript.Script
	// SetUnlockingScript installs a caller-assembled unlocking script.
	SetUnlockingScript(txscript.Script)
	// SpentOutput returns the output being spent, nil when unknown.
	SpentOutput() *Output
	// AttachSpentOutput records the output being spent, enabling
	// signing and input-amount accounting.
	AttachSpentOutput(*Output)
	// IsNull reports the coinbase outpoint: all-zero txid, index 2^32-1.
	IsNull() bool
	// EstimateSize returns a worst-case serialized size including
	// yet-to-be-produced signatures.
	EstimateSize() int
	// RequestSignatures produces the signatures priv can contribute to
	// input inputIndex of t. pubKeyHash is RIPEMD160(SHA256(pubkey)).
	RequestSignatures(t *Transaction, priv *ec.PrivateKey, inputIndex int, flag sighash.Flag, pubKeyHash []byte, alg SigningAlgorithm) ([]*Signature, error)
	// ApplySignature validates and installs one signature, rebuilding
	// the unlocking script.
	ApplySignature(t *Transaction, sig *Signature, alg SigningAlgorithm) error
	// ClearSignatures drops all signatures and the unlocking script.
	ClearSignatures()
	// FullySigned reports whether the input needs no more signatures.
	// The raw template returns ErrNotImplemented.
	FullySigned() (bool, error)
	// ValidateSignature recomputes the digest and checks sig against
	// its recorded public key.
	ValidateSignature(t *Transaction, sig *Signature) bool

	base() *inputCore
	copyInput() Input
}

// inputCore carries the state shared by every input template.
type inputCore struct {
	prevTxID        []byte
	outputIndex     uint32
	sequenceNumber  uint32
	unlockingScript txscript.Script
	output          *Output
}

func (c *inputCore) PrevTxID() []byte                     { return c.prevTxID }
func (c *inputCore) OutputIndex() uint32                  { return c.outputIndex }
func (c *inputCore) SequenceNumber() uint32               { return c.sequenceNumber }
func (c *inputCore) SetSequenceNumber(seq uint32)         { c.sequenceNumber = seq }
func (c *inputCore) UnlockingScript() txscript.Script     { return c.unlockingScript }
func (c *inputCore) SetUnlockingScript(s txscript.Script) { c.unlockingScript = s }
func (c *inputCore) SpentOutput() *Output                 { return c.output }
func (c *inputCore) AttachSpentOutput(o *Output)          { c.output = o }
func (c *inputCore) base() *inputCore                     { return c }

// IsNull reports the coinbase outpoint.
func (c *inputCore) IsNull() bool {
	if c.outputIndex != 0xffffffff {
		return false
	}
	for _, b := range c.prevTxID {
		if b != 0 {
			return false
		}
	}
	return true
}

// EstimateSize for an untyped input counts the script it already has.
func (c *inputCore) EstimateSize() int {
	return inputBaseSize + codec.VarIntSize(uint64(len(c.unlockingScript))) + len(c.unlockingScript)
}

// matchesOutpoint reports whether the input spends (txid, vout).
func (c *inputCore) matchesOutpoint(prevTxID []byte, outputIndex uint32) bool {
	return c.outputIndex == outputIndex && bytes.Equal(c.prevTxID, prevTxID)
}

// writeTo appends the wire form of the input to w.
func (c *inputCore) writeTo(w *codec.Writer) {
	w.WriteBytes(c.prevTxID)
	w.WriteUint32(c.outputIndex)
	w.WriteVarBytes(c.unlockingScript)
	w.WriteUint32(c.sequenceNumber)
}

// copyCore deep-copies the shared state.
func (c *inputCore) copyCore() inputCore {
	out := inputCore{
		prevTxID:        append([]byte{}, c.prevTxID...),
		outputIndex:     c.outputIndex,
		sequenceNumber:  c.sequenceNumber,
		unlockingScript: append(txscript.Script{}, c.unlockingScript...),
	}
	if c.output != nil {
		out.output = c.output.Copy()
	}
	return out
}

func coreFromUtxo(utxo *UnspentOutput) inputCore {
	return inputCore{
		prevTxID:       append([]byte{}, utxo.TxID...),
		outputIndex:    utxo.OutputIndex,
		sequenceNumber: utxo.sequenceOrDefault(),
		output:         utxo.spentOutput(),
	}
}

// RawInput is an input whose script shape no template recognizes. It
// serializes and sizes like any input, but its signing capabilities are
// total only in the sense that they answer ErrNotImplemented; the
// transaction maps that to ErrUnableToVerifySignature where relevant.
type RawInput struct {
	inputCore
}

// NewRawInput builds an untyped input for an arbitrary outpoint.
func NewRawInput(prevTxID []byte, outputIndex, sequenceNumber uint32, script txscript.Script) *RawInput {
	return &RawInput{inputCore{
		prevTxID:        append([]byte{}, prevTxID...),
		outputIndex:     outputIndex,
		sequenceNumber:  sequenceNumber,
		unlockingScript: script,
	}}
}

func (in *RawInput) RequestSignatures(*Transaction, *ec.PrivateKey, int, sighash.Flag, []byte, SigningAlgorithm) ([]*Signature, error) {
	return nil, ErrNotImplemented
}

func (in *RawInput) ApplySignature(*Transaction, *Signature, SigningAlgorithm) error {
	return ErrNotImplemented
}

func (in *RawInput) ClearSignatures() {}

func (in *RawInput) FullySigned() (bool, error) {
	return false, ErrNotImplemented
}

func (in *RawInput) ValidateSignature(*Transaction, *Signature) bool { return false }

func (in *RawInput) copyInput() Input {
	return &RawInput{in.copyCore()}
}
