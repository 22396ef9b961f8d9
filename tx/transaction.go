// Package tx implements the Bitcoin Cash transaction engine: a mutable
// builder over inputs and outputs that selects input templates from
// unspent-output shapes, solves change against estimated fees,
// orchestrates ECDSA and Schnorr signing, serializes to the canonical
// wire form, and carries the sanity, CashToken and zero-confirmation
// escrow verification flows.
//
// A Transaction is a plain mutable aggregate with no internal locking;
// callers sharing one across goroutines must serialize access. Every
// structural mutation invalidates previously produced signatures,
// because any of them changes the digest the signatures commit to.
package tx

import (
	"encoding/hex"
	"fmt"

	"github.com/bsv-blockchain/go-sdk/chainhash"

	"github.com/bchforge/libcash-go/codec"
	"github.com/bchforge/libcash-go/txscript"
)

// Transaction is the mutable transaction builder.
type Transaction struct {
	version   int32
	inputs    []Input
	outputs   []*Output
	nLockTime uint32

	changeScript txscript.Script
	changeIndex  int

	feeOverride int64 // explicit fee, -1 when unset
	feePerKb    int64 // satoshis per 1000 bytes, 0 when unset
	feePerByte  int64 // satoshis per byte, 0 when unset

	inputAmount       uint64
	inputAmountValid  bool
	outputAmount      uint64
	outputAmountValid bool
}

// New creates an empty transaction with the default version and locktime.
func New() *Transaction {
	return &Transaction{
		version:     CurrentVersion,
		nLockTime:   DefaultNLockTime,
		changeIndex: -1,
		feeOverride: -1,
	}
}

// FromHex parses a transaction from its lowercase hex wire form.
func FromHex(s string) (*Transaction, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return FromBytes(raw)
}

// FromBytes parses a transaction from its wire form. The whole buffer
// must be consumed; inputs come back as raw inputs until a caller
// associates unspent-output information with them.
func FromBytes(raw []byte) (*Transaction, error) {
	if len(raw) == 0 {
		return nil, ErrNoData
	}
	r := codec.NewReader(raw)

	t := New()
	version, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	t.version = version

	inputCount, err := r.ReadVarInt()
	if err != nil {
		return nil, err
	}
	for i := uint64(0); i < inputCount; i++ {
		in, err := readInput(r)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		t.inputs = append(t.inputs, in)
	}

	outputCount, err := r.ReadVarInt()
	if err != nil {
		return nil, err
	}
	for i := uint64(0); i < outputCount; i++ {
		out, err := readOutput(r)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
		t.outputs = append(t.outputs, out)
	}

	t.nLockTime, err = r.ReadUint32()
	if err != nil {
		return nil, err
	}
	if !r.Empty() {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrInvalidArgument, r.Remaining())
	}
	return t, nil
}

// readInput parses one wire input as a raw input.
func readInput(r *codec.Reader) (Input, error) {
	prevTxID, err := r.ReadBytes(32)
	if err != nil {
		return nil, err
	}
	outputIndex, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	script, err := r.ReadVarBytes()
	if err != nil {
		return nil, err
	}
	sequence, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	return NewRawInput(prevTxID, outputIndex, sequence, script), nil
}

// Copy deep-copies the transaction, including builder state.
func (t *Transaction) Copy() *Transaction {
	out := New()
	out.version = t.version
	out.nLockTime = t.nLockTime
	out.changeIndex = t.changeIndex
	out.feeOverride = t.feeOverride
	out.feePerKb = t.feePerKb
	out.feePerByte = t.feePerByte
	if t.changeScript != nil {
		out.changeScript = append(txscript.Script{}, t.changeScript...)
	}
	for _, in := range t.inputs {
		out.inputs = append(out.inputs, in.copyInput())
	}
	for _, o := range t.outputs {
		out.outputs = append(out.outputs, o.Copy())
	}
	return out
}

// Version returns the transaction version.
func (t *Transaction) Version() int32 { return t.version }

// SetVersion replaces the version; only versions 1 and 2 exist.
func (t *Transaction) SetVersion(v int32) error {
	if v < 1 || v > MaxVersion {
		return fmt.Errorf("%w: version %d", ErrInvalidArgument, v)
	}
	t.version = v
	return nil
}

// Inputs returns the input list; the slice is owned by the transaction.
func (t *Transaction) Inputs() []Input { return t.inputs }

// Outputs returns the output list; the slice is owned by the transaction.
func (t *Transaction) Outputs() []*Output { return t.outputs }

// NLockTime returns the raw nLockTime field.
func (t *Transaction) NLockTime() uint32 { return t.nLockTime }

// SetNLockTime sets the raw nLockTime field, bounds-checked.
func (t *Transaction) SetNLockTime(v int64) error {
	if v < 0 || v > NLockTimeMaxValue {
		return fmt.Errorf("%w: %d", ErrNLockTimeOutOfRange, v)
	}
	t.nLockTime = uint32(v)
	return nil
}

// Bytes serializes the transaction to its wire form without any checks.
func (t *Transaction) Bytes() []byte {
	w := codec.NewWriter()
	w.WriteInt32(t.version)
	w.WriteVarInt(uint64(len(t.inputs)))
	for _, in := range t.inputs {
		in.base().writeTo(w)
	}
	w.WriteVarInt(uint64(len(t.outputs)))
	for _, o := range t.outputs {
		o.writeTo(w)
	}
	w.WriteUint32(t.nLockTime)
	return w.Bytes()
}

// Hex returns the unchecked lowercase hex wire form.
func (t *Transaction) Hex() string {
	return hex.EncodeToString(t.Bytes())
}

// Hash returns the 32-byte double-SHA256 of the wire form, wire order.
func (t *Transaction) Hash() []byte {
	h := chainhash.DoubleHashH(t.Bytes())
	return h[:]
}

// ID returns the transaction id: the reversed hex of Hash.
func (t *Transaction) ID() string {
	h := chainhash.DoubleHashH(t.Bytes())
	return h.String()
}

// SerializedSize returns the current wire size in bytes.
func (t *Transaction) SerializedSize() int {
	return len(t.Bytes())
}

// InputAmount returns the summed values of all attached spent outputs.
// Inputs without attached output information contribute zero.
func (t *Transaction) InputAmount() uint64 {
	if !t.inputAmountValid {
		var sum uint64
		for _, in := range t.inputs {
			if out := in.SpentOutput(); out != nil {
				sum += out.Satoshis
			}
		}
		t.inputAmount = sum
		t.inputAmountValid = true
	}
	return t.inputAmount
}

// OutputAmount returns the summed output values.
func (t *Transaction) OutputAmount() uint64 {
	if !t.outputAmountValid {
		var sum uint64
		for _, o := range t.outputs {
			sum += o.Satoshis
		}
		t.outputAmount = sum
		t.outputAmountValid = true
	}
	return t.outputAmount
}

// UnspentValue returns input amount minus output amount; negative when
// outputs claim more than the attached inputs provide.
func (t *Transaction) UnspentValue() int64 {
	return int64(t.InputAmount()) - int64(t.OutputAmount())
}

// invalidateAmounts drops the memoized input/output sums.
func (t *Transaction) invalidateAmounts() {
	t.inputAmountValid = false
	t.outputAmountValid = false
}

// clearSignatures drops every input's signatures.
func (t *Transaction) clearSignatures() {
	for _, in := range t.inputs {
		in.ClearSignatures()
	}
}

// hasAllUtxoInfo reports whether every input has its spent output attached.
func (t *Transaction) hasAllUtxoInfo() bool {
	for _, in := range t.inputs {
		if in.SpentOutput() == nil {
			return false
		}
	}
	return true
}

// IsCoinbase reports whether the transaction has exactly one null input.
func (t *Transaction) IsCoinbase() bool {
	return len(t.inputs) == 1 && t.inputs[0].IsNull()
}

// findInput returns the index of the input spending (txid, vout), -1 if
// absent.
func (t *Transaction) findInput(prevTxID []byte, outputIndex uint32) int {
	for i, in := range t.inputs {
		if in.base().matchesOutpoint(prevTxID, outputIndex) {
			return i
		}
	}
	return -1
}
