package tx

import (
	"fmt"
	"time"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"

	"github.com/bchforge/libcash-go/codec"
	"github.com/bchforge/libcash-go/txscript"
)

// From adds inputs spending the given unspent outputs, selecting the
// input template from each descriptor's script shape. Descriptors whose
// outpoint is already spent by an existing input are silently ignored.
func (t *Transaction) From(utxos ...*UnspentOutput) error {
	for _, utxo := range utxos {
		if utxo == nil {
			return fmt.Errorf("%w: nil unspent output", ErrInvalidArgument)
		}
		if t.findInput(utxo.TxID, utxo.OutputIndex) >= 0 {
			continue
		}
		in, err := inputFromUtxo(utxo)
		if err != nil {
			return err
		}
		t.addInput(in)
	}
	return nil
}

// FromMultisig adds an input spending a multisig unspent output, either
// bare or wrapped in a script hash, with the given key set and
// threshold.
func (t *Transaction) FromMultisig(utxo *UnspentOutput, pubKeys []*ec.PublicKey, threshold int) error {
	if utxo == nil {
		return fmt.Errorf("%w: nil unspent output", ErrInvalidArgument)
	}
	if threshold < 1 || threshold > len(pubKeys) {
		return fmt.Errorf("%w: threshold %d with %d keys", ErrInvalidArgument, threshold, len(pubKeys))
	}
	if t.findInput(utxo.TxID, utxo.OutputIndex) >= 0 {
		return nil
	}
	in, err := multisigInputFromUtxo(utxo, pubKeys, threshold)
	if err != nil {
		return err
	}
	t.addInput(in)
	return nil
}

// inputFromUtxo selects the input template for a descriptor without an
// explicit key set.
func inputFromUtxo(utxo *UnspentOutput) (Input, error) {
	switch {
	case len(utxo.PublicKeys) > 1:
		return NewEscrowInput(utxo)
	case utxo.Script.IsPublicKeyHashOut(),
		utxo.Script.IsWitnessKeyHashOut(),
		utxo.Script.IsScriptHashOut():
		return NewPublicKeyHashInput(utxo), nil
	case utxo.Script.IsPublicKeyOut():
		return NewPublicKeyInput(utxo), nil
	default:
		in := NewRawInput(utxo.TxID, utxo.OutputIndex, utxo.sequenceOrDefault(), nil)
		in.output = utxo.spentOutput()
		return in, nil
	}
}

// multisigInputFromUtxo selects the multisig template for a descriptor.
func multisigInputFromUtxo(utxo *UnspentOutput, pubKeys []*ec.PublicKey, threshold int) (Input, error) {
	switch {
	case utxo.Script.IsMultisigOut():
		return NewMultisigInput(utxo, pubKeys, threshold)
	case utxo.Script.IsScriptHashOut(), utxo.Script.IsWitnessScriptHashOut():
		return NewMultisigScriptHashInput(utxo, pubKeys, threshold)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScript, utxo.Script.Hex())
	}
}

// AddInput appends an input that already carries its spent-output
// information.
func (t *Transaction) AddInput(in Input) error {
	if in == nil {
		return fmt.Errorf("%w: nil input", ErrInvalidArgument)
	}
	if in.SpentOutput() == nil {
		return ErrMissingUtxoInfo
	}
	t.addInput(in)
	return nil
}

// UncheckedAddInput appends an input without requiring spent-output
// information; such inputs cannot be signed or counted toward the
// input amount.
func (t *Transaction) UncheckedAddInput(in Input) error {
	if in == nil {
		return fmt.Errorf("%w: nil input", ErrInvalidArgument)
	}
	t.addInput(in)
	return nil
}

func (t *Transaction) addInput(in Input) {
	t.inputs = append(t.inputs, in)
	t.updateChangeOutput()
}

// RemoveInputAt removes the input at index i.
func (t *Transaction) RemoveInputAt(i int) error {
	if i < 0 || i >= len(t.inputs) {
		return fmt.Errorf("%w: input %d of %d", ErrInvalidIndex, i, len(t.inputs))
	}
	t.inputs = append(t.inputs[:i], t.inputs[i+1:]...)
	t.updateChangeOutput()
	return nil
}

// RemoveInputByOutpoint removes the input spending (txid, vout), where
// txIDHex is in display order.
func (t *Transaction) RemoveInputByOutpoint(txIDHex string, outputIndex uint32) error {
	prevTxID, err := TxIDFromHex(txIDHex)
	if err != nil {
		return err
	}
	i := t.findInput(prevTxID, outputIndex)
	if i < 0 {
		return fmt.Errorf("%w: no input spends %s:%d", ErrInvalidIndex, txIDHex, outputIndex)
	}
	return t.RemoveInputAt(i)
}

// AssociateInputs replaces existing inputs matching each descriptor's
// outpoint with fully-informed typed inputs. The result holds, per
// descriptor, the input index it matched, or -1.
func (t *Transaction) AssociateInputs(utxos []*UnspentOutput) ([]int, error) {
	indexes := make([]int, len(utxos))
	for i, utxo := range utxos {
		if utxo == nil {
			return nil, fmt.Errorf("%w: nil unspent output", ErrInvalidArgument)
		}
		idx := t.findInput(utxo.TxID, utxo.OutputIndex)
		indexes[i] = idx
		if idx < 0 {
			continue
		}
		in, err := inputFromUtxo(utxo)
		if err != nil {
			return nil, err
		}
		in.SetSequenceNumber(t.inputs[idx].SequenceNumber())
		t.inputs[idx] = in
	}
	t.updateChangeOutput()
	return indexes, nil
}

// To appends a payment output to a base58 address.
func (t *Transaction) To(address string, satoshis uint64) error {
	if satoshis > MaxMoney {
		return fmt.Errorf("%w: %d", ErrInvalidSatoshis, satoshis)
	}
	addr, err := txscript.DecodeAddress(address)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	script, err := txscript.PayToAddress(addr)
	if err != nil {
		return err
	}
	t.appendOutput(&Output{Satoshis: satoshis, Script: script})
	return nil
}

// AddData appends a zero-value data carrier output.
func (t *Transaction) AddData(payload []byte) error {
	script, err := txscript.DataOut(payload)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	t.appendOutput(&Output{Satoshis: 0, Script: script})
	return nil
}

// AddOutput appends a pre-built output.
func (t *Transaction) AddOutput(o *Output) error {
	if o == nil {
		return fmt.Errorf("%w: nil output", ErrInvalidArgument)
	}
	if !o.ValidSatoshis() {
		return fmt.Errorf("%w: %d", ErrInvalidSatoshis, o.Satoshis)
	}
	if o.Token != nil {
		if err := o.Token.validate(); err != nil {
			return err
		}
	}
	t.appendOutput(o)
	return nil
}

// Escrow appends a zero-confirmation escrow output committing to the
// funding keys and reclaimable by the reclaim key. When no change
// script is configured, a previously set explicit fee is dropped so the
// whole surplus funds the escrow's miner incentive.
func (t *Transaction) Escrow(inputPubKeys []*ec.PublicKey, reclaimPubKey *ec.PublicKey, satoshis uint64) error {
	if satoshis > MaxMoney {
		return fmt.Errorf("%w: %d", ErrInvalidSatoshis, satoshis)
	}
	script, err := txscript.EscrowOut(inputPubKeys, reclaimPubKey)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	if t.changeScript == nil {
		t.feeOverride = -1
	}
	t.appendOutput(&Output{Satoshis: satoshis, Script: script})
	return nil
}

func (t *Transaction) appendOutput(o *Output) {
	t.outputs = append(t.outputs, o)
	t.updateChangeOutput()
}

// ClearOutputs removes every output, including any change output. When a
// change script is set, a fresh change output is then recomputed.
func (t *Transaction) ClearOutputs() {
	t.outputs = nil
	t.changeIndex = -1
	t.updateChangeOutput()
}

// RemoveOutput removes the output at index i.
func (t *Transaction) RemoveOutput(i int) error {
	if i < 0 || i >= len(t.outputs) {
		return fmt.Errorf("%w: output %d of %d", ErrInvalidIndex, i, len(t.outputs))
	}
	t.outputs = append(t.outputs[:i], t.outputs[i+1:]...)
	switch {
	case t.changeIndex == i:
		t.changeIndex = -1
	case t.changeIndex > i:
		t.changeIndex--
	}
	t.updateChangeOutput()
	return nil
}

// Change sets the change address; surplus above the estimated fee flows
// into a change output at that address.
func (t *Transaction) Change(address string) error {
	addr, err := txscript.DecodeAddress(address)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	script, err := txscript.PayToAddress(addr)
	if err != nil {
		return err
	}
	t.changeScript = script
	t.updateChangeOutput()
	return nil
}

// ChangeScript returns the configured change script, nil if unset.
func (t *Transaction) ChangeScript() txscript.Script { return t.changeScript }

// ChangeOutput returns the current change output, nil when none exists.
func (t *Transaction) ChangeOutput() *Output {
	if t.changeIndex < 0 {
		return nil
	}
	return t.outputs[t.changeIndex]
}

// ChangeIndex returns the change output's index, -1 when none exists.
func (t *Transaction) ChangeIndex() int { return t.changeIndex }

// Fee sets an explicit absolute fee, replacing rate-based estimation.
func (t *Transaction) Fee(satoshis uint64) error {
	if satoshis > MaxMoney {
		return fmt.Errorf("%w: %d", ErrInvalidSatoshis, satoshis)
	}
	t.feeOverride = int64(satoshis)
	t.updateChangeOutput()
	return nil
}

// FeePerKb sets the fee rate in satoshis per 1000 bytes.
func (t *Transaction) FeePerKb(rate uint64) error {
	if rate > MaxMoney {
		return fmt.Errorf("%w: %d", ErrInvalidSatoshis, rate)
	}
	t.feePerKb = int64(rate)
	t.updateChangeOutput()
	return nil
}

// FeePerByte sets the fee rate in satoshis per byte. It is ignored when
// a per-kilobyte rate is set.
func (t *Transaction) FeePerByte(rate uint64) error {
	if rate > MaxMoney {
		return fmt.Errorf("%w: %d", ErrInvalidSatoshis, rate)
	}
	t.feePerByte = int64(rate)
	t.updateChangeOutput()
	return nil
}

// GetFee returns the effective fee: zero for coinbase, the explicit fee
// when set, the whole unspent value while no change output exists (the
// surplus is the fee, including when a sub-dust change was dropped),
// and the estimate otherwise.
func (t *Transaction) GetFee() int64 {
	if t.IsCoinbase() {
		return 0
	}
	if t.feeOverride >= 0 {
		return t.feeOverride
	}
	if t.changeScript == nil || t.changeIndex < 0 {
		return t.UnspentValue()
	}
	return t.estimateFee()
}

// updateChangeOutput recomputes the change output from scratch. Any
// structural change lands here, so it also invalidates the cached sums
// and every previously produced signature.
func (t *Transaction) updateChangeOutput() {
	t.invalidateAmounts()
	t.clearSignatures()

	if t.changeIndex >= 0 {
		i := t.changeIndex
		t.outputs = append(t.outputs[:i], t.outputs[i+1:]...)
		t.changeIndex = -1
		t.invalidateAmounts()
	}
	if t.changeScript == nil {
		return
	}

	available := t.UnspentValue()
	fee := t.feeOverride
	if fee < 0 {
		fee = t.estimateFee()
	}
	change := available - fee
	if change >= int64(DustAmount) {
		t.outputs = append(t.outputs, &Output{
			Satoshis: uint64(change),
			Script:   append(txscript.Script{}, t.changeScript...),
		})
		t.changeIndex = len(t.outputs) - 1
		t.invalidateAmounts()
	}
}

// estimateFee solves the fee for the transaction's current shape, using
// worst-case signed input sizes. When a change script is configured and
// the surplus can cover it, the change output's size is billed too.
func (t *Transaction) estimateFee() int64 {
	estimatedSize := t.estimateSize()
	available := t.UnspentValue()

	feeNoChange := t.feeForSize(estimatedSize)
	if t.changeScript == nil {
		return feeNoChange
	}
	feeWithChange := t.feeForSize(estimatedSize + t.changeOutputSize())
	if available <= feeWithChange {
		return feeNoChange
	}
	return feeWithChange
}

// feeForSize applies the configured fee rate, rounding up.
func (t *Transaction) feeForSize(size int) int64 {
	if t.feePerKb == 0 && t.feePerByte > 0 {
		return int64(size) * t.feePerByte
	}
	perKb := t.feePerKb
	if perKb == 0 {
		perKb = DefaultFeePerKb
	}
	return (int64(size)*perKb + 999) / 1000
}

// changeOutputSize returns the wire size of the pending change output.
func (t *Transaction) changeOutputSize() int {
	if t.changeScript == nil {
		return 0
	}
	n := len(t.changeScript)
	return 8 + codec.VarIntSize(uint64(n)) + n
}

// estimateSize returns the worst-case serialized size of the current
// shape, counting unsigned inputs at their fully signed size.
func (t *Transaction) estimateSize() int {
	size := MaximumExtraSize
	for _, in := range t.inputs {
		size += in.EstimateSize()
	}
	for _, o := range t.outputs {
		size += o.SerializedSize()
	}
	return size
}

// LockUntilDate sets nLockTime to a timestamp, keeping every input with
// the final sequence number lockable.
func (t *Transaction) LockUntilDate(d time.Time) error {
	ts := d.Unix()
	if ts < int64(NLockTimeBlockHeightLimit) {
		return fmt.Errorf("%w: %s", ErrLockTimeTooEarly, d)
	}
	if ts > NLockTimeMaxValue {
		return fmt.Errorf("%w: %d", ErrNLockTimeOutOfRange, ts)
	}
	t.enableLockTime(uint32(ts))
	return nil
}

// LockUntilUnix sets nLockTime to a UNIX-seconds timestamp.
func (t *Transaction) LockUntilUnix(seconds int64) error {
	if seconds < int64(NLockTimeBlockHeightLimit) {
		return fmt.Errorf("%w: %d", ErrLockTimeTooEarly, seconds)
	}
	if seconds > NLockTimeMaxValue {
		return fmt.Errorf("%w: %d", ErrNLockTimeOutOfRange, seconds)
	}
	t.enableLockTime(uint32(seconds))
	return nil
}

// LockUntilBlockHeight sets nLockTime to a block height.
func (t *Transaction) LockUntilBlockHeight(height uint32) error {
	if height >= NLockTimeBlockHeightLimit {
		return fmt.Errorf("%w: %d", ErrBlockHeightTooHigh, height)
	}
	t.enableLockTime(height)
	return nil
}

func (t *Transaction) enableLockTime(v uint32) {
	for _, in := range t.inputs {
		if in.SequenceNumber() == DefaultSequenceNumber {
			in.SetSequenceNumber(DefaultLockTimeSequenceNumber)
		}
	}
	t.nLockTime = v
}

// LockTimeBlockHeight returns the locktime as a block height, when it
// encodes one.
func (t *Transaction) LockTimeBlockHeight() (uint32, bool) {
	if t.nLockTime == 0 || t.nLockTime >= NLockTimeBlockHeightLimit {
		return 0, false
	}
	return t.nLockTime, true
}

// LockTimeDate returns the locktime as a timestamp, when it encodes one.
func (t *Transaction) LockTimeDate() (time.Time, bool) {
	if t.nLockTime < NLockTimeBlockHeightLimit {
		return time.Time{}, false
	}
	return time.Unix(int64(t.nLockTime), 0), true
}
