package tx

import (
	"bytes"
	"fmt"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-sdk/transaction/sighash"

	"github.com/bchforge/libcash-go/codec"
	"github.com/bchforge/libcash-go/txscript"
)

// EscrowInput spends a zero-confirmation escrow output with the reclaim
// key. The unlocking script is <sig+type> <reclaim key> <redeem script>.
type EscrowInput struct {
	inputCore
	reclaimPublicKey *ec.PublicKey
	inputPublicKeys  []*ec.PublicKey
	redeemScript     txscript.Script
	signature        *Signature
}

// NewEscrowInput builds an escrow input. The first key of the UTXO's
// key list is the reclaim key; the rest are the funding input keys the
// escrow commits to.
func NewEscrowInput(utxo *UnspentOutput) (*EscrowInput, error) {
	if len(utxo.PublicKeys) < 2 {
		return nil, fmt.Errorf("%w: escrow utxo needs a reclaim key and at least one input key",
			ErrInvalidArgument)
	}
	reclaim := utxo.PublicKeys[0]
	inputKeys := utxo.PublicKeys[1:]
	redeem, err := txscript.EscrowRedeemScript(inputKeys, reclaim)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return &EscrowInput{
		inputCore:        coreFromUtxo(utxo),
		reclaimPublicKey: reclaim,
		inputPublicKeys:  inputKeys,
		redeemScript:     redeem,
	}, nil
}

// RedeemScript returns the escrow redeem script.
func (in *EscrowInput) RedeemScript() txscript.Script { return in.redeemScript }

// ReclaimPublicKey returns the key allowed to reclaim the escrow.
func (in *EscrowInput) ReclaimPublicKey() *ec.PublicKey { return in.reclaimPublicKey }

// EstimateSize returns the worst-case signed size: signature, reclaim
// key and redeem script pushes.
func (in *EscrowInput) EstimateSize() int {
	scriptSize := sigPushSize + pubKeyPushSize +
		pushOverhead(len(in.redeemScript)) + len(in.redeemScript)
	return inputBaseSize + codec.VarIntSize(uint64(scriptSize)) + scriptSize
}

// RequestSignatures signs when priv is the reclaim key, committing to
// the redeem script.
func (in *EscrowInput) RequestSignatures(t *Transaction, priv *ec.PrivateKey, inputIndex int, flag sighash.Flag, _ []byte, alg SigningAlgorithm) ([]*Signature, error) {
	if in.output == nil {
		return nil, ErrMissingUtxoInfo
	}
	if !bytes.Equal(priv.PubKey().Compressed(), in.reclaimPublicKey.Compressed()) {
		return nil, nil
	}
	digest, err := SighashDigest(t, flag, inputIndex, in.redeemScript, in.output.Satoshis)
	if err != nil {
		return nil, err
	}
	sigBytes, err := signDigest(priv, digest, alg)
	if err != nil {
		return nil, err
	}
	return []*Signature{{
		PublicKey:   in.reclaimPublicKey,
		PrevTxID:    in.prevTxID,
		OutputIndex: in.outputIndex,
		InputIndex:  inputIndex,
		SigHashType: flag,
		Bytes:       sigBytes,
	}}, nil
}

// ApplySignature validates sig and assembles the reclaim spend script.
func (in *EscrowInput) ApplySignature(t *Transaction, sig *Signature, alg SigningAlgorithm) error {
	if !in.ValidateSignature(t, sig) {
		return fmt.Errorf("%w: signature rejected for input %d", ErrInvalidArgument, sig.InputIndex)
	}
	script, err := txscript.PushDataScript(
		append(append([]byte{}, sig.Bytes...), byte(sig.SigHashType)),
		in.reclaimPublicKey.Compressed(),
		in.redeemScript,
	)
	if err != nil {
		return err
	}
	in.signature = sig
	in.unlockingScript = script
	return nil
}

// ClearSignatures drops the signature and the unlocking script.
func (in *EscrowInput) ClearSignatures() {
	in.signature = nil
	in.unlockingScript = nil
}

// FullySigned reports whether the reclaim signature is present.
func (in *EscrowInput) FullySigned() (bool, error) {
	return in.signature != nil, nil
}

// ValidateSignature recomputes the digest against the redeem script.
func (in *EscrowInput) ValidateSignature(t *Transaction, sig *Signature) bool {
	if in.output == nil {
		return false
	}
	return checkSignature(t, sig, in.redeemScript, in.output.Satoshis)
}

func (in *EscrowInput) copyInput() Input {
	out := &EscrowInput{
		inputCore:        in.copyCore(),
		reclaimPublicKey: in.reclaimPublicKey,
		inputPublicKeys:  append([]*ec.PublicKey{}, in.inputPublicKeys...),
		redeemScript:     append(txscript.Script{}, in.redeemScript...),
	}
	out.signature = in.signature
	return out
}
