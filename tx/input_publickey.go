package tx

import (
	"bytes"
	"fmt"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-sdk/transaction/sighash"

	"github.com/bchforge/libcash-go/txscript"
)

// PublicKeyInput spends a pay-to-public-key output.
type PublicKeyInput struct {
	inputCore
	signature *Signature
}

// NewPublicKeyInput builds a P2PK input from a normalized UTXO.
func NewPublicKeyInput(utxo *UnspentOutput) *PublicKeyInput {
	return &PublicKeyInput{inputCore: coreFromUtxo(utxo)}
}

// EstimateSize returns the worst-case signed size: one pushed signature.
func (in *PublicKeyInput) EstimateSize() int {
	return inputBaseSize + 1 + sigPushSize
}

// RequestSignatures signs when the key matches the one in the output
// script.
func (in *PublicKeyInput) RequestSignatures(t *Transaction, priv *ec.PrivateKey, inputIndex int, flag sighash.Flag, _ []byte, alg SigningAlgorithm) ([]*Signature, error) {
	out := in.output
	if out == nil {
		return nil, ErrMissingUtxoInfo
	}
	if !out.Script.IsPublicKeyOut() {
		return nil, nil
	}
	scriptKey, err := out.Script.PublicKey()
	if err != nil || !bytes.Equal(scriptKey, priv.PubKey().Compressed()) {
		return nil, nil
	}

	digest, err := SighashDigest(t, flag, inputIndex, out.Script, out.Satoshis)
	if err != nil {
		return nil, err
	}
	sigBytes, err := signDigest(priv, digest, alg)
	if err != nil {
		return nil, err
	}
	return []*Signature{{
		PublicKey:   priv.PubKey(),
		PrevTxID:    in.prevTxID,
		OutputIndex: in.outputIndex,
		InputIndex:  inputIndex,
		SigHashType: flag,
		Bytes:       sigBytes,
	}}, nil
}

// ApplySignature validates sig and assembles <sig+type>.
func (in *PublicKeyInput) ApplySignature(t *Transaction, sig *Signature, alg SigningAlgorithm) error {
	if !in.ValidateSignature(t, sig) {
		return fmt.Errorf("%w: signature rejected for input %d", ErrInvalidArgument, sig.InputIndex)
	}
	script, err := txscript.PushDataScript(
		append(append([]byte{}, sig.Bytes...), byte(sig.SigHashType)),
	)
	if err != nil {
		return err
	}
	in.signature = sig
	in.unlockingScript = script
	return nil
}

// ClearSignatures drops the signature and the unlocking script.
func (in *PublicKeyInput) ClearSignatures() {
	in.signature = nil
	in.unlockingScript = nil
}

// FullySigned reports whether the single required signature is present.
func (in *PublicKeyInput) FullySigned() (bool, error) {
	return in.signature != nil, nil
}

// ValidateSignature recomputes the digest and verifies sig.
func (in *PublicKeyInput) ValidateSignature(t *Transaction, sig *Signature) bool {
	if in.output == nil || sig == nil {
		return false
	}
	return checkSignature(t, sig, in.output.Script, in.output.Satoshis)
}

func (in *PublicKeyInput) copyInput() Input {
	out := &PublicKeyInput{inputCore: in.copyCore()}
	out.signature = in.signature
	return out
}
