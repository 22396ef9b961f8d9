package tx

import (
	"bytes"
	"fmt"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-sdk/transaction/sighash"

	"github.com/bchforge/libcash-go/txscript"
)

// publicKeyHashScriptMaxSize is the worst-case P2PKH unlocking script:
// a pushed DER signature plus a pushed compressed key.
const publicKeyHashScriptMaxSize = sigPushSize + pubKeyPushSize

// PublicKeyHashInput spends a P2PKH output with a single signature.
// When the spent script is not plain P2PKH (a script-hash or witness
// output), it produces no signatures.
type PublicKeyHashInput struct {
	inputCore
	signature *Signature
}

// NewPublicKeyHashInput builds a P2PKH input from a normalized UTXO.
func NewPublicKeyHashInput(utxo *UnspentOutput) *PublicKeyHashInput {
	return &PublicKeyHashInput{inputCore: coreFromUtxo(utxo)}
}

// EstimateSize returns the worst-case signed size.
func (in *PublicKeyHashInput) EstimateSize() int {
	return inputBaseSize + 1 + publicKeyHashScriptMaxSize
}

// RequestSignatures signs when the key's hash matches the spent P2PKH
// output.
func (in *PublicKeyHashInput) RequestSignatures(t *Transaction, priv *ec.PrivateKey, inputIndex int, flag sighash.Flag, pubKeyHash []byte, alg SigningAlgorithm) ([]*Signature, error) {
	out := in.output
	if out == nil {
		return nil, ErrMissingUtxoInfo
	}
	if !out.Script.IsPublicKeyHashOut() {
		return nil, nil
	}
	scriptHash, err := out.Script.PublicKeyHash()
	if err != nil || !bytes.Equal(scriptHash, pubKeyHash) {
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

// ApplySignature validates sig and assembles <sig+type> <pubkey>.
func (in *PublicKeyHashInput) ApplySignature(t *Transaction, sig *Signature, alg SigningAlgorithm) error {
	if !in.ValidateSignature(t, sig) {
		return fmt.Errorf("%w: signature rejected for input %d", ErrInvalidArgument, sig.InputIndex)
	}
	script, err := txscript.PushDataScript(
		append(append([]byte{}, sig.Bytes...), byte(sig.SigHashType)),
		sig.PublicKey.Compressed(),
	)
	if err != nil {
		return err
	}
	in.signature = sig
	in.unlockingScript = script
	return nil
}

// ClearSignatures drops the signature and the unlocking script.
func (in *PublicKeyHashInput) ClearSignatures() {
	in.signature = nil
	in.unlockingScript = nil
}

// FullySigned reports whether the single required signature is present.
func (in *PublicKeyHashInput) FullySigned() (bool, error) {
	return in.signature != nil, nil
}

// ValidateSignature recomputes the digest and verifies sig.
func (in *PublicKeyHashInput) ValidateSignature(t *Transaction, sig *Signature) bool {
	if in.output == nil || sig == nil {
		return false
	}
	return checkSignature(t, sig, in.output.Script, in.output.Satoshis)
}

func (in *PublicKeyHashInput) copyInput() Input {
	out := &PublicKeyHashInput{inputCore: in.copyCore()}
	out.signature = in.signature
	return out
}
