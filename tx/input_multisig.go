package tx

import (
	"bytes"
	"fmt"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-sdk/transaction/sighash"

	"github.com/bchforge/libcash-go/txscript"
)

// MultisigInput spends a bare M-of-N multisignature output. Collected
// signatures are kept aligned with the public key list so the unlocking
// script preserves key order, which CHECKMULTISIG requires.
type MultisigInput struct {
	inputCore
	publicKeys []*ec.PublicKey
	threshold  int
	signatures []*Signature
}

// NewMultisigInput builds a bare multisig input from a normalized UTXO
// and the output's key set.
func NewMultisigInput(utxo *UnspentOutput, pubKeys []*ec.PublicKey, threshold int) (*MultisigInput, error) {
	if threshold < 1 || threshold > len(pubKeys) {
		return nil, fmt.Errorf("%w: threshold %d with %d keys", ErrInvalidArgument, threshold, len(pubKeys))
	}
	return &MultisigInput{
		inputCore:  coreFromUtxo(utxo),
		publicKeys: pubKeys,
		threshold:  threshold,
		signatures: make([]*Signature, len(pubKeys)),
	}, nil
}

// Threshold returns the number of required signatures.
func (in *MultisigInput) Threshold() int { return in.threshold }

// PublicKeys returns the output's key set.
func (in *MultisigInput) PublicKeys() []*ec.PublicKey { return in.publicKeys }

// EstimateSize returns the worst-case signed size: OP_0 plus one pushed
// signature per required key.
func (in *MultisigInput) EstimateSize() int {
	return inputBaseSize + 1 + 1 + in.threshold*sigPushSize
}

// subscript is the script the signatures commit to.
func (in *MultisigInput) subscript() (txscript.Script, error) {
	if in.output == nil {
		return nil, ErrMissingUtxoInfo
	}
	return in.output.Script, nil
}

// RequestSignatures signs once for every key slot priv controls.
func (in *MultisigInput) RequestSignatures(t *Transaction, priv *ec.PrivateKey, inputIndex int, flag sighash.Flag, _ []byte, alg SigningAlgorithm) ([]*Signature, error) {
	sub, err := in.subscript()
	if err != nil {
		return nil, err
	}
	mine := priv.PubKey().Compressed()
	var sigs []*Signature
	for _, pk := range in.publicKeys {
		if !bytes.Equal(pk.Compressed(), mine) {
			continue
		}
		digest, err := SighashDigest(t, flag, inputIndex, sub, in.output.Satoshis)
		if err != nil {
			return nil, err
		}
		sigBytes, err := signDigest(priv, digest, alg)
		if err != nil {
			return nil, err
		}
		sigs = append(sigs, &Signature{
			PublicKey:   pk,
			PrevTxID:    in.prevTxID,
			OutputIndex: in.outputIndex,
			InputIndex:  inputIndex,
			SigHashType: flag,
			Bytes:       sigBytes,
		})
	}
	return sigs, nil
}

// ApplySignature validates sig, stores it in its key slot and rebuilds
// the unlocking script.
func (in *MultisigInput) ApplySignature(t *Transaction, sig *Signature, alg SigningAlgorithm) error {
	slot := in.keySlot(sig)
	if slot < 0 {
		return fmt.Errorf("%w: signature public key not in multisig set", ErrInvalidArgument)
	}
	if !in.ValidateSignature(t, sig) {
		return fmt.Errorf("%w: signature rejected for input %d", ErrInvalidArgument, sig.InputIndex)
	}
	in.signatures[slot] = sig
	return in.rebuildScript()
}

func (in *MultisigInput) keySlot(sig *Signature) int {
	if sig == nil || sig.PublicKey == nil {
		return -1
	}
	target := sig.PublicKey.Compressed()
	for i, pk := range in.publicKeys {
		if bytes.Equal(pk.Compressed(), target) {
			return i
		}
	}
	return -1
}

func (in *MultisigInput) rebuildScript() error {
	script, err := txscript.MultisigIn(in.orderedSignatureBytes())
	if err != nil {
		return err
	}
	in.unlockingScript = script
	return nil
}

// orderedSignatureBytes returns the collected signatures in key order,
// each with its sighash-type byte appended.
func (in *MultisigInput) orderedSignatureBytes() [][]byte {
	var out [][]byte
	for _, sig := range in.signatures {
		if sig == nil {
			continue
		}
		out = append(out, append(append([]byte{}, sig.Bytes...), byte(sig.SigHashType)))
	}
	return out
}

// ClearSignatures drops all signatures and the unlocking script.
func (in *MultisigInput) ClearSignatures() {
	in.signatures = make([]*Signature, len(in.publicKeys))
	in.unlockingScript = nil
}

// FullySigned reports whether the threshold is met.
func (in *MultisigInput) FullySigned() (bool, error) {
	return in.signatureCount() >= in.threshold, nil
}

func (in *MultisigInput) signatureCount() int {
	n := 0
	for _, sig := range in.signatures {
		if sig != nil {
			n++
		}
	}
	return n
}

// ValidateSignature recomputes the digest and verifies sig.
func (in *MultisigInput) ValidateSignature(t *Transaction, sig *Signature) bool {
	sub, err := in.subscript()
	if err != nil {
		return false
	}
	return checkSignature(t, sig, sub, in.output.Satoshis)
}

func (in *MultisigInput) copyInput() Input {
	out := &MultisigInput{
		inputCore:  in.copyCore(),
		publicKeys: append([]*ec.PublicKey{}, in.publicKeys...),
		threshold:  in.threshold,
		signatures: append([]*Signature{}, in.signatures...),
	}
	return out
}
