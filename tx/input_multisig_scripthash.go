package tx

import (
	"bytes"
	"fmt"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-sdk/transaction/sighash"

	"github.com/bchforge/libcash-go/codec"
	"github.com/bchforge/libcash-go/txscript"
)

// MultisigScriptHashInput spends a P2SH output wrapping an M-of-N
// multisig redeem script. Signatures commit to the redeem script, and
// the assembled unlocking script carries it as the final push.
type MultisigScriptHashInput struct {
	inputCore
	publicKeys   []*ec.PublicKey
	threshold    int
	redeemScript txscript.Script
	signatures   []*Signature
}

// NewMultisigScriptHashInput builds a P2SH multisig input, deriving the
// redeem script from the key set and threshold.
func NewMultisigScriptHashInput(utxo *UnspentOutput, pubKeys []*ec.PublicKey, threshold int) (*MultisigScriptHashInput, error) {
	redeem, err := txscript.MultisigOut(pubKeys, threshold)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return &MultisigScriptHashInput{
		inputCore:    coreFromUtxo(utxo),
		publicKeys:   pubKeys,
		threshold:    threshold,
		redeemScript: redeem,
		signatures:   make([]*Signature, len(pubKeys)),
	}, nil
}

// RedeemScript returns the multisig redeem script.
func (in *MultisigScriptHashInput) RedeemScript() txscript.Script { return in.redeemScript }

// EstimateSize returns the worst-case signed size: OP_0, threshold
// signature pushes, and the redeem script push.
func (in *MultisigScriptHashInput) EstimateSize() int {
	redeemPush := pushOverhead(len(in.redeemScript)) + len(in.redeemScript)
	scriptSize := 1 + in.threshold*sigPushSize + redeemPush
	return inputBaseSize + codec.VarIntSize(uint64(scriptSize)) + scriptSize
}

// RequestSignatures signs once for every key slot priv controls,
// committing to the redeem script.
func (in *MultisigScriptHashInput) RequestSignatures(t *Transaction, priv *ec.PrivateKey, inputIndex int, flag sighash.Flag, _ []byte, alg SigningAlgorithm) ([]*Signature, error) {
	if in.output == nil {
		return nil, ErrMissingUtxoInfo
	}
	mine := priv.PubKey().Compressed()
	var sigs []*Signature
	for _, pk := range in.publicKeys {
		if !bytes.Equal(pk.Compressed(), mine) {
			continue
		}
		digest, err := SighashDigest(t, flag, inputIndex, in.redeemScript, in.output.Satoshis)
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
func (in *MultisigScriptHashInput) ApplySignature(t *Transaction, sig *Signature, alg SigningAlgorithm) error {
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

func (in *MultisigScriptHashInput) keySlot(sig *Signature) int {
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

func (in *MultisigScriptHashInput) rebuildScript() error {
	var sigs [][]byte
	for _, sig := range in.signatures {
		if sig == nil {
			continue
		}
		sigs = append(sigs, append(append([]byte{}, sig.Bytes...), byte(sig.SigHashType)))
	}
	script, err := txscript.MultisigScriptHashIn(sigs, in.redeemScript)
	if err != nil {
		return err
	}
	in.unlockingScript = script
	return nil
}

// ClearSignatures drops all signatures and the unlocking script.
func (in *MultisigScriptHashInput) ClearSignatures() {
	in.signatures = make([]*Signature, len(in.publicKeys))
	in.unlockingScript = nil
}

// FullySigned reports whether the threshold is met.
func (in *MultisigScriptHashInput) FullySigned() (bool, error) {
	n := 0
	for _, sig := range in.signatures {
		if sig != nil {
			n++
		}
	}
	return n >= in.threshold, nil
}

// ValidateSignature recomputes the digest against the redeem script.
func (in *MultisigScriptHashInput) ValidateSignature(t *Transaction, sig *Signature) bool {
	if in.output == nil {
		return false
	}
	return checkSignature(t, sig, in.redeemScript, in.output.Satoshis)
}

func (in *MultisigScriptHashInput) copyInput() Input {
	return &MultisigScriptHashInput{
		inputCore:    in.copyCore(),
		publicKeys:   append([]*ec.PublicKey{}, in.publicKeys...),
		threshold:    in.threshold,
		redeemScript: append(txscript.Script{}, in.redeemScript...),
		signatures:   append([]*Signature{}, in.signatures...),
	}
}

// pushOverhead returns the size of the push opcode(s) for n data bytes.
func pushOverhead(n int) int {
	switch {
	case n < 0x4c:
		return 1
	case n <= 0xff:
		return 2
	case n <= 0xffff:
		return 3
	default:
		return 5
	}
}
