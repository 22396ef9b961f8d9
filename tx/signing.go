package tx

import (
	"errors"
	"fmt"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-sdk/transaction/sighash"

	"github.com/bchforge/libcash-go/txscript"
)

// Sign signs every input the key can satisfy. A zero flag defaults to
// SIGHASH_ALL with the fork id bit; an empty algorithm defaults to
// ECDSA. Inputs whose template cannot sign (raw inputs) are skipped.
// Every input must have its spent output attached.
func (t *Transaction) Sign(priv *ec.PrivateKey, flag sighash.Flag, alg SigningAlgorithm) error {
	return t.SignAll([]*ec.PrivateKey{priv}, flag, alg)
}

// SignAll signs with each key in turn.
func (t *Transaction) SignAll(privs []*ec.PrivateKey, flag sighash.Flag, alg SigningAlgorithm) error {
	if flag == 0 {
		flag = sighash.AllForkID
	}
	if alg == "" {
		alg = SignECDSA
	}
	if !t.hasAllUtxoInfo() {
		return ErrMissingUtxoInfo
	}
	for _, priv := range privs {
		if priv == nil {
			return fmt.Errorf("%w: nil private key", ErrInvalidArgument)
		}
		pubKeyHash := txscript.Hash160(priv.PubKey().Compressed())
		for i, in := range t.inputs {
			sigs, err := in.RequestSignatures(t, priv, i, flag, pubKeyHash, alg)
			if errors.Is(err, ErrNotImplemented) {
				continue
			}
			if err != nil {
				return fmt.Errorf("input %d: %w", i, err)
			}
			for _, sig := range sigs {
				if err := t.ApplySignature(sig, alg); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// ApplySignature routes a signature to the input it addresses.
func (t *Transaction) ApplySignature(sig *Signature, alg SigningAlgorithm) error {
	if sig == nil {
		return fmt.Errorf("%w: nil signature", ErrInvalidArgument)
	}
	if sig.InputIndex < 0 || sig.InputIndex >= len(t.inputs) {
		return fmt.Errorf("%w: input %d of %d", ErrInvalidIndex, sig.InputIndex, len(t.inputs))
	}
	return t.inputs[sig.InputIndex].ApplySignature(t, sig, alg)
}

// FullySigned reports whether every input has all required signatures.
// An input whose template cannot answer yields ErrUnableToVerifySignature.
func (t *Transaction) FullySigned() (bool, error) {
	for i, in := range t.inputs {
		ok, err := in.FullySigned()
		if errors.Is(err, ErrNotImplemented) {
			return false, fmt.Errorf("%w: input %d has an unrecognized script", ErrUnableToVerifySignature, i)
		}
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// VerifySignature recomputes the digest for sig over the given
// subscript and amount and checks it against sig's public key.
func (t *Transaction) VerifySignature(sig *Signature, subscript txscript.Script, satoshis uint64) bool {
	return checkSignature(t, sig, subscript, satoshis)
}
