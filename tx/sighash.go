package tx

import (
	"fmt"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-sdk/transaction/sighash"

	"github.com/bchforge/libcash-go/codec"
	"github.com/bchforge/libcash-go/schnorr"
	"github.com/bchforge/libcash-go/txscript"
)

// sighashBaseMask extracts the base type (ALL/NONE/SINGLE) from a flag.
const sighashBaseMask = 0x1f

var zeroHash [32]byte

// SighashDigest computes the double-SHA256 digest an input signature
// commits to, using the post-fork (BIP143-style) preimage. The fork id
// bit is mandatory; this engine does not produce pre-fork signatures.
func SighashDigest(t *Transaction, flag sighash.Flag, inputIndex int, subscript txscript.Script, satoshis uint64) ([]byte, error) {
	if flag&sighash.ForkID == 0 {
		return nil, fmt.Errorf("%w: 0x%02x", ErrInvalidSighashType, byte(flag))
	}
	if inputIndex < 0 || inputIndex >= len(t.inputs) {
		return nil, fmt.Errorf("%w: input %d of %d", ErrInvalidIndex, inputIndex, len(t.inputs))
	}
	in := t.inputs[inputIndex]
	base := flag & sighashBaseMask

	w := codec.NewWriter()
	w.WriteInt32(t.version)

	// hashPrevouts
	if flag&sighash.AnyOneCanPay == 0 {
		pw := codec.NewWriter()
		for _, i := range t.inputs {
			pw.WriteBytes(i.PrevTxID())
			pw.WriteUint32(i.OutputIndex())
		}
		h := chainhash.DoubleHashH(pw.Bytes())
		w.WriteBytes(h[:])
	} else {
		w.WriteBytes(zeroHash[:])
	}

	// hashSequence
	if flag&sighash.AnyOneCanPay == 0 && base != sighash.Single && base != sighash.None {
		sw := codec.NewWriter()
		for _, i := range t.inputs {
			sw.WriteUint32(i.SequenceNumber())
		}
		h := chainhash.DoubleHashH(sw.Bytes())
		w.WriteBytes(h[:])
	} else {
		w.WriteBytes(zeroHash[:])
	}

	// outpoint, script code, amount, sequence
	w.WriteBytes(in.PrevTxID())
	w.WriteUint32(in.OutputIndex())
	w.WriteVarBytes(subscript)
	w.WriteUint64(satoshis)
	w.WriteUint32(in.SequenceNumber())

	// hashOutputs
	switch {
	case base != sighash.Single && base != sighash.None:
		ow := codec.NewWriter()
		for _, o := range t.outputs {
			o.writeTo(ow)
		}
		h := chainhash.DoubleHashH(ow.Bytes())
		w.WriteBytes(h[:])
	case base == sighash.Single && inputIndex < len(t.outputs):
		ow := codec.NewWriter()
		t.outputs[inputIndex].writeTo(ow)
		h := chainhash.DoubleHashH(ow.Bytes())
		w.WriteBytes(h[:])
	default:
		w.WriteBytes(zeroHash[:])
	}

	w.WriteUint32(t.nLockTime)
	w.WriteUint32(uint32(flag))

	digest := chainhash.DoubleHashH(w.Bytes())
	return digest[:], nil
}

// signDigest signs a digest with the requested algorithm.
func signDigest(priv *ec.PrivateKey, digest []byte, alg SigningAlgorithm) ([]byte, error) {
	switch alg {
	case SignSchnorr:
		return schnorr.Sign(priv, digest)
	case SignECDSA, "":
		sig, err := priv.Sign(digest)
		if err != nil {
			return nil, err
		}
		return sig.Serialize(), nil
	default:
		return nil, fmt.Errorf("%w: unknown signing algorithm %q", ErrInvalidArgument, alg)
	}
}

// verifyDigest checks a raw signature against a digest. The scheme is
// inferred from the encoding: 64-byte signatures are Schnorr, anything
// else must parse as DER ECDSA.
func verifyDigest(sigBytes, digest []byte, pubKey *ec.PublicKey) bool {
	if pubKey == nil {
		return false
	}
	if len(sigBytes) == schnorr.SignatureSize {
		return schnorr.Verify(sigBytes, digest, pubKey)
	}
	sig, err := ec.ParseDERSignature(sigBytes)
	if err != nil {
		return false
	}
	return sig.Verify(digest, pubKey)
}

// checkSignature recomputes the digest a signature commits to and
// verifies it against the recorded public key.
func checkSignature(t *Transaction, sig *Signature, subscript txscript.Script, satoshis uint64) bool {
	if sig == nil {
		return false
	}
	digest, err := SighashDigest(t, sig.SigHashType, sig.InputIndex, subscript, satoshis)
	if err != nil {
		return false
	}
	return verifyDigest(sig.Bytes, digest, sig.PublicKey)
}
