// Package schnorr implements the 64-byte (r, s) Schnorr signature
// scheme used on Bitcoin Cash since the 2019 protocol upgrade.
//
// The challenge is e = SHA256(r ‖ compressed(P) ‖ m) and the nonce point
// R is normalized so that its y coordinate is a quadratic residue
// modulo the field prime, which lets the signature omit y entirely.
// Signing is deterministic: the nonce is derived from the private key
// and the message, so signing the same digest twice yields the same
// signature.
package schnorr

import (
	"crypto/sha256"
	"fmt"
	"math/big"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
)

// SignatureSize is the byte length of a serialized Schnorr signature.
const SignatureSize = 64

// nonceTag domain-separates the deterministic nonce derivation.
var nonceTag = []byte("Schnorr+SHA256  ")

// Sign produces a 64-byte Schnorr signature of the 32-byte digest.
func Sign(priv *ec.PrivateKey, digest []byte) ([]byte, error) {
	if priv == nil {
		return nil, ErrNilKey
	}
	if len(digest) != sha256.Size {
		return nil, fmt.Errorf("%w: digest must be %d bytes, got %d",
			ErrInvalidDigest, sha256.Size, len(digest))
	}

	curve := ec.S256()
	n := curve.Params().N
	p := curve.Params().P
	d := new(big.Int).Set(priv.D)
	if d.Sign() == 0 || d.Cmp(n) >= 0 {
		return nil, ErrNilKey
	}
	pubSer := priv.PubKey().Compressed()

	k := deriveNonce(d, digest, n)
	rx, ry := curve.ScalarBaseMult(pad32(k))

	// Negate k when R.y is a non-residue so the verifier can recover the
	// sign of y from r alone.
	if big.Jacobi(ry, p) != 1 {
		k.Sub(n, k)
	}

	r := pad32(rx)
	e := challenge(r, pubSer, digest, n)

	s := new(big.Int).Mul(e, d)
	s.Add(s, k)
	s.Mod(s, n)
	if s.Sign() == 0 {
		return nil, ErrBadNonce
	}

	sig := make([]byte, 0, SignatureSize)
	sig = append(sig, r...)
	sig = append(sig, pad32(s)...)
	return sig, nil
}

// Verify reports whether sig is a valid Schnorr signature of digest by
// the given public key.
func Verify(sig []byte, digest []byte, pubKey *ec.PublicKey) bool {
	if pubKey == nil || len(sig) != SignatureSize || len(digest) != sha256.Size {
		return false
	}

	curve := ec.S256()
	n := curve.Params().N
	p := curve.Params().P

	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:])
	if r.Cmp(p) >= 0 || s.Sign() == 0 || s.Cmp(n) >= 0 {
		return false
	}

	e := challenge(sig[:32], pubKey.Compressed(), digest, n)

	// R = s*G - e*P
	sgx, sgy := curve.ScalarBaseMult(pad32(s))
	ne := new(big.Int).Sub(n, e)
	epx, epy := curve.ScalarMult(pubKey.X, pubKey.Y, pad32(ne))
	rx, ry := curve.Add(sgx, sgy, epx, epy)

	if rx.Sign() == 0 && ry.Sign() == 0 {
		return false
	}
	if big.Jacobi(ry, p) != 1 {
		return false
	}
	return rx.Cmp(r) == 0
}

// deriveNonce produces a deterministic nonce in [1, n-1] from the
// private scalar and the digest.
func deriveNonce(d *big.Int, digest []byte, n *big.Int) *big.Int {
	var counter [1]byte
	for {
		h := sha256.New()
		h.Write(pad32(d))
		h.Write(digest)
		h.Write(nonceTag)
		h.Write(counter[:])
		k := new(big.Int).SetBytes(h.Sum(nil))
		k.Mod(k, n)
		if k.Sign() != 0 {
			return k
		}
		counter[0]++
	}
}

// challenge computes e = SHA256(r ‖ P ‖ m) mod n.
func challenge(r, pubSer, digest []byte, n *big.Int) *big.Int {
	h := sha256.New()
	h.Write(r)
	h.Write(pubSer)
	h.Write(digest)
	e := new(big.Int).SetBytes(h.Sum(nil))
	return e.Mod(e, n)
}

// pad32 left-pads a big integer to 32 bytes.
func pad32(v *big.Int) []byte {
	out := make([]byte, 32)
	b := v.Bytes()
	copy(out[32-len(b):], b)
	return out
}
