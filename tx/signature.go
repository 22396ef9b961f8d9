package tx

import (
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-sdk/transaction/sighash"
)

// SigningAlgorithm selects the signature scheme for Sign and
// ApplySignature.
type SigningAlgorithm string

// Supported signing algorithms.
const (
	SignECDSA   SigningAlgorithm = "ecdsa"
	SignSchnorr SigningAlgorithm = "schnorr"
)

// Signature is one produced signature, addressed to a specific input.
// Bytes holds the raw signature (DER for ECDSA, 64 bytes for Schnorr)
// without the trailing sighash-type byte; the byte is appended when the
// signature is pushed into an unlocking script.
type Signature struct {
	PublicKey   *ec.PublicKey
	PrevTxID    []byte
	OutputIndex uint32
	InputIndex  int
	SigHashType sighash.Flag
	Bytes       []byte
}
