// Package txscript provides the script view used by the transaction
// engine: an opaque byte blob with template predicates (P2PKH, P2SH,
// P2PK, bare multisig, data carrier, witness programs) and builders for
// the output templates the engine emits (pay-to-address, data carrier,
// multisig, ZCE escrow).
//
// Script assembly and chunk decoding delegate to the go-sdk script
// package; this package owns only the pattern knowledge.
package txscript

import (
	"bytes"
	"encoding/hex"

	sdkscript "github.com/bsv-blockchain/go-sdk/script"
)

// Opcodes referenced by the template predicates.
const (
	opFALSE         = 0x00
	op1             = 0x51
	op16            = 0x60
	opRETURN        = 0x6a
	opDUP           = 0x76
	opEQUAL         = 0x87
	opEQUALVERIFY   = 0x88
	opHASH160       = 0xa9
	opCHECKSIG      = 0xac
	opCHECKMULTISIG = 0xae
)

// MaxDataCarrierSize is the relay limit for OP_RETURN payload scripts.
const MaxDataCarrierSize = 223

// Script is a locking or unlocking script as raw bytes.
type Script []byte

// NewFromHex decodes a hex string into a Script.
func NewFromHex(s string) (Script, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return Script(b), nil
}

// Bytes returns the script as a byte slice.
func (s Script) Bytes() []byte { return []byte(s) }

// Hex returns the lowercase hex form of the script.
func (s Script) Hex() string { return hex.EncodeToString(s) }

// Equal reports whether two scripts are byte-identical.
func (s Script) Equal(other Script) bool { return bytes.Equal(s, other) }

// Chunks decodes the script into its opcode/push chunks.
func (s Script) Chunks() ([]*sdkscript.ScriptChunk, error) {
	return sdkscript.NewFromBytes(s).Chunks()
}

// IsPublicKeyHashOut reports whether the script is the canonical P2PKH
// template: OP_DUP OP_HASH160 <20> OP_EQUALVERIFY OP_CHECKSIG.
func (s Script) IsPublicKeyHashOut() bool {
	return len(s) == 25 &&
		s[0] == opDUP && s[1] == opHASH160 && s[2] == 20 &&
		s[23] == opEQUALVERIFY && s[24] == opCHECKSIG
}

// IsScriptHashOut reports whether the script is the canonical P2SH
// template: OP_HASH160 <20> OP_EQUAL.
func (s Script) IsScriptHashOut() bool {
	return len(s) == 23 &&
		s[0] == opHASH160 && s[1] == 20 && s[22] == opEQUAL
}

// IsPublicKeyOut reports whether the script is pay-to-public-key:
// <33|65 byte key> OP_CHECKSIG.
func (s Script) IsPublicKeyOut() bool {
	switch len(s) {
	case 35:
		return s[0] == 33 && s[34] == opCHECKSIG &&
			(s[1] == 0x02 || s[1] == 0x03)
	case 67:
		return s[0] == 65 && s[66] == opCHECKSIG && s[1] == 0x04
	}
	return false
}

// IsMultisigOut reports whether the script is a bare M-of-N
// multisignature output: OP_M <key>... OP_N OP_CHECKMULTISIG.
func (s Script) IsMultisigOut() bool {
	if len(s) < 4 || s[len(s)-1] != opCHECKMULTISIG {
		return false
	}
	chunks, err := s.Chunks()
	if err != nil || len(chunks) < 4 {
		return false
	}
	if !isSmallIntOp(chunks[0].Op) || !isSmallIntOp(chunks[len(chunks)-2].Op) {
		return false
	}
	m := smallIntValue(chunks[0].Op)
	n := smallIntValue(chunks[len(chunks)-2].Op)
	if m > n || n != len(chunks)-3 {
		return false
	}
	for _, c := range chunks[1 : len(chunks)-2] {
		if keyLen := len(c.Data); keyLen != 33 && keyLen != 65 {
			return false
		}
	}
	return true
}

// IsDataOut reports whether the script is a data carrier output:
// OP_RETURN (optionally preceded by OP_FALSE), within the relay size
// limit. The bytes after OP_RETURN are not inspected.
func (s Script) IsDataOut() bool {
	if len(s) == 0 || len(s) > MaxDataCarrierSize {
		return false
	}
	rest := s
	if rest[0] == opFALSE {
		rest = rest[1:]
	}
	return len(rest) > 0 && rest[0] == opRETURN
}

// IsWitnessKeyHashOut reports whether the script is a version-0 witness
// key hash program: OP_0 <20>.
func (s Script) IsWitnessKeyHashOut() bool {
	return len(s) == 22 && s[0] == opFALSE && s[1] == 20
}

// IsWitnessScriptHashOut reports whether the script is a version-0
// witness script hash program: OP_0 <32>.
func (s Script) IsWitnessScriptHashOut() bool {
	return len(s) == 34 && s[0] == opFALSE && s[1] == 32
}

// PublicKeyHash extracts the 20-byte hash from a P2PKH output.
func (s Script) PublicKeyHash() ([]byte, error) {
	if !s.IsPublicKeyHashOut() {
		return nil, ErrInvalidHashLength
	}
	out := make([]byte, 20)
	copy(out, s[3:23])
	return out, nil
}

// ScriptHash extracts the 20-byte hash from a P2SH output.
func (s Script) ScriptHash() ([]byte, error) {
	if !s.IsScriptHashOut() {
		return nil, ErrInvalidHashLength
	}
	out := make([]byte, 20)
	copy(out, s[2:22])
	return out, nil
}

// PublicKey extracts the raw key bytes from a P2PK output.
func (s Script) PublicKey() ([]byte, error) {
	if !s.IsPublicKeyOut() {
		return nil, ErrInvalidPublicKey
	}
	keyLen := int(s[0])
	out := make([]byte, keyLen)
	copy(out, s[1:1+keyLen])
	return out, nil
}

func isSmallIntOp(op byte) bool {
	return op >= op1 && op <= op16
}

// smallIntValue maps OP_1..OP_16 to its integer value.
func smallIntValue(op byte) int {
	return int(op-op1) + 1
}
