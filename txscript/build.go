package txscript

import (
	"fmt"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-sdk/primitives/hash"
	sdkscript "github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction/template/p2pkh"
)

// PayToAddress builds the P2PKH locking script for addr.
func PayToAddress(addr *sdkscript.Address) (Script, error) {
	if addr == nil {
		return nil, fmt.Errorf("%w: nil address", ErrInvalidAddress)
	}
	lock, err := p2pkh.Lock(addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScriptBuild, err)
	}
	return Script(*lock), nil
}

// PublicKeyHashOut builds a P2PKH locking script for a 20-byte hash.
func PublicKeyHashOut(pubKeyHash []byte) (Script, error) {
	if len(pubKeyHash) != 20 {
		return nil, fmt.Errorf("%w: want 20 bytes, got %d", ErrInvalidHashLength, len(pubKeyHash))
	}
	s := &sdkscript.Script{}
	if err := s.AppendOpcodes(sdkscript.OpDUP); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScriptBuild, err)
	}
	if err := s.AppendOpcodes(sdkscript.OpHASH160); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScriptBuild, err)
	}
	if err := s.AppendPushData(pubKeyHash); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScriptBuild, err)
	}
	if err := s.AppendOpcodes(sdkscript.OpEQUALVERIFY); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScriptBuild, err)
	}
	if err := s.AppendOpcodes(sdkscript.OpCHECKSIG); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScriptBuild, err)
	}
	return Script(*s), nil
}

// ScriptHashOut builds a P2SH locking script for a 20-byte script hash.
func ScriptHashOut(scriptHash []byte) (Script, error) {
	if len(scriptHash) != 20 {
		return nil, fmt.Errorf("%w: want 20 bytes, got %d", ErrInvalidHashLength, len(scriptHash))
	}
	s := &sdkscript.Script{}
	if err := s.AppendOpcodes(sdkscript.OpHASH160); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScriptBuild, err)
	}
	if err := s.AppendPushData(scriptHash); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScriptBuild, err)
	}
	if err := s.AppendOpcodes(sdkscript.OpEQUAL); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScriptBuild, err)
	}
	return Script(*s), nil
}

// PublicKeyOut builds a pay-to-public-key locking script.
func PublicKeyOut(pubKey *ec.PublicKey) (Script, error) {
	if pubKey == nil {
		return nil, fmt.Errorf("%w: nil key", ErrInvalidPublicKey)
	}
	s := &sdkscript.Script{}
	if err := s.AppendPushData(pubKey.Compressed()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScriptBuild, err)
	}
	if err := s.AppendOpcodes(sdkscript.OpCHECKSIG); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScriptBuild, err)
	}
	return Script(*s), nil
}

// MultisigOut builds a bare threshold-of-N multisignature locking script.
func MultisigOut(pubKeys []*ec.PublicKey, threshold int) (Script, error) {
	if threshold < 1 || threshold > len(pubKeys) || len(pubKeys) > 16 {
		return nil, fmt.Errorf("%w: %d of %d", ErrInvalidThreshold, threshold, len(pubKeys))
	}
	s := &sdkscript.Script{}
	if err := s.AppendOpcodes(smallIntOp(threshold)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScriptBuild, err)
	}
	for i, pk := range pubKeys {
		if pk == nil {
			return nil, fmt.Errorf("%w: key %d is nil", ErrInvalidPublicKey, i)
		}
		if err := s.AppendPushData(pk.Compressed()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScriptBuild, err)
		}
	}
	if err := s.AppendOpcodes(smallIntOp(len(pubKeys))); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScriptBuild, err)
	}
	if err := s.AppendOpcodes(sdkscript.OpCHECKMULTISIG); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScriptBuild, err)
	}
	return Script(*s), nil
}

// DataOut builds a zero-value data carrier script: OP_RETURN <payload>.
// An empty payload yields a bare OP_RETURN.
func DataOut(payload []byte) (Script, error) {
	s := &sdkscript.Script{}
	if err := s.AppendOpcodes(sdkscript.OpRETURN); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScriptBuild, err)
	}
	if len(payload) > 0 {
		if err := s.AppendPushData(payload); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScriptBuild, err)
		}
	}
	if len(*s) > MaxDataCarrierSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrDataTooLarge, len(*s), MaxDataCarrierSize)
	}
	return Script(*s), nil
}

// PushDataScript builds a script consisting only of data pushes.
func PushDataScript(items ...[]byte) (Script, error) {
	s := &sdkscript.Script{}
	for _, item := range items {
		if err := s.AppendPushData(item); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScriptBuild, err)
		}
	}
	return Script(*s), nil
}

// MultisigIn builds the unlocking script for a bare multisig input:
// OP_0 followed by the signature pushes (the leading zero absorbs the
// CHECKMULTISIG off-by-one).
func MultisigIn(sigs [][]byte) (Script, error) {
	s := &sdkscript.Script{}
	if err := s.AppendOpcodes(sdkscript.Op0); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScriptBuild, err)
	}
	for _, sig := range sigs {
		if err := s.AppendPushData(sig); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScriptBuild, err)
		}
	}
	return Script(*s), nil
}

// MultisigScriptHashIn builds the unlocking script for a P2SH-wrapped
// multisig input: OP_0, the signature pushes, then the redeem script.
func MultisigScriptHashIn(sigs [][]byte, redeemScript Script) (Script, error) {
	s, err := MultisigIn(sigs)
	if err != nil {
		return nil, err
	}
	full := sdkscript.Script(s)
	if err := full.AppendPushData(redeemScript); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScriptBuild, err)
	}
	return Script(full), nil
}

// Hash160 returns RIPEMD160(SHA256(b)).
func Hash160(b []byte) []byte {
	return hash.Hash160(b)
}

func smallIntOp(n int) byte {
	return byte(sdkscript.Op1) + byte(n-1)
}
