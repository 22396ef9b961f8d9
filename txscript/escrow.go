package txscript

import (
	"bytes"
	"fmt"
	"sort"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	sdkscript "github.com/bsv-blockchain/go-sdk/script"
)

// EscrowRedeemScript builds the redeem script for a zero-confirmation
// escrow. The script commits to the full set of funding public keys via
// a hash-tree root and is spendable by the reclaim key:
//
//	<root> OP_DROP OP_DUP OP_HASH160 <hash160(reclaimKey)> OP_EQUALVERIFY OP_CHECKSIG
//
// The root is the pairwise-HASH160 tree over the sorted, de-duplicated
// HASH160s of the compressed input keys, so any change to the key set
// changes the escrow address.
func EscrowRedeemScript(inputPubKeys []*ec.PublicKey, reclaimPubKey *ec.PublicKey) (Script, error) {
	if reclaimPubKey == nil {
		return nil, fmt.Errorf("%w: nil reclaim key", ErrInvalidPublicKey)
	}
	if len(inputPubKeys) == 0 {
		return nil, fmt.Errorf("%w: no input keys", ErrInvalidPublicKey)
	}

	root, err := pubKeyTreeRoot(inputPubKeys)
	if err != nil {
		return nil, err
	}

	s := &sdkscript.Script{}
	if err := s.AppendPushData(root); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScriptBuild, err)
	}
	if err := s.AppendOpcodes(sdkscript.OpDROP); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScriptBuild, err)
	}
	if err := s.AppendOpcodes(sdkscript.OpDUP); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScriptBuild, err)
	}
	if err := s.AppendOpcodes(sdkscript.OpHASH160); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScriptBuild, err)
	}
	if err := s.AppendPushData(Hash160(reclaimPubKey.Compressed())); err != nil {
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

// EscrowOut builds the P2SH locking script wrapping the escrow redeem
// script for the given key set.
func EscrowOut(inputPubKeys []*ec.PublicKey, reclaimPubKey *ec.PublicKey) (Script, error) {
	redeem, err := EscrowRedeemScript(inputPubKeys, reclaimPubKey)
	if err != nil {
		return nil, err
	}
	return ScriptHashOut(Hash160(redeem))
}

// pubKeyTreeRoot hashes each compressed key with HASH160, de-duplicates
// and sorts the leaves, then folds them pairwise with HASH160 until one
// root remains. An odd leaf is promoted unchanged.
func pubKeyTreeRoot(pubKeys []*ec.PublicKey) ([]byte, error) {
	seen := make(map[string]bool, len(pubKeys))
	leaves := make([][]byte, 0, len(pubKeys))
	for i, pk := range pubKeys {
		if pk == nil {
			return nil, fmt.Errorf("%w: key %d is nil", ErrInvalidPublicKey, i)
		}
		leaf := Hash160(pk.Compressed())
		if seen[string(leaf)] {
			continue
		}
		seen[string(leaf)] = true
		leaves = append(leaves, leaf)
	}
	sort.Slice(leaves, func(i, j int) bool {
		return bytes.Compare(leaves[i], leaves[j]) < 0
	})

	for len(leaves) > 1 {
		next := make([][]byte, 0, (len(leaves)+1)/2)
		for i := 0; i+1 < len(leaves); i += 2 {
			next = append(next, Hash160(append(append([]byte{}, leaves[i]...), leaves[i+1]...)))
		}
		if len(leaves)%2 == 1 {
			next = append(next, leaves[len(leaves)-1])
		}
		leaves = next
	}
	return leaves[0], nil
}
