package tx

import (
	"bytes"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-sdk/transaction/sighash"

	"github.com/bchforge/libcash-go/txscript"
)

// IsZceSecured reports whether this payment is secured by a
// zero-confirmation escrow: an escrow output whose redeem script
// commits to every funding key, paired with a reclaim transaction that
// can sweep the escrow at a sufficient fee rate. reclaimRaw is the
// serialized reclaim transaction, escrowSatoshis the collateral the
// escrow must hold beyond this transaction's own fee allowance, and
// minFeeRate the floor in satoshis per byte.
//
// This is a yes/no question by design; diagnosing why a payment is not
// escrow-secured is the caller's concern.
func (t *Transaction) IsZceSecured(reclaimRaw []byte, escrowSatoshis uint64, minFeeRate float64) bool {
	if len(t.inputs) == 0 || len(t.inputs) > MaxZceInputs {
		return false
	}

	// Every funding input must spend a P2PKH output so its public key
	// is recoverable from the unlocking script.
	for _, in := range t.inputs {
		out := in.SpentOutput()
		if out == nil || !out.Script.IsPublicKeyHashOut() {
			return false
		}
	}

	reclaim, err := FromBytes(reclaimRaw)
	if err != nil || len(reclaim.inputs) != 1 {
		return false
	}
	reclaimIn := reclaim.inputs[0]
	if !bytes.Equal(reclaimIn.PrevTxID(), t.Hash()) {
		return false
	}
	vout := reclaimIn.OutputIndex()
	if vout >= uint32(len(t.outputs)) {
		return false
	}
	escrowUtxo := t.outputs[vout]

	// The escrow must hold the collateral plus this transaction's own
	// minimum fee, so a double-spend forfeits at least escrowSatoshis.
	required := float64(escrowSatoshis) + float64(t.SerializedSize())*minFeeRate
	if float64(escrowUtxo.Satoshis) < required {
		return false
	}

	// The reclaim must itself be relayable at the floor rate.
	reclaimFee := int64(escrowUtxo.Satoshis) - int64(reclaim.OutputAmount())
	if reclaimFee < 0 {
		return false
	}
	if float64(reclaimFee)/float64(reclaim.SerializedSize()) < minFeeRate {
		return false
	}

	// The reclaim input must be exactly <sig> <pubkey> <redeem script>.
	chunks, err := reclaimIn.UnlockingScript().Chunks()
	if err != nil || len(chunks) != 3 {
		return false
	}
	reclaimSig := chunks[0].Data
	reclaimPubBytes := chunks[1].Data
	redeemScript := txscript.Script(chunks[2].Data)
	if !endsWithAllForkID(reclaimSig) || len(reclaimPubBytes) == 0 || len(redeemScript) == 0 {
		return false
	}

	// Collect the funding public keys; every funding signature must
	// also commit to SIGHASH_ALL | SIGHASH_FORKID.
	inputPubKeys := make([]*ec.PublicKey, 0, len(t.inputs))
	for _, in := range t.inputs {
		inChunks, err := in.UnlockingScript().Chunks()
		if err != nil || len(inChunks) != 2 {
			return false
		}
		if !endsWithAllForkID(inChunks[0].Data) {
			return false
		}
		pub, err := ec.PublicKeyFromBytes(inChunks[1].Data)
		if err != nil {
			return false
		}
		inputPubKeys = append(inputPubKeys, pub)
	}

	reclaimPub, err := ec.PublicKeyFromBytes(reclaimPubBytes)
	if err != nil {
		return false
	}

	// The escrow output and the provided redeem script must both hash
	// to the redeem script expected for this exact key set.
	expectedRedeem, err := txscript.EscrowRedeemScript(inputPubKeys, reclaimPub)
	if err != nil {
		return false
	}
	expectedHash := txscript.Hash160(expectedRedeem)
	escrowHash, err := escrowUtxo.Script.ScriptHash()
	if err != nil || !bytes.Equal(escrowHash, expectedHash) {
		return false
	}
	if !bytes.Equal(txscript.Hash160(redeemScript), expectedHash) {
		return false
	}

	// Finally the reclaim signature itself must verify over the escrow
	// value with the redeem script as subscript.
	flag := sighash.Flag(reclaimSig[len(reclaimSig)-1])
	digest, err := SighashDigest(reclaim, flag, 0, redeemScript, escrowUtxo.Satoshis)
	if err != nil {
		return false
	}
	return verifyDigest(reclaimSig[:len(reclaimSig)-1], digest, reclaimPub)
}

// endsWithAllForkID checks a script-pushed signature's trailing
// sighash-type byte.
func endsWithAllForkID(sig []byte) bool {
	return len(sig) > 1 && sig[len(sig)-1] == byte(sighash.AllForkID)
}
