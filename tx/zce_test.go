package tx

import (
	"testing"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-sdk/transaction/sighash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bchforge/libcash-go/txscript"
)

// zceFixture is a ZCE-secured payment plus its reclaim transaction.
type zceFixture struct {
	payment    *Transaction
	reclaim    *Transaction
	reclaimRaw []byte
	escrowVout uint32
}

// buildZceFixture assembles a payment spending one P2PKH input into a
// payment output and an escrow output, plus a reclaim transaction
// sweeping the escrow back to the reclaim key.
func buildZceFixture(t *testing.T, alg SigningAlgorithm) *zceFixture {
	t.Helper()
	funding := testKey(t)
	reclaimKey := testKey(t)
	merchant := testKey(t)

	payment := New()
	require.NoError(t, payment.From(p2pkhUtxo(t, funding, 0xaa, 0, 100_000)))
	require.NoError(t, payment.To(testAddress(t, merchant), 60_000))
	require.NoError(t, payment.Escrow(
		[]*ec.PublicKey{funding.PubKey()}, reclaimKey.PubKey(), 30_000))
	require.NoError(t, payment.Sign(funding, 0, alg))

	ok, err := payment.FullySigned()
	require.NoError(t, err)
	require.True(t, ok)

	return zceReclaimFixture(t, payment, funding.PubKey(), reclaimKey, alg)
}

// zceReclaimFixture builds the reclaim transaction that sweeps escrow
// output 1 of an already signed payment back to the reclaim key.
func zceReclaimFixture(t *testing.T, payment *Transaction, fundingPub *ec.PublicKey, reclaimKey *ec.PrivateKey, alg SigningAlgorithm) *zceFixture {
	t.Helper()
	const escrowVout = 1
	escrowValue := payment.Outputs()[escrowVout].Satoshis

	reclaim := New()
	require.NoError(t, reclaim.UncheckedAddInput(
		NewRawInput(payment.Hash(), escrowVout, DefaultSequenceNumber, nil)))
	require.NoError(t, reclaim.AddOutput(&Output{
		Satoshis: escrowValue - 1_000,
		Script:   mustP2PKH(t, reclaimKey),
	}))

	redeem, err := txscript.EscrowRedeemScript(
		[]*ec.PublicKey{fundingPub}, reclaimKey.PubKey())
	require.NoError(t, err)

	digest, err := SighashDigest(reclaim, sighash.AllForkID, 0, redeem, escrowValue)
	require.NoError(t, err)
	sigBytes, err := signDigest(reclaimKey, digest, alg)
	require.NoError(t, err)

	unlock, err := txscript.PushDataScript(
		append(sigBytes, byte(sighash.AllForkID)),
		reclaimKey.PubKey().Compressed(),
		redeem,
	)
	require.NoError(t, err)
	reclaim.Inputs()[0].SetUnlockingScript(unlock)

	return &zceFixture{
		payment:    payment,
		reclaim:    reclaim,
		reclaimRaw: reclaim.Bytes(),
		escrowVout: escrowVout,
	}
}

func mustP2PKH(t *testing.T, priv *ec.PrivateKey) txscript.Script {
	t.Helper()
	script, err := txscript.PublicKeyHashOut(txscript.Hash160(priv.PubKey().Compressed()))
	require.NoError(t, err)
	return script
}

func TestIsZceSecured(t *testing.T) {
	for _, alg := range []SigningAlgorithm{SignECDSA, SignSchnorr} {
		t.Run(string(alg), func(t *testing.T) {
			fx := buildZceFixture(t, alg)
			assert.True(t, fx.payment.IsZceSecured(fx.reclaimRaw, 10_000, 1.0))
		})
	}
}

func TestIsZceSecuredEscrowTooSmall(t *testing.T) {
	fx := buildZceFixture(t, SignECDSA)
	// The escrow holds 30k; demanding 30k of collateral on top of the
	// payment's own fee allowance cannot be met.
	assert.False(t, fx.payment.IsZceSecured(fx.reclaimRaw, 30_000, 1.0))
}

func TestIsZceSecuredReclaimFeeRateTooLow(t *testing.T) {
	fx := buildZceFixture(t, SignECDSA)
	// The reclaim pays 1000 sat over ~240 bytes; a floor of 100 sat/B
	// is far above it.
	assert.False(t, fx.payment.IsZceSecured(fx.reclaimRaw, 1_000, 100.0))
}

func TestIsZceSecuredRejectsUnparsableReclaim(t *testing.T) {
	fx := buildZceFixture(t, SignECDSA)
	assert.False(t, fx.payment.IsZceSecured([]byte{0x00, 0x01}, 1_000, 1.0))
	assert.False(t, fx.payment.IsZceSecured(nil, 1_000, 1.0))
}

func TestIsZceSecuredRejectsForeignReclaim(t *testing.T) {
	fx := buildZceFixture(t, SignECDSA)

	// A reclaim pointing at a different transaction id.
	foreign, err := FromBytes(fx.reclaimRaw)
	require.NoError(t, err)
	foreign.Inputs()[0].base().prevTxID[0] ^= 0x01
	assert.False(t, fx.payment.IsZceSecured(foreign.Bytes(), 1_000, 1.0))

	// A reclaim pointing at a non-existent output index.
	badVout, err := FromBytes(fx.reclaimRaw)
	require.NoError(t, err)
	badVout.Inputs()[0].base().outputIndex = 9
	assert.False(t, fx.payment.IsZceSecured(badVout.Bytes(), 1_000, 1.0))
}

func TestIsZceSecuredRejectsTamperedSignature(t *testing.T) {
	fx := buildZceFixture(t, SignECDSA)

	tampered, err := FromBytes(fx.reclaimRaw)
	require.NoError(t, err)
	chunks, err := tampered.Inputs()[0].UnlockingScript().Chunks()
	require.NoError(t, err)

	sig := append([]byte{}, chunks[0].Data...)
	sig[8] ^= 0x01
	unlock, err := txscript.PushDataScript(sig, chunks[1].Data, chunks[2].Data)
	require.NoError(t, err)
	tampered.Inputs()[0].SetUnlockingScript(unlock)

	assert.False(t, fx.payment.IsZceSecured(tampered.Bytes(), 1_000, 1.0))
}

func TestIsZceSecuredRejectsWrongRedeemScript(t *testing.T) {
	fx := buildZceFixture(t, SignECDSA)

	other := testKey(t)
	wrongRedeem, err := txscript.EscrowRedeemScript(
		[]*ec.PublicKey{other.PubKey()}, other.PubKey())
	require.NoError(t, err)

	modified, err := FromBytes(fx.reclaimRaw)
	require.NoError(t, err)
	chunks, err := modified.Inputs()[0].UnlockingScript().Chunks()
	require.NoError(t, err)
	unlock, err := txscript.PushDataScript(chunks[0].Data, chunks[1].Data, wrongRedeem)
	require.NoError(t, err)
	modified.Inputs()[0].SetUnlockingScript(unlock)

	assert.False(t, fx.payment.IsZceSecured(modified.Bytes(), 1_000, 1.0))
}

func TestIsZceSecuredRequiresP2PKHInputs(t *testing.T) {
	fx := buildZceFixture(t, SignECDSA)

	// Forget the spent-output info on the payment's input.
	fx.payment.Inputs()[0].AttachSpentOutput(nil)
	assert.False(t, fx.payment.IsZceSecured(fx.reclaimRaw, 1_000, 1.0))
}

func TestIsZceSecuredWrongSighashType(t *testing.T) {
	funding := testKey(t)
	reclaimKey := testKey(t)
	merchant := testKey(t)

	payment := New()
	require.NoError(t, payment.From(p2pkhUtxo(t, funding, 0xaa, 0, 100_000)))
	require.NoError(t, payment.To(testAddress(t, merchant), 60_000))
	require.NoError(t, payment.Escrow(
		[]*ec.PublicKey{funding.PubKey()}, reclaimKey.PubKey(), 30_000))

	// Sign the funding input with SIGHASH_NONE|FORKID instead of ALL.
	noneFork := sighash.Flag(0x02 | 0x40)
	require.NoError(t, payment.Sign(funding, noneFork, SignECDSA))

	// A valid reclaim of this very payment, so only the sighash type of
	// the payment's signature can make the check fail.
	fx := zceReclaimFixture(t, payment, funding.PubKey(), reclaimKey, SignECDSA)
	assert.False(t, payment.IsZceSecured(fx.reclaimRaw, 1_000, 1.0))
}
