package tx

import (
	"bytes"
	"testing"
	"time"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bchforge/libcash-go/txscript"
)

func testKey(t *testing.T) *ec.PrivateKey {
	t.Helper()
	priv, err := ec.NewPrivateKey()
	require.NoError(t, err)
	return priv
}

func testAddress(t *testing.T, priv *ec.PrivateKey) string {
	t.Helper()
	addr, err := txscript.AddressFromPublicKey(priv.PubKey(), &txscript.MainNet)
	require.NoError(t, err)
	return addr.AddressString
}

// p2pkhUtxo builds a spendable P2PKH descriptor for priv.
func p2pkhUtxo(t *testing.T, priv *ec.PrivateKey, txidByte byte, vout uint32, satoshis uint64) *UnspentOutput {
	t.Helper()
	script, err := txscript.PublicKeyHashOut(txscript.Hash160(priv.PubKey().Compressed()))
	require.NoError(t, err)
	return &UnspentOutput{
		TxID:           bytes.Repeat([]byte{txidByte}, 32),
		OutputIndex:    vout,
		Script:         script,
		Satoshis:       satoshis,
		SequenceNumber: DefaultSequenceNumber,
	}
}

func TestEmptyTransactionWireForm(t *testing.T) {
	tr := New()
	assert.Equal(t, "02000000000000000000", tr.Hex())
	assert.Equal(t, int32(2), tr.Version())
	assert.Equal(t, uint32(0), tr.NLockTime())
}

func TestFromHexRoundTrip(t *testing.T) {
	tr, err := FromHex("02000000000000000000")
	require.NoError(t, err)
	assert.Equal(t, "02000000000000000000", tr.Hex())
	assert.Empty(t, tr.Inputs())
	assert.Empty(t, tr.Outputs())
}

func TestFromBytesErrors(t *testing.T) {
	_, err := FromBytes(nil)
	assert.ErrorIs(t, err, ErrNoData)

	_, err = FromBytes([]byte{0x02, 0x00})
	assert.Error(t, err)

	// Trailing bytes break exact round-tripping and must be rejected.
	raw, err := FromHex("02000000000000000000")
	require.NoError(t, err)
	_, err = FromBytes(append(raw.Bytes(), 0x00))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestParseSerializeRoundTrip(t *testing.T) {
	priv := testKey(t)
	dest := testKey(t)

	tr := New()
	require.NoError(t, tr.From(p2pkhUtxo(t, priv, 0xaa, 0, 100_000)))
	require.NoError(t, tr.To(testAddress(t, dest), 90_000))
	require.NoError(t, tr.Fee(10_000))
	require.NoError(t, tr.Sign(priv, 0, SignECDSA))

	raw := tr.Bytes()
	parsed, err := FromBytes(raw)
	require.NoError(t, err)

	assert.Equal(t, raw, parsed.Bytes(), "serialize∘parse must be identity")
	assert.Equal(t, tr.ID(), parsed.ID())
	assert.Len(t, parsed.Inputs(), 1)
	assert.Len(t, parsed.Outputs(), 1)
	assert.Equal(t, tr.Inputs()[0].PrevTxID(), parsed.Inputs()[0].PrevTxID())
	assert.Equal(t, uint64(90_000), parsed.Outputs()[0].Satoshis)
}

func TestCopy(t *testing.T) {
	priv := testKey(t)
	tr := New()
	require.NoError(t, tr.From(p2pkhUtxo(t, priv, 0xaa, 0, 50_000)))
	require.NoError(t, tr.To(testAddress(t, priv), 20_000))
	require.NoError(t, tr.Change(testAddress(t, priv)))

	cp := tr.Copy()
	assert.Equal(t, tr.Bytes(), cp.Bytes())
	assert.Equal(t, tr.ChangeIndex(), cp.ChangeIndex())

	// Mutating the copy must not touch the original.
	require.NoError(t, cp.To(testAddress(t, priv), 1_000))
	assert.NotEqual(t, len(tr.Outputs()), len(cp.Outputs()))
}

func TestSetVersion(t *testing.T) {
	tr := New()
	require.NoError(t, tr.SetVersion(1))
	assert.Equal(t, int32(1), tr.Version())

	assert.ErrorIs(t, tr.SetVersion(0), ErrInvalidArgument)
	assert.ErrorIs(t, tr.SetVersion(3), ErrInvalidArgument)
}

func TestSetNLockTime(t *testing.T) {
	tr := New()
	require.NoError(t, tr.SetNLockTime(123))
	assert.Equal(t, uint32(123), tr.NLockTime())

	assert.ErrorIs(t, tr.SetNLockTime(-1), ErrNLockTimeOutOfRange)
	assert.ErrorIs(t, tr.SetNLockTime(1<<32), ErrNLockTimeOutOfRange)
}

func TestLockTimeClassification(t *testing.T) {
	priv := testKey(t)
	tr := New()
	require.NoError(t, tr.From(p2pkhUtxo(t, priv, 0xaa, 0, 10_000)))

	// Zero locktime reads as neither height nor date.
	_, ok := tr.LockTimeBlockHeight()
	assert.False(t, ok)
	_, ok = tr.LockTimeDate()
	assert.False(t, ok)

	require.NoError(t, tr.LockUntilBlockHeight(650_000))
	height, ok := tr.LockTimeBlockHeight()
	assert.True(t, ok)
	assert.Equal(t, uint32(650_000), height)
	assert.Equal(t, DefaultLockTimeSequenceNumber, tr.Inputs()[0].SequenceNumber(),
		"final sequence numbers must drop to enable the locktime")

	at := time.Unix(1_700_000_000, 0)
	require.NoError(t, tr.LockUntilDate(at))
	date, ok := tr.LockTimeDate()
	assert.True(t, ok)
	assert.Equal(t, at.Unix(), date.Unix())
	_, ok = tr.LockTimeBlockHeight()
	assert.False(t, ok)
}

func TestLockTimeBounds(t *testing.T) {
	tr := New()
	assert.ErrorIs(t, tr.LockUntilBlockHeight(NLockTimeBlockHeightLimit), ErrBlockHeightTooHigh)
	assert.ErrorIs(t, tr.LockUntilDate(time.Unix(1000, 0)), ErrLockTimeTooEarly)
	assert.ErrorIs(t, tr.LockUntilUnix(int64(NLockTimeBlockHeightLimit)-1), ErrLockTimeTooEarly)
	require.NoError(t, tr.LockUntilUnix(int64(NLockTimeBlockHeightLimit)))
}

func TestObjectRoundTrip(t *testing.T) {
	priv := testKey(t)
	dest := testKey(t)
	tr := New()
	require.NoError(t, tr.From(p2pkhUtxo(t, priv, 0xab, 1, 75_000)))
	require.NoError(t, tr.To(testAddress(t, dest), 40_000))
	require.NoError(t, tr.Change(testAddress(t, priv)))

	obj := tr.ToObject()
	back, err := FromObject(obj)
	require.NoError(t, err)

	assert.Equal(t, tr.Bytes(), back.Bytes())
	assert.Equal(t, tr.ID(), back.ID())
	assert.Equal(t, tr.ChangeIndex(), back.ChangeIndex())
	assert.Equal(t, tr.ChangeScript().Hex(), back.ChangeScript().Hex())

	// A stale hash must be rejected.
	obj.Hash = "1111111111111111111111111111111111111111111111111111111111111111"
	_, err = FromObject(obj)
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestJSONRoundTrip(t *testing.T) {
	priv := testKey(t)
	tr := New()
	require.NoError(t, tr.From(p2pkhUtxo(t, priv, 0xcd, 0, 30_000)))
	require.NoError(t, tr.To(testAddress(t, priv), 29_000))

	data, err := tr.MarshalJSON()
	require.NoError(t, err)

	back, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, tr.Bytes(), back.Bytes())
}

func TestVerify(t *testing.T) {
	tr := New()
	require.Error(t, tr.Verify(), "empty transaction has no inputs")

	priv := testKey(t)
	require.NoError(t, tr.From(p2pkhUtxo(t, priv, 0xaa, 0, 10_000)))
	require.Error(t, tr.Verify(), "still no outputs")

	require.NoError(t, tr.To(testAddress(t, priv), 9_000))
	assert.NoError(t, tr.Verify())
}

func TestVerifyDuplicateInputs(t *testing.T) {
	priv := testKey(t)
	tr := New()
	utxo := p2pkhUtxo(t, priv, 0xaa, 0, 10_000)
	require.NoError(t, tr.From(utxo))
	require.NoError(t, tr.To(testAddress(t, priv), 9_000))

	// From suppresses duplicates, so force one in through the unchecked path.
	dup := NewPublicKeyHashInput(utxo)
	require.NoError(t, tr.UncheckedAddInput(dup))
	err := tr.Verify()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicates")
}

func TestCoinbase(t *testing.T) {
	tr := New()
	cb := NewRawInput(make([]byte, 32), 0xffffffff, DefaultSequenceNumber, txscript.Script{0x01, 0x02, 0x03})
	require.NoError(t, tr.UncheckedAddInput(cb))
	priv := testKey(t)
	require.NoError(t, tr.To(testAddress(t, priv), 5_000_000_000))

	assert.True(t, tr.IsCoinbase())
	assert.NoError(t, tr.Verify())
	assert.Equal(t, int64(0), tr.GetFee())

	// Coinbase script length is bounded.
	cb.SetUnlockingScript(bytes.Repeat([]byte{0x00}, 101))
	require.Error(t, tr.Verify())
	cb.SetUnlockingScript(txscript.Script{0x00})
	require.Error(t, tr.Verify())
}

func TestVerifyNullInput(t *testing.T) {
	priv := testKey(t)
	tr := New()
	require.NoError(t, tr.From(p2pkhUtxo(t, priv, 0xaa, 0, 10_000)))
	null := NewRawInput(make([]byte, 32), 0xffffffff, DefaultSequenceNumber, txscript.Script{0x01, 0x02})
	require.NoError(t, tr.UncheckedAddInput(null))
	require.NoError(t, tr.To(testAddress(t, priv), 9_000))

	err := tr.Verify()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "null")
}
