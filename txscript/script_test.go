package txscript

import (
	"bytes"
	"testing"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKeys(t *testing.T, n int) []*ec.PublicKey {
	t.Helper()
	keys := make([]*ec.PublicKey, n)
	for i := range keys {
		priv, err := ec.NewPrivateKey()
		require.NoError(t, err)
		keys[i] = priv.PubKey()
	}
	return keys
}

func TestPublicKeyHashOut(t *testing.T) {
	pkh := bytes.Repeat([]byte{0x11}, 20)
	s, err := PublicKeyHashOut(pkh)
	require.NoError(t, err)

	assert.Len(t, s.Bytes(), 25)
	assert.True(t, s.IsPublicKeyHashOut())
	assert.False(t, s.IsScriptHashOut())
	assert.False(t, s.IsPublicKeyOut())
	assert.False(t, s.IsDataOut())

	got, err := s.PublicKeyHash()
	require.NoError(t, err)
	assert.Equal(t, pkh, got)

	_, err = PublicKeyHashOut([]byte{0x01})
	assert.ErrorIs(t, err, ErrInvalidHashLength)
}

func TestScriptHashOut(t *testing.T) {
	sh := bytes.Repeat([]byte{0x22}, 20)
	s, err := ScriptHashOut(sh)
	require.NoError(t, err)

	assert.Len(t, s.Bytes(), 23)
	assert.True(t, s.IsScriptHashOut())
	assert.False(t, s.IsPublicKeyHashOut())

	got, err := s.ScriptHash()
	require.NoError(t, err)
	assert.Equal(t, sh, got)
}

func TestPublicKeyOut(t *testing.T) {
	keys := testKeys(t, 1)
	s, err := PublicKeyOut(keys[0])
	require.NoError(t, err)

	assert.True(t, s.IsPublicKeyOut())
	got, err := s.PublicKey()
	require.NoError(t, err)
	assert.Equal(t, keys[0].Compressed(), got)

	_, err = PublicKeyOut(nil)
	assert.ErrorIs(t, err, ErrInvalidPublicKey)
}

func TestMultisigOut(t *testing.T) {
	keys := testKeys(t, 3)
	s, err := MultisigOut(keys, 2)
	require.NoError(t, err)

	assert.True(t, s.IsMultisigOut())
	assert.False(t, s.IsPublicKeyHashOut())

	_, err = MultisigOut(keys, 4)
	assert.ErrorIs(t, err, ErrInvalidThreshold)
	_, err = MultisigOut(keys, 0)
	assert.ErrorIs(t, err, ErrInvalidThreshold)
}

func TestDataOut(t *testing.T) {
	s, err := DataOut([]byte("hello tokens"))
	require.NoError(t, err)
	assert.True(t, s.IsDataOut())
	assert.False(t, s.IsPublicKeyHashOut())

	empty, err := DataOut(nil)
	require.NoError(t, err)
	assert.True(t, empty.IsDataOut())

	_, err = DataOut(bytes.Repeat([]byte{0x00}, MaxDataCarrierSize))
	assert.ErrorIs(t, err, ErrDataTooLarge)
}

func TestWitnessPredicates(t *testing.T) {
	keyHash := append([]byte{0x00, 0x14}, bytes.Repeat([]byte{0x33}, 20)...)
	assert.True(t, Script(keyHash).IsWitnessKeyHashOut())

	scriptHash := append([]byte{0x00, 0x20}, bytes.Repeat([]byte{0x44}, 32)...)
	assert.True(t, Script(scriptHash).IsWitnessScriptHashOut())

	assert.False(t, Script(keyHash).IsWitnessScriptHashOut())
	assert.False(t, Script(scriptHash).IsWitnessKeyHashOut())
}

func TestPushDataScript(t *testing.T) {
	s, err := PushDataScript([]byte{0x01, 0x02}, bytes.Repeat([]byte{0x77}, 33))
	require.NoError(t, err)

	chunks, err := s.Chunks()
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, []byte{0x01, 0x02}, chunks[0].Data)
	assert.Len(t, chunks[1].Data, 33)
}

func TestMultisigIn(t *testing.T) {
	sigA := bytes.Repeat([]byte{0x30}, 71)
	sigB := bytes.Repeat([]byte{0x31}, 72)

	s, err := MultisigIn([][]byte{sigA, sigB})
	require.NoError(t, err)
	chunks, err := s.Chunks()
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Empty(t, chunks[0].Data)
	assert.Equal(t, sigA, chunks[1].Data)
	assert.Equal(t, sigB, chunks[2].Data)

	redeem := Script(bytes.Repeat([]byte{0x51}, 5))
	full, err := MultisigScriptHashIn([][]byte{sigA}, redeem)
	require.NoError(t, err)
	chunks, err = full.Chunks()
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, redeem.Bytes(), chunks[2].Data)
}

func TestAddressRoundTrip(t *testing.T) {
	priv, err := ec.NewPrivateKey()
	require.NoError(t, err)

	addr, err := AddressFromPublicKey(priv.PubKey(), &MainNet)
	require.NoError(t, err)

	decoded, err := DecodeAddress(addr.AddressString)
	require.NoError(t, err)
	assert.Equal(t, []byte(addr.PublicKeyHash), []byte(decoded.PublicKeyHash))

	lock, err := PayToAddress(decoded)
	require.NoError(t, err)
	assert.True(t, lock.IsPublicKeyHashOut())

	pkh, err := lock.PublicKeyHash()
	require.NoError(t, err)
	assert.Equal(t, Hash160(priv.PubKey().Compressed()), pkh)

	_, err = DecodeAddress("definitely not an address")
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestEscrowRedeemScript(t *testing.T) {
	keys := testKeys(t, 4)
	reclaim := keys[0]
	funding := keys[1:]

	redeem, err := EscrowRedeemScript(funding, reclaim)
	require.NoError(t, err)

	// The last five elements are the reclaim path:
	// OP_DUP OP_HASH160 <20> OP_EQUALVERIFY OP_CHECKSIG
	chunks, err := redeem.Chunks()
	require.NoError(t, err)
	last := chunks[len(chunks)-1]
	assert.EqualValues(t, 0xac, last.Op)

	// Key order must not matter: the tree sorts its leaves.
	shuffled := []*ec.PublicKey{funding[2], funding[0], funding[1]}
	redeem2, err := EscrowRedeemScript(shuffled, reclaim)
	require.NoError(t, err)
	assert.Equal(t, redeem.Bytes(), redeem2.Bytes())

	// Duplicate keys collapse into one leaf.
	redeem3, err := EscrowRedeemScript(append(funding, funding[0]), reclaim)
	require.NoError(t, err)
	assert.Equal(t, redeem.Bytes(), redeem3.Bytes())

	// A different key set changes the script.
	other := testKeys(t, 1)
	redeem4, err := EscrowRedeemScript(other, reclaim)
	require.NoError(t, err)
	assert.NotEqual(t, redeem.Bytes(), redeem4.Bytes())

	_, err = EscrowRedeemScript(nil, reclaim)
	assert.ErrorIs(t, err, ErrInvalidPublicKey)
	_, err = EscrowRedeemScript(funding, nil)
	assert.ErrorIs(t, err, ErrInvalidPublicKey)
}

func TestEscrowOut(t *testing.T) {
	keys := testKeys(t, 3)
	out, err := EscrowOut(keys[1:], keys[0])
	require.NoError(t, err)
	assert.True(t, out.IsScriptHashOut())

	redeem, err := EscrowRedeemScript(keys[1:], keys[0])
	require.NoError(t, err)
	sh, err := out.ScriptHash()
	require.NoError(t, err)
	assert.Equal(t, Hash160(redeem), sh)
}
