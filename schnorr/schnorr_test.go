package schnorr

import (
	"crypto/sha256"
	"testing"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) *ec.PrivateKey {
	t.Helper()
	priv, err := ec.NewPrivateKey()
	require.NoError(t, err)
	return priv
}

func digestOf(data string) []byte {
	d := sha256.Sum256([]byte(data))
	return d[:]
}

func TestSignVerify(t *testing.T) {
	priv := testKey(t)
	digest := digestOf("schnorr round trip")

	sig, err := Sign(priv, digest)
	require.NoError(t, err)
	assert.Len(t, sig, SignatureSize)

	assert.True(t, Verify(sig, digest, priv.PubKey()))
}

func TestSignDeterministic(t *testing.T) {
	priv := testKey(t)
	digest := digestOf("same message")

	sig1, err := Sign(priv, digest)
	require.NoError(t, err)
	sig2, err := Sign(priv, digest)
	require.NoError(t, err)
	assert.Equal(t, sig1, sig2)
}

func TestVerifyRejectsWrongMessage(t *testing.T) {
	priv := testKey(t)
	sig, err := Sign(priv, digestOf("message one"))
	require.NoError(t, err)

	assert.False(t, Verify(sig, digestOf("message two"), priv.PubKey()))
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	priv := testKey(t)
	other := testKey(t)
	digest := digestOf("key binding")

	sig, err := Sign(priv, digest)
	require.NoError(t, err)

	assert.False(t, Verify(sig, digest, other.PubKey()))
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	priv := testKey(t)
	digest := digestOf("tamper")

	sig, err := Sign(priv, digest)
	require.NoError(t, err)

	for _, i := range []int{0, 31, 32, 63} {
		bad := append([]byte{}, sig...)
		bad[i] ^= 0x01
		assert.False(t, Verify(bad, digest, priv.PubKey()), "flipped byte %d", i)
	}
}

func TestVerifyRejectsMalformedInputs(t *testing.T) {
	priv := testKey(t)
	digest := digestOf("sizes")
	sig, err := Sign(priv, digest)
	require.NoError(t, err)

	assert.False(t, Verify(sig[:63], digest, priv.PubKey()))
	assert.False(t, Verify(append(sig, 0x00), digest, priv.PubKey()))
	assert.False(t, Verify(sig, digest[:31], priv.PubKey()))
	assert.False(t, Verify(sig, digest, nil))
	assert.False(t, Verify(make([]byte, SignatureSize), digest, priv.PubKey()))
}

func TestSignRejectsBadArguments(t *testing.T) {
	priv := testKey(t)

	_, err := Sign(nil, digestOf("x"))
	assert.ErrorIs(t, err, ErrNilKey)

	_, err = Sign(priv, []byte("short"))
	assert.ErrorIs(t, err, ErrInvalidDigest)
}
