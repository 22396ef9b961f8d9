package tx

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bchforge/libcash-go/txscript"
)

func TestSortOutputsByValue(t *testing.T) {
	priv := testKey(t)
	tr := New()
	require.NoError(t, tr.From(p2pkhUtxo(t, priv, 0xaa, 0, 10_000)))
	require.NoError(t, tr.AddOutput(&Output{Satoshis: 200, Script: txscript.Script{0x51}}))
	require.NoError(t, tr.AddOutput(&Output{Satoshis: 100, Script: txscript.Script{0x52}}))

	require.NoError(t, tr.Sort())
	assert.Equal(t, uint64(100), tr.Outputs()[0].Satoshis)
	assert.Equal(t, uint64(200), tr.Outputs()[1].Satoshis)

	// Sorting again must not change anything.
	before := tr.Bytes()
	require.NoError(t, tr.Sort())
	assert.Equal(t, before, tr.Bytes())
}

func TestSortOutputsTieBreaksOnScript(t *testing.T) {
	priv := testKey(t)
	tr := New()
	require.NoError(t, tr.From(p2pkhUtxo(t, priv, 0xaa, 0, 10_000)))
	require.NoError(t, tr.AddOutput(&Output{Satoshis: 100, Script: txscript.Script{0x52, 0x01}}))
	require.NoError(t, tr.AddOutput(&Output{Satoshis: 100, Script: txscript.Script{0x51, 0xff}}))

	require.NoError(t, tr.Sort())
	assert.Equal(t, txscript.Script{0x51, 0xff}, tr.Outputs()[0].Script)
	assert.Equal(t, txscript.Script{0x52, 0x01}, tr.Outputs()[1].Script)
}

func TestSortOutputsStableForEqualKeys(t *testing.T) {
	priv := testKey(t)
	tr := New()
	require.NoError(t, tr.From(p2pkhUtxo(t, priv, 0xaa, 0, 10_000)))

	first := &Output{Satoshis: 100, Script: txscript.Script{0x51}}
	second := &Output{Satoshis: 100, Script: txscript.Script{0x51}}
	require.NoError(t, tr.AddOutput(first))
	require.NoError(t, tr.AddOutput(second))

	require.NoError(t, tr.Sort())
	assert.Same(t, first, tr.Outputs()[0])
	assert.Same(t, second, tr.Outputs()[1])
}

func TestSortInputsByTxIDThenIndex(t *testing.T) {
	priv := testKey(t)
	tr := New()
	// Display order reverses the stored bytes, so 0xbb... sorts after 0xaa...
	require.NoError(t, tr.From(p2pkhUtxo(t, priv, 0xbb, 1, 10_000)))
	require.NoError(t, tr.From(p2pkhUtxo(t, priv, 0xbb, 0, 10_000)))
	require.NoError(t, tr.From(p2pkhUtxo(t, priv, 0xaa, 5, 10_000)))

	require.NoError(t, tr.Sort())
	ins := tr.Inputs()
	assert.Equal(t, byte(0xaa), ins[0].PrevTxID()[0])
	assert.Equal(t, uint32(0), ins[1].OutputIndex())
	assert.Equal(t, uint32(1), ins[2].OutputIndex())
}

func TestSortRebindsChangeIndex(t *testing.T) {
	priv := testKey(t)
	dest := testKey(t)

	tr := New()
	require.NoError(t, tr.From(p2pkhUtxo(t, priv, 0xaa, 0, 100_000)))
	require.NoError(t, tr.To(testAddress(t, dest), 60_000))
	require.NoError(t, tr.Change(testAddress(t, priv)))

	change := tr.ChangeOutput()
	require.NotNil(t, change)
	require.Less(t, change.Satoshis, uint64(60_000), "change must sort before the payment")

	require.NoError(t, tr.Sort())
	assert.Equal(t, 0, tr.ChangeIndex())
	assert.Same(t, change, tr.ChangeOutput())
	assert.True(t, tr.ChangeOutput().Script.Equal(tr.ChangeScript()))
}

func TestSortInputsClearsSignatures(t *testing.T) {
	priv := testKey(t)
	dest := testKey(t)

	tr := New()
	require.NoError(t, tr.From(p2pkhUtxo(t, priv, 0xbb, 0, 50_000)))
	require.NoError(t, tr.From(p2pkhUtxo(t, priv, 0xaa, 0, 50_000)))
	require.NoError(t, tr.To(testAddress(t, dest), 90_000))
	require.NoError(t, tr.Fee(10_000))
	require.NoError(t, tr.Sign(priv, 0, SignECDSA))

	require.NoError(t, tr.Sort())
	for _, in := range tr.Inputs() {
		assert.Empty(t, in.UnlockingScript())
	}
}

func TestSortRejectsNonPermutation(t *testing.T) {
	priv := testKey(t)
	tr := New()
	require.NoError(t, tr.From(p2pkhUtxo(t, priv, 0xaa, 0, 10_000)))
	require.NoError(t, tr.From(p2pkhUtxo(t, priv, 0xbb, 0, 10_000)))

	err := tr.SortInputs(func(ins []Input) []Input {
		return ins[:1] // dropped an element
	})
	assert.ErrorIs(t, err, ErrInvalidSorting)

	err = tr.SortInputs(func(ins []Input) []Input {
		return []Input{ins[0], ins[0]} // duplicated an element
	})
	assert.ErrorIs(t, err, ErrInvalidSorting)

	require.NoError(t, tr.AddOutput(&Output{Satoshis: 1_000, Script: txscript.Script{0x51}}))
	err = tr.SortOutputs(func(outs []*Output) []*Output {
		clone := *outs[0]
		return []*Output{&clone} // same content, different identity
	})
	assert.ErrorIs(t, err, ErrInvalidSorting)
}

func TestBip69InputCompareUsesDisplayOrder(t *testing.T) {
	priv := testKey(t)

	// Stored bytes 0x00..02 vs 0x01..01: display order reverses them,
	// so the input whose *display* txid is smaller must come first.
	a := p2pkhUtxo(t, priv, 0x00, 0, 10_000)
	a.TxID = append(bytes.Repeat([]byte{0x00}, 31), 0x02)
	b := p2pkhUtxo(t, priv, 0x00, 0, 10_000)
	b.TxID = append(bytes.Repeat([]byte{0x01}, 31), 0x01)

	tr := New()
	require.NoError(t, tr.From(a, b))
	require.NoError(t, tr.Sort())

	assert.Equal(t, b.TxID, tr.Inputs()[0].PrevTxID(),
		"display-order txid 0x01... sorts before 0x02...")
}
