package tx

import (
	"bytes"
	"sort"
)

// Sort applies BIP-69 deterministic ordering: inputs by display-order
// txid then output index, outputs by value then script bytes. Equal
// keys keep their original relative order, and the change index follows
// its output.
func (t *Transaction) Sort() error {
	err := t.SortInputs(func(ins []Input) []Input {
		sort.SliceStable(ins, func(i, j int) bool {
			a, b := ins[i], ins[j]
			if c := bytes.Compare(reverseBytes(a.PrevTxID()), reverseBytes(b.PrevTxID())); c != 0 {
				return c < 0
			}
			return a.OutputIndex() < b.OutputIndex()
		})
		return ins
	})
	if err != nil {
		return err
	}
	return t.SortOutputs(func(outs []*Output) []*Output {
		sort.SliceStable(outs, func(i, j int) bool {
			a, b := outs[i], outs[j]
			if a.Satoshis != b.Satoshis {
				return a.Satoshis < b.Satoshis
			}
			return bytes.Compare(a.Script, b.Script) < 0
		})
		return outs
	})
}

// SortInputs reorders inputs with an arbitrary strategy. The strategy
// must return a permutation of the elements it was given; reordering
// clears all signatures.
func (t *Transaction) SortInputs(strategy func([]Input) []Input) error {
	proposed := strategy(append([]Input{}, t.inputs...))
	if !isInputPermutation(t.inputs, proposed) {
		return ErrInvalidSorting
	}
	t.inputs = proposed
	t.clearSignatures()
	return nil
}

// SortOutputs reorders outputs with an arbitrary strategy, rebinding
// the change index to the moved change output.
func (t *Transaction) SortOutputs(strategy func([]*Output) []*Output) error {
	var change *Output
	if t.changeIndex >= 0 {
		change = t.outputs[t.changeIndex]
	}
	proposed := strategy(append([]*Output{}, t.outputs...))
	if !isOutputPermutation(t.outputs, proposed) {
		return ErrInvalidSorting
	}
	t.outputs = proposed
	if change != nil {
		t.changeIndex = -1
		for i, o := range t.outputs {
			if o == change {
				t.changeIndex = i
				break
			}
		}
	}
	t.clearSignatures()
	return nil
}

// isInputPermutation checks element-identity equality of two input
// multisets.
func isInputPermutation(original, proposed []Input) bool {
	if len(original) != len(proposed) {
		return false
	}
	seen := make(map[Input]int, len(original))
	for _, in := range original {
		seen[in]++
	}
	for _, in := range proposed {
		seen[in]--
		if seen[in] < 0 {
			return false
		}
	}
	return true
}

// isOutputPermutation checks element-identity equality of two output
// multisets.
func isOutputPermutation(original, proposed []*Output) bool {
	if len(original) != len(proposed) {
		return false
	}
	seen := make(map[*Output]int, len(original))
	for _, o := range original {
		seen[o]++
	}
	for _, o := range proposed {
		seen[o]--
		if seen[o] < 0 {
			return false
		}
	}
	return true
}
