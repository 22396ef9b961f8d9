package tx

import (
	"fmt"
)

// Verify runs the structural sanity checks and describes the first
// failure. It is a diagnostic, not a serialization gate: a nil result
// means the transaction is structurally sound, not that it is signed or
// economically sensible.
func (t *Transaction) Verify() error {
	if len(t.inputs) == 0 {
		return fmt.Errorf("transaction has no inputs")
	}
	if len(t.outputs) == 0 {
		return fmt.Errorf("transaction has no outputs")
	}

	var total uint64
	for i, o := range t.outputs {
		if !o.ValidSatoshis() {
			return fmt.Errorf("transaction output %d has invalid satoshis %d", i, o.Satoshis)
		}
		total += o.Satoshis
		if total > MaxMoney {
			return fmt.Errorf("transaction output total after output %d exceeds max money", i)
		}
	}

	if size := t.SerializedSize(); size > MaxBlockSize {
		return fmt.Errorf("transaction over the maximum block size: %d bytes", size)
	}

	seen := make(map[string]bool, len(t.inputs))
	for i, in := range t.inputs {
		key := fmt.Sprintf("%x:%d", in.PrevTxID(), in.OutputIndex())
		if seen[key] {
			return fmt.Errorf("transaction input %d duplicates a previous outpoint", i)
		}
		seen[key] = true
	}

	if t.IsCoinbase() {
		n := len(t.inputs[0].UnlockingScript())
		if n < minCoinbaseScriptSize || n > maxCoinbaseScriptSize {
			return fmt.Errorf("coinbase script size %d out of range", n)
		}
		return nil
	}
	for i, in := range t.inputs {
		if in.IsNull() {
			return fmt.Errorf("transaction input %d has a null outpoint", i)
		}
	}
	return nil
}
