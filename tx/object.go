package tx

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/bchforge/libcash-go/txscript"
)

// Object is the generic (JSON-friendly) transaction form. Hashes and
// scripts are hex strings; the txid and token categories use display
// (big-endian) order.
type Object struct {
	Hash         string          `json:"hash,omitempty"`
	Version      int32           `json:"version"`
	Inputs       []*InputObject  `json:"inputs"`
	Outputs      []*OutputObject `json:"outputs"`
	NLockTime    uint32          `json:"nLockTime"`
	ChangeScript string          `json:"changeScript,omitempty"`
	ChangeIndex  *int            `json:"changeIndex,omitempty"`
	Fee          *int64          `json:"fee,omitempty"`
}

// InputObject is the generic form of one input.
type InputObject struct {
	PrevTxID       string        `json:"prevTxId"`
	OutputIndex    uint32        `json:"outputIndex"`
	SequenceNumber uint32        `json:"sequenceNumber"`
	Script         string        `json:"script"`
	Output         *OutputObject `json:"output,omitempty"`
}

// OutputObject is the generic form of one output.
type OutputObject struct {
	Satoshis uint64       `json:"satoshis"`
	Script   string       `json:"script"`
	Token    *TokenObject `json:"token,omitempty"`
}

// TokenObject is the generic form of a token payload.
type TokenObject struct {
	Category string     `json:"category"`
	Amount   string     `json:"amount"`
	NFT      *NFTObject `json:"nft,omitempty"`
}

// NFTObject is the generic form of an NFT payload.
type NFTObject struct {
	Capability string `json:"capability"`
	Commitment string `json:"commitment,omitempty"`
}

// ToObject converts the transaction and its builder state.
func (t *Transaction) ToObject() *Object {
	obj := &Object{
		Hash:      t.ID(),
		Version:   t.version,
		NLockTime: t.nLockTime,
		Inputs:    []*InputObject{},
		Outputs:   []*OutputObject{},
	}
	for _, in := range t.inputs {
		io := &InputObject{
			PrevTxID:       hex.EncodeToString(reverseBytes(in.PrevTxID())),
			OutputIndex:    in.OutputIndex(),
			SequenceNumber: in.SequenceNumber(),
			Script:         in.UnlockingScript().Hex(),
		}
		if out := in.SpentOutput(); out != nil {
			io.Output = outputToObject(out)
		}
		obj.Inputs = append(obj.Inputs, io)
	}
	for _, o := range t.outputs {
		obj.Outputs = append(obj.Outputs, outputToObject(o))
	}
	if t.changeScript != nil {
		obj.ChangeScript = t.changeScript.Hex()
	}
	if t.changeIndex >= 0 {
		idx := t.changeIndex
		obj.ChangeIndex = &idx
	}
	if t.feeOverride >= 0 {
		fee := t.feeOverride
		obj.Fee = &fee
	}
	return obj
}

func outputToObject(o *Output) *OutputObject {
	oo := &OutputObject{
		Satoshis: o.Satoshis,
		Script:   o.Script.Hex(),
	}
	if o.Token != nil {
		oo.Token = &TokenObject{
			Category: o.Token.CategoryHex(),
			Amount:   o.Token.FungibleAmount().String(),
		}
		if o.Token.NFT != nil {
			oo.Token.NFT = &NFTObject{
				Capability: string(o.Token.NFT.Capability),
				Commitment: hex.EncodeToString(o.Token.NFT.Commitment),
			}
		}
	}
	return oo
}

// FromObject reconstructs a transaction from its generic form. A
// populated Hash field must match the reconstructed id.
func FromObject(obj *Object) (*Transaction, error) {
	if obj == nil {
		return nil, fmt.Errorf("%w: nil object", ErrInvalidArgument)
	}
	t := New()
	t.version = obj.Version
	t.nLockTime = obj.NLockTime

	for i, io := range obj.Inputs {
		in, err := inputFromObject(io)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		t.inputs = append(t.inputs, in)
	}
	for i, oo := range obj.Outputs {
		out, err := outputFromObject(oo)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
		t.outputs = append(t.outputs, out)
	}

	if obj.ChangeScript != "" {
		script, err := txscript.NewFromHex(obj.ChangeScript)
		if err != nil {
			return nil, fmt.Errorf("%w: change script: %w", ErrInvalidArgument, err)
		}
		t.changeScript = script
	}
	if obj.ChangeIndex != nil {
		idx := *obj.ChangeIndex
		if idx < 0 || idx >= len(t.outputs) {
			return nil, fmt.Errorf("%w: change index %d of %d", ErrInvalidIndex, idx, len(t.outputs))
		}
		t.changeIndex = idx
	}
	if obj.Fee != nil {
		if *obj.Fee < 0 {
			return nil, fmt.Errorf("%w: fee %d", ErrInvalidArgument, *obj.Fee)
		}
		t.feeOverride = *obj.Fee
	}

	if obj.Hash != "" && obj.Hash != t.ID() {
		return nil, fmt.Errorf("%w: object says %s, contents hash to %s", ErrInvalidHash, obj.Hash, t.ID())
	}
	return t, nil
}

func inputFromObject(io *InputObject) (Input, error) {
	prevTxID, err := TxIDFromHex(io.PrevTxID)
	if err != nil {
		return nil, err
	}
	script, err := txscript.NewFromHex(io.Script)
	if err != nil {
		return nil, fmt.Errorf("%w: script: %w", ErrInvalidArgument, err)
	}
	if io.Output == nil {
		return NewRawInput(prevTxID, io.OutputIndex, io.SequenceNumber, script), nil
	}

	out, err := outputFromObject(io.Output)
	if err != nil {
		return nil, err
	}
	utxo := &UnspentOutput{
		TxID:           prevTxID,
		OutputIndex:    io.OutputIndex,
		Script:         out.Script,
		Satoshis:       out.Satoshis,
		SequenceNumber: io.SequenceNumber,
		Token:          out.Token,
	}
	in, err := inputFromUtxo(utxo)
	if err != nil {
		return nil, err
	}
	in.base().unlockingScript = script
	return in, nil
}

func outputFromObject(oo *OutputObject) (*Output, error) {
	script, err := txscript.NewFromHex(oo.Script)
	if err != nil {
		return nil, fmt.Errorf("%w: script: %w", ErrInvalidArgument, err)
	}
	out := &Output{Satoshis: oo.Satoshis, Script: script}
	if oo.Token != nil {
		token, err := tokenFromObject(oo.Token)
		if err != nil {
			return nil, err
		}
		out.Token = token
	}
	return out, nil
}

func tokenFromObject(to *TokenObject) (*TokenData, error) {
	categoryBE, err := hex.DecodeString(to.Category)
	if err != nil || len(categoryBE) != 32 {
		return nil, fmt.Errorf("%w: token category %q", ErrInvalidArgument, to.Category)
	}
	amount := new(big.Int)
	if to.Amount != "" {
		if _, ok := amount.SetString(to.Amount, 10); !ok {
			return nil, fmt.Errorf("%w: token amount %q", ErrInvalidArgument, to.Amount)
		}
	}
	token := &TokenData{Category: reverseBytes(categoryBE), Amount: amount}
	if to.NFT != nil {
		commitment, err := hex.DecodeString(to.NFT.Commitment)
		if err != nil {
			return nil, fmt.Errorf("%w: NFT commitment %q", ErrInvalidArgument, to.NFT.Commitment)
		}
		token.NFT = &NFTData{
			Capability: NFTCapability(to.NFT.Capability),
			Commitment: commitment,
		}
	}
	if err := token.validate(); err != nil {
		return nil, err
	}
	return token, nil
}

// MarshalJSON emits the generic object form.
func (t *Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.ToObject())
}

// FromJSON parses the generic object form.
func FromJSON(data []byte) (*Transaction, error) {
	var obj Object
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return FromObject(&obj)
}
