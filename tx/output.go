package tx

import (
	"fmt"

	"github.com/bchforge/libcash-go/codec"
	"github.com/bchforge/libcash-go/txscript"
)

// Output is a transaction output: a satoshi value, a locking script and
// an optional CashToken payload. On the wire the token payload rides as
// a prefix inside the script field.
type Output struct {
	Satoshis uint64
	Script   txscript.Script
	Token    *TokenData
}

// NewOutput builds an output after validating its value and token data.
func NewOutput(satoshis uint64, script txscript.Script, token *TokenData) (*Output, error) {
	o := &Output{Satoshis: satoshis, Script: script, Token: token}
	if !o.ValidSatoshis() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSatoshis, satoshis)
	}
	if token != nil {
		if err := token.validate(); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// ValidSatoshis reports whether the output value is within [0, MaxMoney].
func (o *Output) ValidSatoshis() bool {
	return o.Satoshis <= MaxMoney
}

// IsDust reports whether a non-data output is below the dust threshold.
func (o *Output) IsDust() bool {
	return o.Satoshis < DustAmount && !o.Script.IsDataOut()
}

// Copy deep-copies the output.
func (o *Output) Copy() *Output {
	return &Output{
		Satoshis: o.Satoshis,
		Script:   append(txscript.Script{}, o.Script...),
		Token:    o.Token.Copy(),
	}
}

// wireScript returns the script field as serialized: the token prefix,
// when present, followed by the locking script.
func (o *Output) wireScript() []byte {
	if o.Token == nil {
		return o.Script
	}
	w := codec.NewWriter()
	o.Token.writeTo(w)
	w.WriteBytes(o.Script)
	return w.Bytes()
}

// SerializedSize returns the wire size of the output.
func (o *Output) SerializedSize() int {
	scriptLen := len(o.Script)
	if o.Token != nil {
		scriptLen += o.Token.serializedSize()
	}
	return 8 + codec.VarIntSize(uint64(scriptLen)) + scriptLen
}

// writeTo appends the wire form of the output to w.
func (o *Output) writeTo(w *codec.Writer) {
	w.WriteUint64(o.Satoshis)
	w.WriteVarBytes(o.wireScript())
}

// readOutput parses one output from r.
func readOutput(r *codec.Reader) (*Output, error) {
	satoshis, err := r.ReadUint64()
	if err != nil {
		return nil, err
	}
	rawScript, err := r.ReadVarBytes()
	if err != nil {
		return nil, err
	}
	token, lockingScript, err := splitTokenScript(rawScript)
	if err != nil {
		return nil, err
	}
	return &Output{
		Satoshis: satoshis,
		Script:   append(txscript.Script{}, lockingScript...),
		Token:    token,
	}, nil
}
