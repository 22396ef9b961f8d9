package tx

import (
	"fmt"
)

// SerializeOptions disables individual safety gates of Serialize.
type SerializeOptions struct {
	// DisableAll bypasses every gate.
	DisableAll bool
	// DisableMoreOutputThanInput allows outputs to exceed inputs.
	DisableMoreOutputThanInput bool
	// DisableLargeFees allows fees above the security margin.
	DisableLargeFees bool
	// DisableSmallFees allows fees below the security margin.
	DisableSmallFees bool
	// DisableDustOutputs allows non-data outputs below the dust limit.
	DisableDustOutputs bool
	// DisableIsFullySigned skips the missing-signature gate.
	DisableIsFullySigned bool
}

// Serialize returns the lowercase hex wire form after running the
// safety gates. nil opts means every gate is enforced.
func (t *Transaction) Serialize(opts *SerializeOptions) (string, error) {
	if opts == nil {
		opts = &SerializeOptions{}
	}
	if !opts.DisableAll {
		if err := t.SerializationError(opts); err != nil {
			return "", err
		}
	}
	return t.Hex(), nil
}

// SerializationError runs the safety gates in order and returns the
// first failure, nil when the transaction is safe to broadcast.
func (t *Transaction) SerializationError(opts *SerializeOptions) error {
	if opts == nil {
		opts = &SerializeOptions{}
	}
	for i, o := range t.outputs {
		if !o.ValidSatoshis() {
			return fmt.Errorf("%w: output %d has %d", ErrInvalidSatoshis, i, o.Satoshis)
		}
	}
	unspent := t.UnspentValue()
	if !opts.DisableMoreOutputThanInput && unspent < 0 {
		return fmt.Errorf("%w: outputs exceed inputs by %d", ErrInvalidOutputAmountSum, -unspent)
	}
	if unspent >= 0 {
		if err := t.feeError(opts, unspent); err != nil {
			return err
		}
	}
	if !opts.DisableDustOutputs {
		for i, o := range t.outputs {
			if o.IsDust() {
				return fmt.Errorf("%w: output %d has %d satoshis", ErrDustOutputs, i, o.Satoshis)
			}
		}
	}
	if !opts.DisableIsFullySigned {
		ok, err := t.FullySigned()
		if err != nil {
			return err
		}
		if !ok {
			return ErrMissingSignatures
		}
	}
	return nil
}

// feeError checks the implicit fee against the explicit fee and the
// security-margin band.
func (t *Transaction) feeError(opts *SerializeOptions, unspent int64) error {
	if t.feeOverride >= 0 && t.feeOverride != unspent {
		return fmt.Errorf("%w: specified %d, unspent %d", ErrFeeDifferent, t.feeOverride, unspent)
	}
	if !opts.DisableLargeFees {
		maxFee := FeeSecurityMargin * t.estimateFee()
		if unspent > maxFee {
			if t.changeScript == nil {
				return ErrChangeAddressMissing
			}
			return fmt.Errorf("%w: %d over expected maximum %d", ErrFeeTooLarge, unspent, maxFee)
		}
	}
	if !opts.DisableSmallFees {
		minFee := (t.estimateFee() + FeeSecurityMargin - 1) / FeeSecurityMargin
		if unspent < minFee {
			return fmt.Errorf("%w: %d below expected minimum %d", ErrFeeTooSmall, unspent, minFee)
		}
	}
	return nil
}
