package tx

import "errors"

var (
	// ErrInvalidArgument indicates a builder argument failed validation.
	ErrInvalidArgument = errors.New("tx: invalid argument")

	// ErrNoData indicates there were no bytes to parse.
	ErrNoData = errors.New("tx: no transaction data")

	// ErrInvalidSatoshis indicates an output value is outside [0, MaxMoney].
	ErrInvalidSatoshis = errors.New("tx: invalid satoshis")

	// ErrInvalidOutputAmountSum indicates the output total exceeds MaxMoney.
	ErrInvalidOutputAmountSum = errors.New("tx: output amount sum exceeds maximum")

	// ErrFeeDifferent indicates the explicit fee does not match unspent value.
	ErrFeeDifferent = errors.New("tx: unspent value differs from specified fee")

	// ErrFeeTooLarge indicates the implicit fee exceeds the safety bound.
	ErrFeeTooLarge = errors.New("tx: fee too large")

	// ErrFeeTooSmall indicates the implicit fee is below the safety bound.
	ErrFeeTooSmall = errors.New("tx: fee too small")

	// ErrChangeAddressMissing indicates surplus funds with no change script.
	ErrChangeAddressMissing = errors.New("tx: change address missing")

	// ErrDustOutputs indicates a non-data output below the dust threshold.
	ErrDustOutputs = errors.New("tx: dust output")

	// ErrMissingSignatures indicates the transaction is not fully signed.
	ErrMissingSignatures = errors.New("tx: missing signatures")

	// ErrMissingUtxoInfo indicates an input lacks its spent-output data.
	ErrMissingUtxoInfo = errors.New("tx: missing unspent output information")

	// ErrUnsupportedScript indicates no input template matches a script.
	ErrUnsupportedScript = errors.New("tx: unsupported script type")

	// ErrInvalidIndex indicates an index is outside the valid range.
	ErrInvalidIndex = errors.New("tx: invalid index")

	// ErrInvalidSorting indicates a sort function did not return a
	// permutation of the elements it was given.
	ErrInvalidSorting = errors.New("tx: sort function did not return a permutation")

	// ErrLockTimeTooEarly indicates a lock date below the block height limit.
	ErrLockTimeTooEarly = errors.New("tx: lock time too early")

	// ErrBlockHeightTooHigh indicates a lock height at or above the limit.
	ErrBlockHeightTooHigh = errors.New("tx: block height too high")

	// ErrNLockTimeOutOfRange indicates nLockTime outside [0, 2^32-1].
	ErrNLockTimeOutOfRange = errors.New("tx: nLockTime out of range")

	// ErrUnableToVerifySignature indicates the input template cannot
	// verify signatures (unrecognized script shape).
	ErrUnableToVerifySignature = errors.New("tx: unable to verify signature")

	// ErrNotImplemented is the sentinel returned by the raw input
	// template for capabilities it cannot provide.
	ErrNotImplemented = errors.New("tx: not implemented for raw input")

	// ErrInvalidSighashType indicates a sighash type without the fork id
	// bit, which this chain does not sign.
	ErrInvalidSighashType = errors.New("tx: sighash type must include fork id")

	// ErrTokenValidation indicates a CashToken category accounting violation.
	ErrTokenValidation = errors.New("tx: token validation failed")

	// ErrInvalidHash indicates an object-form hash mismatch.
	ErrInvalidHash = errors.New("tx: hash does not match transaction contents")
)
