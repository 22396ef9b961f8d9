package schnorr

import "errors"

var (
	// ErrNilKey indicates a nil or out-of-range private key.
	ErrNilKey = errors.New("schnorr: invalid private key")

	// ErrInvalidDigest indicates the message digest is not 32 bytes.
	ErrInvalidDigest = errors.New("schnorr: invalid digest")

	// ErrBadNonce indicates nonce derivation produced a degenerate
	// signature and signing must be retried with a different message.
	ErrBadNonce = errors.New("schnorr: degenerate nonce")
)
