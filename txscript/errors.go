package txscript

import "errors"

var (
	// ErrInvalidAddress indicates an address string could not be decoded.
	ErrInvalidAddress = errors.New("txscript: invalid address")

	// ErrInvalidPublicKey indicates a public key is nil or malformed.
	ErrInvalidPublicKey = errors.New("txscript: invalid public key")

	// ErrInvalidHashLength indicates a hash operand has the wrong length.
	ErrInvalidHashLength = errors.New("txscript: invalid hash length")

	// ErrInvalidThreshold indicates a multisig threshold is out of range.
	ErrInvalidThreshold = errors.New("txscript: invalid multisig threshold")

	// ErrScriptBuild indicates script assembly failed.
	ErrScriptBuild = errors.New("txscript: script build failed")

	// ErrDataTooLarge indicates an OP_RETURN payload exceeds the relay limit.
	ErrDataTooLarge = errors.New("txscript: data payload too large")
)
