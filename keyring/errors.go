package keyring

import "errors"

var (
	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("keyring: required parameter is nil")

	// ErrKeyNotFound indicates no key is stored for the address.
	ErrKeyNotFound = errors.New("keyring: key not found")

	// ErrDecryptionFailed indicates the passphrase is wrong or the
	// stored envelope is corrupt.
	ErrDecryptionFailed = errors.New("keyring: decryption failed")

	// ErrChecksumMismatch indicates decryption yielded a key that does
	// not match its stored checksum.
	ErrChecksumMismatch = errors.New("keyring: checksum mismatch")

	// ErrStore indicates an underlying database failure.
	ErrStore = errors.New("keyring: store failure")
)
