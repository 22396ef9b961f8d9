package keyring

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	// Argon2id parameters for the passphrase KDF.
	argon2Time        = 3
	argon2Memory      = 64 * 1024 // 64 MB
	argon2Parallelism = 4
	argon2KeyLen      = 32

	// Envelope component sizes.
	saltLen     = 16
	nonceLen    = 12
	checksumLen = 4
)

// seal encrypts a private key with Argon2id + AES-256-GCM.
//
// Envelope format: salt(16) || nonce(12) || AES-GCM(key, nonce, plain||checksum)
// where checksum = SHA256(plain)[:4], verifying correct decryption.
func seal(plain []byte, passphrase string) ([]byte, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("%w: salt: %w", ErrStore, err)
	}

	derivedKey := argon2.IDKey(
		[]byte(passphrase), salt,
		argon2Time, argon2Memory, argon2Parallelism, argon2KeyLen,
	)

	sum := sha256.Sum256(plain)
	payload := make([]byte, 0, len(plain)+checksumLen)
	payload = append(payload, plain...)
	payload = append(payload, sum[:checksumLen]...)

	block, err := aes.NewCipher(derivedKey)
	if err != nil {
		return nil, fmt.Errorf("%w: cipher: %w", ErrStore, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: gcm: %w", ErrStore, err)
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("%w: nonce: %w", ErrStore, err)
	}

	ciphertext := gcm.Seal(nil, nonce, payload, nil)
	out := make([]byte, 0, saltLen+nonceLen+len(ciphertext))
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, ciphertext...)
	return out, nil
}

// open decrypts a sealed envelope and verifies its checksum.
func open(envelope []byte, passphrase string) ([]byte, error) {
	if len(envelope) < saltLen+nonceLen+checksumLen {
		return nil, ErrDecryptionFailed
	}
	salt := envelope[:saltLen]
	nonce := envelope[saltLen : saltLen+nonceLen]
	ciphertext := envelope[saltLen+nonceLen:]

	derivedKey := argon2.IDKey(
		[]byte(passphrase), salt,
		argon2Time, argon2Memory, argon2Parallelism, argon2KeyLen,
	)

	block, err := aes.NewCipher(derivedKey)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	payload, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	if len(payload) < checksumLen {
		return nil, ErrDecryptionFailed
	}

	plain := payload[:len(payload)-checksumLen]
	stored := payload[len(payload)-checksumLen:]
	sum := sha256.Sum256(plain)
	for i := 0; i < checksumLen; i++ {
		if stored[i] != sum[i] {
			return nil, ErrChecksumMismatch
		}
	}
	return plain, nil
}
