// Package keyring stores transaction signing keys encrypted at rest.
//
// Keys live in a bbolt database, sealed with an Argon2id-derived
// AES-256-GCM envelope, and are addressed by their P2PKH address
// string. The keyring can feed every relevant stored key into a
// transaction's signing pass in one call; it performs no key
// derivation.
package keyring

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-sdk/transaction/sighash"
	"go.etcd.io/bbolt"

	"github.com/bchforge/libcash-go/tx"
	"github.com/bchforge/libcash-go/txscript"
)

var bucketKeys = []byte("keys")

// Keyring is a bbolt-backed encrypted key store.
type Keyring struct {
	db     *bbolt.DB
	params *txscript.Params
}

// Open opens or creates the keyring database at dbPath. The parent
// directory is created if it does not exist. A nil params means mainnet
// addressing.
func Open(dbPath string, params *txscript.Params) (*Keyring, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("%w: create directory: %w", ErrStore, err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: open db: %w", ErrStore, err)
	}
	err = db.Update(func(btx *bbolt.Tx) error {
		_, err := btx.CreateBucketIfNotExists(bucketKeys)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: create bucket: %w", ErrStore, err)
	}
	return &Keyring{db: db, params: params}, nil
}

// Close closes the underlying database.
func (k *Keyring) Close() error { return k.db.Close() }

// Put seals and stores a private key, returning the P2PKH address it is
// filed under.
func (k *Keyring) Put(priv *ec.PrivateKey, passphrase string) (string, error) {
	if priv == nil {
		return "", fmt.Errorf("%w: private key", ErrNilParam)
	}
	addr, err := txscript.AddressFromPublicKey(priv.PubKey(), k.params)
	if err != nil {
		return "", err
	}
	envelope, err := seal(pad32(priv.D.Bytes()), passphrase)
	if err != nil {
		return "", err
	}
	err = k.db.Update(func(btx *bbolt.Tx) error {
		return btx.Bucket(bucketKeys).Put([]byte(addr.AddressString), envelope)
	})
	if err != nil {
		return "", fmt.Errorf("%w: put: %w", ErrStore, err)
	}
	return addr.AddressString, nil
}

// Get unseals the key stored for an address.
func (k *Keyring) Get(address, passphrase string) (*ec.PrivateKey, error) {
	var envelope []byte
	err := k.db.View(func(btx *bbolt.Tx) error {
		v := btx.Bucket(bucketKeys).Get([]byte(address))
		if v != nil {
			envelope = append([]byte{}, v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: get: %w", ErrStore, err)
	}
	if envelope == nil {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, address)
	}
	plain, err := open(envelope, passphrase)
	if err != nil {
		return nil, err
	}
	priv, _ := ec.PrivateKeyFromBytes(plain)
	return priv, nil
}

// Addresses lists every stored address in key order.
func (k *Keyring) Addresses() ([]string, error) {
	var out []string
	err := k.db.View(func(btx *bbolt.Tx) error {
		return btx.Bucket(bucketKeys).ForEach(func(key, _ []byte) error {
			out = append(out, string(key))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list: %w", ErrStore, err)
	}
	return out, nil
}

// Delete removes the key stored for an address.
func (k *Keyring) Delete(address string) error {
	err := k.db.Update(func(btx *bbolt.Tx) error {
		return btx.Bucket(bucketKeys).Delete([]byte(address))
	})
	if err != nil {
		return fmt.Errorf("%w: delete: %w", ErrStore, err)
	}
	return nil
}

// SignTransaction unseals every stored key whose address matches one of
// the transaction's P2PKH spent outputs and runs a signing pass with
// them. Keys for unrelated addresses stay sealed.
func (k *Keyring) SignTransaction(t *tx.Transaction, passphrase string, flag sighash.Flag, alg tx.SigningAlgorithm) error {
	if t == nil {
		return fmt.Errorf("%w: transaction", ErrNilParam)
	}
	wanted := make(map[string]bool)
	for _, in := range t.Inputs() {
		out := in.SpentOutput()
		if out == nil || !out.Script.IsPublicKeyHashOut() {
			continue
		}
		pkh, err := out.Script.PublicKeyHash()
		if err != nil {
			continue
		}
		addr, err := txscript.AddressFromPublicKeyHash(pkh, k.params)
		if err != nil {
			continue
		}
		wanted[addr.AddressString] = true
	}

	var keys []*ec.PrivateKey
	for address := range wanted {
		priv, err := k.Get(address, passphrase)
		if errors.Is(err, ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		keys = append(keys, priv)
	}
	if len(keys) == 0 {
		return nil
	}
	return t.SignAll(keys, flag, alg)
}

// pad32 left-pads a scalar to the 32-byte key length.
func pad32(b []byte) []byte {
	out := make([]byte, 32)
	copy(out[32-len(b):], b)
	return out
}
