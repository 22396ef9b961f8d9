package txscript

import (
	"fmt"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	sdkscript "github.com/bsv-blockchain/go-sdk/script"
)

// Params identifies the network an address belongs to.
type Params struct {
	Name    string
	Mainnet bool
}

// Package-level network parameters. A nil *Params means MainNet.
var (
	MainNet = Params{Name: "mainnet", Mainnet: true}
	TestNet = Params{Name: "testnet", Mainnet: false}
)

// DecodeAddress parses a base58check address string.
func DecodeAddress(addr string) (*sdkscript.Address, error) {
	a, err := sdkscript.NewAddressFromString(addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidAddress, addr, err)
	}
	return a, nil
}

// AddressFromPublicKey derives the P2PKH address of a compressed public key.
func AddressFromPublicKey(pubKey *ec.PublicKey, params *Params) (*sdkscript.Address, error) {
	if pubKey == nil {
		return nil, fmt.Errorf("%w: nil key", ErrInvalidPublicKey)
	}
	a, err := sdkscript.NewAddressFromPublicKey(pubKey, mainnet(params))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	return a, nil
}

// AddressFromPublicKeyHash builds an address from a 20-byte pubkey hash.
func AddressFromPublicKeyHash(pubKeyHash []byte, params *Params) (*sdkscript.Address, error) {
	if len(pubKeyHash) != 20 {
		return nil, fmt.Errorf("%w: want 20 bytes, got %d", ErrInvalidHashLength, len(pubKeyHash))
	}
	a, err := sdkscript.NewAddressFromPublicKeyHash(pubKeyHash, mainnet(params))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	return a, nil
}

func mainnet(params *Params) bool {
	return params == nil || params.Mainnet
}
