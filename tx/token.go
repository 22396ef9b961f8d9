package tx

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/bchforge/libcash-go/codec"
)

// tokenPrefixMarker introduces a token prefix in the wire form of an
// output's script field.
const tokenPrefixMarker = 0xef

// Token bitfield flags.
const (
	tokenHasAmount     = 0x10
	tokenHasNFT        = 0x20
	tokenHasCommitment = 0x40
	tokenReservedBit   = 0x80
	tokenCapabilityMax = 0x02
)

// MaxTokenAmount is the largest fungible amount a category can carry.
var MaxTokenAmount = new(big.Int).SetUint64(1<<63 - 1)

// NFTCapability describes what an NFT permits its holder to do.
type NFTCapability string

// NFT capabilities in ascending order of power.
const (
	NFTCapabilityNone    NFTCapability = "none"
	NFTCapabilityMutable NFTCapability = "mutable"
	NFTCapabilityMinting NFTCapability = "minting"
)

var capabilityBits = map[NFTCapability]byte{
	NFTCapabilityNone:    0x00,
	NFTCapabilityMutable: 0x01,
	NFTCapabilityMinting: 0x02,
}

var capabilityNames = map[byte]NFTCapability{
	0x00: NFTCapabilityNone,
	0x01: NFTCapabilityMutable,
	0x02: NFTCapabilityMinting,
}

// NFTData is the non-fungible half of a token payload.
type NFTData struct {
	Capability NFTCapability `json:"capability"`
	Commitment []byte        `json:"commitment,omitempty"`
}

// TokenData is the CashToken payload attached to an output. Category is
// the 32-byte id in wire (little-endian) order; Amount is the fungible
// amount, zero when the output carries only an NFT.
type TokenData struct {
	Category []byte   `json:"-"`
	Amount   *big.Int `json:"-"`
	NFT      *NFTData `json:"nft,omitempty"`
}

// CategoryHex returns the category id in display (big-endian) hex.
func (td *TokenData) CategoryHex() string {
	return hex.EncodeToString(reverseBytes(td.Category))
}

// HasNFT reports whether the payload includes a non-fungible token.
func (td *TokenData) HasNFT() bool { return td.NFT != nil }

// FungibleAmount returns the fungible amount, treating nil as zero.
func (td *TokenData) FungibleAmount() *big.Int {
	if td.Amount == nil {
		return new(big.Int)
	}
	return td.Amount
}

// Copy deep-copies the token payload.
func (td *TokenData) Copy() *TokenData {
	if td == nil {
		return nil
	}
	out := &TokenData{
		Category: append([]byte{}, td.Category...),
		Amount:   new(big.Int).Set(td.FungibleAmount()),
	}
	if td.NFT != nil {
		out.NFT = &NFTData{
			Capability: td.NFT.Capability,
			Commitment: append([]byte{}, td.NFT.Commitment...),
		}
	}
	return out
}

// validate checks structural token constraints.
func (td *TokenData) validate() error {
	if len(td.Category) != 32 {
		return fmt.Errorf("%w: token category must be 32 bytes, got %d",
			ErrInvalidArgument, len(td.Category))
	}
	amt := td.FungibleAmount()
	if amt.Sign() < 0 || amt.Cmp(MaxTokenAmount) > 0 {
		return fmt.Errorf("%w: token amount %s out of range", ErrInvalidArgument, amt)
	}
	if td.NFT == nil && amt.Sign() == 0 {
		return fmt.Errorf("%w: token prefix with neither amount nor NFT", ErrInvalidArgument)
	}
	if td.NFT != nil {
		if _, ok := capabilityBits[td.NFT.Capability]; !ok {
			return fmt.Errorf("%w: unknown NFT capability %q", ErrInvalidArgument, td.NFT.Capability)
		}
	}
	return nil
}

// sameCategory reports whether two 32-byte category ids match.
func sameCategory(a, b []byte) bool { return bytes.Equal(a, b) }

// serializedSize returns the wire size of the token prefix.
func (td *TokenData) serializedSize() int {
	n := 1 + 32 + 1
	if td.NFT != nil && len(td.NFT.Commitment) > 0 {
		n += codec.VarIntSize(uint64(len(td.NFT.Commitment))) + len(td.NFT.Commitment)
	}
	if td.FungibleAmount().Sign() > 0 {
		n += codec.VarIntSize(td.FungibleAmount().Uint64())
	}
	return n
}

// writeTo appends the token prefix to w.
func (td *TokenData) writeTo(w *codec.Writer) {
	w.WriteUint8(tokenPrefixMarker)
	w.WriteBytes(td.Category)

	var bitfield byte
	if td.FungibleAmount().Sign() > 0 {
		bitfield |= tokenHasAmount
	}
	if td.NFT != nil {
		bitfield |= tokenHasNFT
		bitfield |= capabilityBits[td.NFT.Capability]
		if len(td.NFT.Commitment) > 0 {
			bitfield |= tokenHasCommitment
		}
	}
	w.WriteUint8(bitfield)

	if td.NFT != nil && len(td.NFT.Commitment) > 0 {
		w.WriteVarBytes(td.NFT.Commitment)
	}
	if td.FungibleAmount().Sign() > 0 {
		w.WriteVarInt(td.FungibleAmount().Uint64())
	}
}

// splitTokenScript separates an output's wire script field into its
// optional token prefix and the locking script proper.
func splitTokenScript(raw []byte) (*TokenData, []byte, error) {
	if len(raw) == 0 || raw[0] != tokenPrefixMarker {
		return nil, raw, nil
	}
	r := codec.NewReader(raw[1:])
	category, err := r.ReadBytes(32)
	if err != nil {
		return nil, nil, fmt.Errorf("token category: %w", err)
	}
	bitfield, err := r.ReadUint8()
	if err != nil {
		return nil, nil, fmt.Errorf("token bitfield: %w", err)
	}
	if bitfield&tokenReservedBit != 0 {
		return nil, nil, fmt.Errorf("%w: reserved token bitfield bit set", ErrInvalidArgument)
	}
	capBits := bitfield & 0x0f
	if capBits > tokenCapabilityMax {
		return nil, nil, fmt.Errorf("%w: token capability 0x%02x", ErrInvalidArgument, capBits)
	}
	if bitfield&tokenHasNFT == 0 && capBits != 0 {
		return nil, nil, fmt.Errorf("%w: capability without NFT", ErrInvalidArgument)
	}
	if bitfield&tokenHasNFT == 0 && bitfield&tokenHasCommitment != 0 {
		return nil, nil, fmt.Errorf("%w: commitment without NFT", ErrInvalidArgument)
	}
	if bitfield&(tokenHasNFT|tokenHasAmount) == 0 {
		return nil, nil, fmt.Errorf("%w: token prefix encodes nothing", ErrInvalidArgument)
	}

	td := &TokenData{Category: category, Amount: new(big.Int)}
	if bitfield&tokenHasNFT != 0 {
		td.NFT = &NFTData{Capability: capabilityNames[capBits]}
		if bitfield&tokenHasCommitment != 0 {
			commitment, err := r.ReadVarBytes()
			if err != nil {
				return nil, nil, fmt.Errorf("token commitment: %w", err)
			}
			if len(commitment) == 0 {
				return nil, nil, fmt.Errorf("%w: empty token commitment", ErrInvalidArgument)
			}
			td.NFT.Commitment = commitment
		}
	}
	if bitfield&tokenHasAmount != 0 {
		amount, err := r.ReadVarInt()
		if err != nil {
			return nil, nil, fmt.Errorf("token amount: %w", err)
		}
		td.Amount = new(big.Int).SetUint64(amount)
		if td.Amount.Sign() == 0 || td.Amount.Cmp(MaxTokenAmount) > 0 {
			return nil, nil, fmt.Errorf("%w: token amount %s", ErrInvalidArgument, td.Amount)
		}
	}

	return td, raw[len(raw)-r.Remaining():], nil
}

// reverseBytes returns b reversed, for txid/category display order.
func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
