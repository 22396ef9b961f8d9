package tx

import (
	"bytes"
	"fmt"
	"math/big"
)

// tokenParent is an input-side NFT available to justify an output NFT
// of the same category.
type tokenParent struct {
	prevTxID    []byte
	outputIndex uint32
	nft         *NFTData
}

// ValidateTokens checks CashToken category accounting: fungible amounts
// sent per category must be covered by inputs of that category unless
// the category is being minted in this transaction, minted amounts must
// stay in range, and every output NFT needs an input parent whose
// capability permits the derivation. A violation is returned as an
// error wrapping ErrTokenValidation; it must not be masked.
func (t *Transaction) ValidateTokens() error {
	for _, category := range t.outputTokenCategories() {
		if err := t.validateTokenCategory(category); err != nil {
			return err
		}
	}
	return nil
}

// outputTokenCategories lists distinct categories over token-bearing
// outputs, in first-appearance order.
func (t *Transaction) outputTokenCategories() [][]byte {
	var categories [][]byte
	for _, o := range t.outputs {
		if o.Token == nil {
			continue
		}
		found := false
		for _, c := range categories {
			if sameCategory(c, o.Token.Category) {
				found = true
				break
			}
		}
		if !found {
			categories = append(categories, o.Token.Category)
		}
	}
	return categories
}

func (t *Transaction) validateTokenCategory(category []byte) error {
	inputFungible := new(big.Int)
	var parents []*tokenParent
	for _, in := range t.inputs {
		out := in.SpentOutput()
		if out == nil || out.Token == nil || !sameCategory(out.Token.Category, category) {
			continue
		}
		inputFungible.Add(inputFungible, out.Token.FungibleAmount())
		if out.Token.NFT != nil {
			parents = append(parents, &tokenParent{
				prevTxID:    in.PrevTxID(),
				outputIndex: in.OutputIndex(),
				nft:         out.Token.NFT,
			})
		}
	}

	// A category equal to an input's previous txid means this
	// transaction mints the category; consensus pins minting to
	// output index zero of that txid.
	mintingInput := -1
	for i, in := range t.inputs {
		if bytes.Equal(in.PrevTxID(), category) {
			mintingInput = i
			break
		}
	}

	minted := new(big.Int)
	sent := new(big.Int)
	for _, o := range t.outputs {
		if o.Token == nil || !sameCategory(o.Token.Category, category) {
			continue
		}
		if mintingInput >= 0 {
			if t.inputs[mintingInput].OutputIndex() != 0 {
				return fmt.Errorf("%w: category %x minted from output index %d, must be 0",
					ErrTokenValidation, reverseBytes(category), t.inputs[mintingInput].OutputIndex())
			}
			minted.Add(minted, o.Token.FungibleAmount())
			continue
		}

		sent.Add(sent, o.Token.FungibleAmount())
		if o.Token.NFT != nil {
			idx := findTokenParent(parents, o.Token.NFT)
			if idx < 0 {
				return fmt.Errorf("%w: category %x output NFT has no permitting parent input",
					ErrTokenValidation, reverseBytes(category))
			}
			if parents[idx].nft.Capability != NFTCapabilityMinting {
				parents = append(parents[:idx], parents[idx+1:]...)
			}
		}
	}

	if minted.Cmp(MaxTokenAmount) > 0 {
		return fmt.Errorf("%w: category %x mints %s, above the maximum token amount",
			ErrTokenValidation, reverseBytes(category), minted)
	}
	if sent.Cmp(inputFungible) > 0 {
		return fmt.Errorf("%w: category %x sends %s but inputs carry only %s",
			ErrTokenValidation, reverseBytes(category), sent, inputFungible)
	}
	return nil
}

// findTokenParent picks an unused parent whose capability permits
// deriving the output NFT: an immutable output needs a parent with a
// matching commitment or any non-none capability, anything else needs a
// non-none capability.
func findTokenParent(parents []*tokenParent, nft *NFTData) int {
	for i, p := range parents {
		if nft.Capability == NFTCapabilityNone {
			if bytes.Equal(p.nft.Commitment, nft.Commitment) || p.nft.Capability != NFTCapabilityNone {
				return i
			}
			continue
		}
		if p.nft.Capability != NFTCapabilityNone {
			return i
		}
	}
	return -1
}
