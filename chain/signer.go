package chain

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer signs order hashes with a secp256k1 private key.
type Signer struct {
	key *ecdsa.PrivateKey
}

// NewSigner creates a Signer from a hex-encoded private key.
func NewSigner(privateKeyHex string) (*Signer, error) {
	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return &Signer{key: key}, nil
}

// NewSignerFromKey creates a Signer from an existing key.
func NewSignerFromKey(key *ecdsa.PrivateKey) *Signer {
	return &Signer{key: key}
}

// Address returns the address of the signing key.
func (s *Signer) Address() common.Address {
	return crypto.PubkeyToAddress(s.key.PublicKey)
}

// SignOrder signs an unsigned order's hash and returns the signed order.
// The signature is over the signed-message envelope of the order hash, split
// into v, r, s with the legacy recovery offset.
func (s *Signer) SignOrder(o *UnsignedOrder) (*Order, error) {
	digest := HashToSign(o.Hash)
	sig, err := crypto.Sign(digest.Bytes(), s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign order: %w", err)
	}

	return &Order{
		UnsignedOrder: *o,
		V:             sig[64] + 27,
		R:             common.BytesToHash(sig[:32]),
		S:             common.BytesToHash(sig[32:64]),
	}, nil
}

// VerifyOrder checks that an order's signature recovers its maker address.
// The signature is verified against the order's own hash, never assumed.
func VerifyOrder(o *Order) error {
	if !o.Signed() {
		return &SignatureInvalidError{Maker: o.Maker}
	}
	if o.V != 27 && o.V != 28 {
		return &InvalidFieldError{Field: "v", Reason: fmt.Sprintf("unexpected recovery id %d", o.V)}
	}

	sig := make([]byte, 65)
	copy(sig[:32], o.R.Bytes())
	copy(sig[32:64], o.S.Bytes())
	sig[64] = o.V - 27

	digest := HashToSign(o.Hash)
	pub, err := crypto.SigToPub(digest.Bytes(), sig)
	if err != nil {
		return &SignatureInvalidError{Maker: o.Maker}
	}

	recovered := crypto.PubkeyToAddress(*pub)
	if recovered != o.Maker {
		return &SignatureInvalidError{Maker: o.Maker, Recovered: recovered}
	}
	return nil
}
