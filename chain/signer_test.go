package chain

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSigner(t *testing.T) *Signer {
	t.Helper()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return NewSignerFromKey(key)
}

func TestNewSigner(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	signer, err := NewSigner(common.Bytes2Hex(crypto.FromECDSA(key)))
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), signer.Address())
}

func TestNewSignerInvalidKey(t *testing.T) {
	_, err := NewSigner("not-a-key")
	require.Error(t, err)
}

func TestSignAndVerifyOrder(t *testing.T) {
	signer := newTestSigner(t)

	unhashed := newSellOrder(t)
	unhashed.Maker = signer.Address()
	unsigned, err := NewUnsignedOrder(unhashed)
	require.NoError(t, err)

	order, err := signer.SignOrder(unsigned)
	require.NoError(t, err)

	assert.True(t, order.Signed())
	assert.Contains(t, []uint8{27, 28}, order.V)
	assert.Equal(t, unsigned.Hash, order.Hash)

	require.NoError(t, VerifyOrder(order))
}

func TestVerifyOrderWrongMaker(t *testing.T) {
	signer := newTestSigner(t)

	// Signed by signer but claiming a different maker.
	unsigned, err := NewUnsignedOrder(newSellOrder(t))
	require.NoError(t, err)

	order, err := signer.SignOrder(unsigned)
	require.NoError(t, err)

	err = VerifyOrder(order)
	var sigErr *SignatureInvalidError
	require.ErrorAs(t, err, &sigErr)
	assert.Equal(t, order.Maker, sigErr.Maker)
	assert.Equal(t, signer.Address(), sigErr.Recovered)
}

func TestVerifyOrderTamperedSignature(t *testing.T) {
	signer := newTestSigner(t)

	unhashed := newSellOrder(t)
	unhashed.Maker = signer.Address()
	unsigned, err := NewUnsignedOrder(unhashed)
	require.NoError(t, err)

	order, err := signer.SignOrder(unsigned)
	require.NoError(t, err)

	tampered := *order
	r := tampered.R
	r[0] ^= 0x01
	tampered.R = r

	assert.Error(t, VerifyOrder(&tampered))
}

func TestVerifyOrderUnsigned(t *testing.T) {
	unsigned, err := NewUnsignedOrder(newSellOrder(t))
	require.NoError(t, err)

	order := &Order{UnsignedOrder: *unsigned}
	assert.False(t, order.Signed())
	assert.Error(t, VerifyOrder(order))
}

func TestVerifyOrderBadRecoveryID(t *testing.T) {
	signer := newTestSigner(t)

	unhashed := newSellOrder(t)
	unhashed.Maker = signer.Address()
	unsigned, err := NewUnsignedOrder(unhashed)
	require.NoError(t, err)

	order, err := signer.SignOrder(unsigned)
	require.NoError(t, err)
	order.V = 3

	var fieldErr *InvalidFieldError
	require.ErrorAs(t, VerifyOrder(order), &fieldErr)
	assert.Equal(t, "v", fieldErr.Field)
}
