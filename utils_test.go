package meridian

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeiToDecimal(t *testing.T) {
	wei, ok := new(big.Int).SetString("1500000000000000000", 10)
	require.True(t, ok)

	assert.Equal(t, "1.5", WeiToDecimal(wei, 18).String())
	assert.Equal(t, "1500000000000", WeiToDecimal(wei, 6).String())
	assert.Equal(t, "0", WeiToDecimal(big.NewInt(0), 18).String())
}

func TestDecimalToWei(t *testing.T) {
	wei, err := DecimalToWei(decimal.RequireFromString("1.5"), 18)
	require.NoError(t, err)
	assert.Equal(t, "1500000000000000000", wei.String())

	wei, err = DecimalToWei(decimal.RequireFromString("0.000001"), 6)
	require.NoError(t, err)
	assert.Equal(t, "1", wei.String())
}

func TestDecimalToWeiRoundTrip(t *testing.T) {
	original := decimal.RequireFromString("123.456789")

	wei, err := DecimalToWei(original, 18)
	require.NoError(t, err)
	assert.True(t, original.Equal(WeiToDecimal(wei, 18)))
}

func TestDecimalToWeiRejectsExcessPrecision(t *testing.T) {
	_, err := DecimalToWei(decimal.RequireFromString("1.0000001"), 6)
	var paramErr *InvalidParamError
	require.ErrorAs(t, err, &paramErr)
}

func TestDecimalToWeiRejectsNegative(t *testing.T) {
	_, err := DecimalToWei(decimal.RequireFromString("-1"), 18)
	var paramErr *InvalidParamError
	require.ErrorAs(t, err, &paramErr)
}

func TestDecimalToWeiRejectsBadDecimals(t *testing.T) {
	_, err := DecimalToWei(decimal.RequireFromString("1"), 19)
	var paramErr *InvalidParamError
	require.ErrorAs(t, err, &paramErr)

	_, err = DecimalToWei(decimal.RequireFromString("1"), -1)
	require.ErrorAs(t, err, &paramErr)
}

func TestBasisPointsToRate(t *testing.T) {
	assert.Equal(t, "0.025", BasisPointsToRate(250).String())
	assert.Equal(t, "0.01", BasisPointsToRate(100).String())
	assert.Equal(t, "1", BasisPointsToRate(10000).String())
	assert.Equal(t, "0", BasisPointsToRate(0).String())
}
