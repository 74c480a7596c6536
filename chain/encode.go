package chain

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ERC721 ABI JSON for the transfer call orders are built around
const erc721ABIJSON = `[
	{
		"constant": false,
		"inputs": [
			{"name": "from", "type": "address"},
			{"name": "to", "type": "address"},
			{"name": "tokenId", "type": "uint256"}
		],
		"name": "transferFrom",
		"outputs": [],
		"type": "function"
	}
]`

// ERC1155 ABI JSON for the transfer call orders are built around
const erc1155ABIJSON = `[
	{
		"constant": false,
		"inputs": [
			{"name": "from", "type": "address"},
			{"name": "to", "type": "address"},
			{"name": "id", "type": "uint256"},
			{"name": "value", "type": "uint256"},
			{"name": "data", "type": "bytes"}
		],
		"name": "safeTransferFrom",
		"outputs": [],
		"type": "function"
	}
]`

// GetERC721ABI returns the parsed ERC721 ABI
func GetERC721ABI() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(erc721ABIJSON))
	if err != nil {
		panic("failed to parse ERC721 ABI: " + err.Error())
	}
	return parsed
}

// GetERC1155ABI returns the parsed ERC1155 ABI
func GetERC1155ABI() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(erc1155ABIJSON))
	if err != nil {
		panic("failed to parse ERC1155 ABI: " + err.Error())
	}
	return parsed
}

// EncodeTransfer builds the fully concrete transfer calldata moving the asset
// in meta from one address to another.
func EncodeTransfer(meta OrderMetadata, from, to common.Address) ([]byte, error) {
	if meta.Asset.TokenID == nil {
		return nil, &InvalidFieldError{Field: "metadata.asset.tokenId", Reason: "missing"}
	}

	switch meta.Schema {
	case SchemaERC721:
		data, err := GetERC721ABI().Pack("transferFrom", from, to, meta.Asset.TokenID)
		if err != nil {
			return nil, &InvalidFieldError{Field: "metadata", Reason: err.Error()}
		}
		return data, nil

	case SchemaERC1155:
		quantity := meta.Asset.Quantity
		if quantity == nil {
			quantity = big.NewInt(1)
		}
		data, err := GetERC1155ABI().Pack("safeTransferFrom", from, to, meta.Asset.TokenID, quantity, []byte{})
		if err != nil {
			return nil, &InvalidFieldError{Field: "metadata", Reason: err.Error()}
		}
		return data, nil

	default:
		return nil, ErrUnsupportedSchema
	}
}

// EncodeSell builds the calldata and replacement pattern for a sell order:
// a transfer out of the maker with the recipient word left open for whoever
// fills the order.
func EncodeSell(meta OrderMetadata, maker common.Address) (calldata, pattern []byte, err error) {
	calldata, err = EncodeTransfer(meta, maker, common.Address{})
	if err != nil {
		return nil, nil, err
	}
	return calldata, addressReplacementPattern(len(calldata), 1), nil
}

// EncodeBuy builds the calldata and replacement pattern for a buy order:
// a transfer to the maker with the sender word left open for the asset owner
// who fills the order.
func EncodeBuy(meta OrderMetadata, maker common.Address) (calldata, pattern []byte, err error) {
	calldata, err = EncodeTransfer(meta, common.Address{}, maker)
	if err != nil {
		return nil, nil, err
	}
	return calldata, addressReplacementPattern(len(calldata), 0), nil
}

// addressReplacementPattern returns a mask of the given length that opens up
// exactly the ABI word holding argument argIndex. Word boundaries follow the
// standard encoding: a 4-byte selector then 32-byte words.
func addressReplacementPattern(length, argIndex int) []byte {
	pattern := make([]byte, length)
	start := 4 + 32*argIndex
	end := start + 32
	for i := start; i < end && i < length; i++ {
		pattern[i] = replacementMarker
	}
	return pattern
}
