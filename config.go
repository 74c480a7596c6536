package meridian

// ChainID represents a blockchain chain ID
type ChainID int

const (
	ChainIDMainnet ChainID = 1        // Ethereum mainnet
	ChainIDSepolia ChainID = 11155111 // Sepolia testnet
)

// SupportedChainIDs lists all supported chain IDs
var SupportedChainIDs = []ChainID{ChainIDMainnet, ChainIDSepolia}

// ContractAddresses holds contract addresses for each chain
type ContractAddresses struct {
	Exchange           string
	TokenTransferProxy string
	WrappedNative      string
}

// DefaultContractAddresses maps chain IDs to their contract addresses
var DefaultContractAddresses = map[ChainID]ContractAddresses{
	ChainIDMainnet: {
		Exchange:           "0x9aE4b8D86B1521Ec0E915A4Ba12Fd23bF52d8CEf",
		TokenTransferProxy: "0x3C10fD7a42f4aD11C30d227Cb4E3a2C4A0fA92B1",
		WrappedNative:      "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
	},
	ChainIDSepolia: {
		Exchange:           "0x5E12aF03D1eB8E5dE1cBb8D3C7F6bA3528cC0Ae4",
		TokenTransferProxy: "0x84D0bC5a7fC2F8eE9A3F18bB1C4721D05C9aF6e3",
		WrappedNative:      "0x7b79995e5f793A07Bc00c21412e50Ecae098E7f9",
	},
}
