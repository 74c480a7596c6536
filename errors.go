package meridian

import "errors"

var (
	// ErrInvalidParam represents an invalid parameter error
	ErrInvalidParam = errors.New("invalid parameter")

	// ErrOrderNotFound is returned when the orderbook has no order matching a query
	ErrOrderNotFound = errors.New("order not found")

	// ErrMissingSignature is returned when a wire order lacks a signature where one is required
	ErrMissingSignature = errors.New("order is missing a signature")

	// ErrNoSigner is returned when an operation needs a signing key but the client has none
	ErrNoSigner = errors.New("client has no signing key configured")

	// ErrNoRPC is returned when an operation needs a chain connection but the client has none
	ErrNoRPC = errors.New("client has no RPC connection configured")
)

// InvalidParamError represents an invalid parameter error with context
type InvalidParamError struct {
	Message string
}

func (e *InvalidParamError) Error() string {
	return e.Message
}

// OrderbookError represents an orderbook API error with context
type OrderbookError struct {
	Message string
}

func (e *OrderbookError) Error() string {
	return e.Message
}
