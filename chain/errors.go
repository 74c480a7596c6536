package chain

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Order construction and matching errors
var (
	// ErrUnsupportedSaleKind is returned for a sale kind outside the known set
	ErrUnsupportedSaleKind = errors.New("unsupported sale kind")

	// ErrUnsupportedSchema is returned for an asset schema the encoder does not know
	ErrUnsupportedSchema = errors.New("unsupported asset schema")

	// ErrUnsignedPair is returned when neither order of a candidate match is signed
	ErrUnsignedPair = errors.New("neither order carries a signature")
)

// InvalidFieldError reports an order field that is malformed or out of range.
type InvalidFieldError struct {
	Field  string
	Reason string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid order field %s: %s", e.Field, e.Reason)
}

// CalldataMismatchError reports a replacement-pattern violation: a byte that
// the pattern pins differs between the two buffers.
type CalldataMismatchError struct {
	Offset int
}

func (e *CalldataMismatchError) Error() string {
	return fmt.Sprintf("calldata mismatch at byte %d", e.Offset)
}

// ExpiredOrderError reports an order whose expiration time has passed.
type ExpiredOrderError struct {
	Hash           common.Hash
	ExpirationTime *big.Int
}

func (e *ExpiredOrderError) Error() string {
	return fmt.Sprintf("order %s expired at %s", e.Hash.Hex(), e.ExpirationTime.String())
}

// SignatureInvalidError reports a signature that does not verify against the
// claimed maker address.
type SignatureInvalidError struct {
	Maker     common.Address
	Recovered common.Address
}

func (e *SignatureInvalidError) Error() string {
	return fmt.Sprintf("signature recovers %s, order maker is %s", e.Recovered.Hex(), e.Maker.Hex())
}

// MatchError reports why a (buy, sell) pair cannot be matched. Err holds the
// underlying error when the failing check produced one.
type MatchError struct {
	Reason string
	Err    error
}

func (e *MatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("orders cannot be matched: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("orders cannot be matched: %s", e.Reason)
}

func (e *MatchError) Unwrap() error {
	return e.Err
}
