package client

import (
	"errors"
	"fmt"
)

// Validation sentinels for request construction.
var (
	// ErrMissingOrderID is returned when a cancel carries neither an order
	// id nor a client order id.
	ErrMissingOrderID = errors.New("either oid or cloid must be provided")

	// ErrNoSigner is returned when a trading operation is attempted on a
	// read-only client.
	ErrNoSigner = errors.New("operation requires a signer")

	// ErrMissingBuilderAddress is returned when builder info is supplied
	// without a builder address.
	ErrMissingBuilderAddress = errors.New("builder info requires a builder address")

	// ErrNoPosition is returned when a market close finds no open position
	// to determine the closing direction from.
	ErrNoPosition = errors.New("no open position for symbol")

	// ErrMissingAddress is returned when an account read has no address to
	// query: none passed and no signer configured.
	ErrMissingAddress = errors.New("no address provided and no signer configured")
)

// APIError represents an error response from the API.
type APIError struct {
	StatusCode int
	Message    string
	Response   []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
}

// AccountNotFoundError is returned when the queried account does not exist
// on the exchange. Composite reads treat it as an empty account rather
// than failing.
type AccountNotFoundError struct {
	Account string
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("account not found: %s", e.Account)
}

// AccessRestrictedError is returned when the API rejects the caller for
// access reasons, such as a closed beta gate.
type AccessRestrictedError struct {
	Message string
}

func (e *AccessRestrictedError) Error() string {
	return fmt.Sprintf("access restricted: %s", e.Message)
}
