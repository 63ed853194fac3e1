package factory

import "errors"

// Operation errors. Every failed operation leaves all state unchanged.
var (
	// ErrInvalidPayment is returned when a payment does not match the
	// creation fee exactly, or is insufficient for a purchase.
	ErrInvalidPayment = errors.New("invalid payment")

	// ErrUnknownSale is returned for an unknown token identity or an
	// out-of-range enumeration index.
	ErrUnknownSale = errors.New("unknown sale")

	// ErrSaleClosed is returned when buying from a sale that reached
	// its cap.
	ErrSaleClosed = errors.New("sale closed")

	// ErrSupplyExceeded is returned when a purchase would push sold
	// past the sale cap.
	ErrSupplyExceeded = errors.New("supply exceeded")

	// ErrUnauthorized is returned when a privileged operation is
	// called by anyone but the administrator.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidInput is returned for malformed names, addresses, or
	// amounts.
	ErrInvalidInput = errors.New("invalid input")
)
