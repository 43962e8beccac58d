package settlement

import "errors"

// Rejection reasons returned by Evaluate. None of them leaves any
// observable state change behind.
var (
	// ErrInvalidAction means the action was not BUY or SELL.
	ErrInvalidAction = errors.New("action must be 'BUY' or 'SELL'")

	// ErrMissingSymbol means the request carried no symbol.
	ErrMissingSymbol = errors.New("symbol is required")

	// ErrInvalidQuantity means a supplied quantity was not a positive number.
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")

	// ErrInvalidPrice means the settlement price was not positive.
	ErrInvalidPrice = errors.New("price must be greater than zero")

	// ErrAccountInactive means the account has reached a terminal status
	// (FAILED or PASSED) and no further trades are admitted.
	ErrAccountInactive = errors.New("account is no longer active")

	// ErrInsufficientBalance means a priced BUY would drive the balance
	// negative.
	ErrInsufficientBalance = errors.New("insufficient balance")
)
