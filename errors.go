package catering

import "errors"

var (
	// ErrEmptyCart rejects a submission before the remote store is reached.
	ErrEmptyCart = errors.New("cart is empty, nothing to order")

	// ErrCheckoutInFlight rejects a second submission while one is running.
	ErrCheckoutInFlight = errors.New("an order submission is already in flight")

	// ErrSubmissionFailed wraps the remote store's failure; the cart is left
	// untouched when it is returned.
	ErrSubmissionFailed = errors.New("order submission failed")
)
