package service

import "errors"

var (
	// ErrInvalidRequest is returned when request data is invalid or incomplete
	ErrInvalidRequest = errors.New("invalid request")

	// ErrUserNotFound is returned when an account cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken is returned when registering with an email that is already in use
	ErrEmailTaken = errors.New("email has been used")

	// ErrInvalidCredentials is returned when login email/password do not match
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrProductNotFound is returned when a referenced product cannot be resolved
	ErrProductNotFound = errors.New("product not found")

	// ErrInsufficientStock is returned when a reservation would drive stock negative
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrVoucherNotFound is returned when a voucher cannot be found
	ErrVoucherNotFound = errors.New("voucher not found")

	// ErrVoucherExists is returned when creating a voucher whose code already exists
	ErrVoucherExists = errors.New("voucher code already exists")

	// ErrVoucherInactive is returned when a voucher has been deactivated
	ErrVoucherInactive = errors.New("voucher is not active")

	// ErrVoucherExhausted is returned when the claim quota is used up
	ErrVoucherExhausted = errors.New("voucher is out of stock")

	// ErrVoucherNotClaimable is returned outside the voucher's receive window
	ErrVoucherNotClaimable = errors.New("voucher is not available for claiming at this time")

	// ErrAlreadyClaimed is returned when an account already holds an unused claim
	ErrAlreadyClaimed = errors.New("voucher already claimed")

	// ErrVoucherNotOwned is returned when an order applies a code the account
	// holds no unused claim for
	ErrVoucherNotOwned = errors.New("voucher not owned or already used")

	// ErrVoucherExpired is returned when a claimed voucher is past its validity window
	ErrVoucherExpired = errors.New("voucher expired or no longer valid")

	// ErrBelowMinimum is returned when the order total is under a voucher's minimum purchase
	ErrBelowMinimum = errors.New("requires minimum purchase")

	// ErrReceiverInvalid is returned for missing or malformed receiver fields
	ErrReceiverInvalid = errors.New("receiver name and phone are required")

	// ErrForbidden is returned when the caller may not access the resource
	ErrForbidden = errors.New("forbidden")

	// ErrOrderNotFound is returned when an order cannot be found
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidStatus is returned for a status outside the enumerated set
	ErrInvalidStatus = errors.New("invalid order status")

	// ErrItemsRequired is returned when a placement request carries no items
	ErrItemsRequired = errors.New("items required")

	// ErrInvalidQuantity is returned for a non-positive line quantity
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrSequenceConflict is returned when a concurrently allocated sequence id
	// collided; placement retries a bounded number of times
	ErrSequenceConflict = errors.New("order id conflict")
)
