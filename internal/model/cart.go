package model

// CartItem is one line of an account's cart. The unit price is
// snapshotted when the item is added.
type CartItem struct {
	ProductID string  `json:"product_id"`
	Title     string  `json:"title,omitempty"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// Cart is the API shape of an account's cart.
type Cart struct {
	UserID string     `json:"user_id"`
	Items  []CartItem `json:"items"`
	Total  float64    `json:"total"`
}

// AddCartItemRequest is the DTO for adding a product to the cart.
type AddCartItemRequest struct {
	ProductID ProductRef `json:"productId" validate:"required"`
	Quantity  int        `json:"quantity" validate:"required,gt=0"`
}

// UpdateCartItemRequest is the DTO for changing a cart line quantity.
// A quantity of zero or less removes the line.
type UpdateCartItemRequest struct {
	ProductID ProductRef `json:"productId" validate:"required"`
	Quantity  *int       `json:"quantity" validate:"required"`
}

// RemoveCartItemRequest is the DTO for removing a cart line.
type RemoveCartItemRequest struct {
	ProductID ProductRef `json:"productId" validate:"required"`
}
