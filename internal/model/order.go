package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// OrderStatus is the fulfilment state of an order. Only the status may
// change after an order is created.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is one of the known order statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// OrderItem is an immutable line-item snapshot. The unit price is
// captured at order time and never re-read from the live product.
type OrderItem struct {
	ProductID string  `json:"product_id"`
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// OrderVoucher is an immutable applied-voucher snapshot.
type OrderVoucher struct {
	VoucherID string  `json:"voucher_id"`
	Code      string  `json:"code"`
	Discount  float64 `json:"discount"`
}

// Order is the immutable record of a placed order. Items, totals and
// applied-voucher snapshots never change after creation.
type Order struct {
	SeqID           string         `json:"id"`
	UserID          string         `json:"user_id"`
	ReceiverName    string         `json:"receiver_name"`
	ReceiverPhone   string         `json:"receiver_phone"`
	Items           []OrderItem    `json:"items"`
	AppliedVouchers []OrderVoucher `json:"applied_vouchers"`
	OriginalTotal   float64        `json:"original_total"`
	Discount        float64        `json:"discount"`
	Total           float64        `json:"total"`
	Status          OrderStatus    `json:"status"`
	ShippingAddress string         `json:"shipping_address,omitempty"`
	PaymentMethod   string         `json:"payment_method"`
	Note            string         `json:"note,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// OrderResponse is an order with the purchasing account summary attached.
type OrderResponse struct {
	Order
	User *UserSummary `json:"user,omitempty"`
}

// ProductRef is a product reference as supplied by clients. Both JSON
// strings and bare numbers are accepted; resolution tries the catalog id
// first and falls back to the numeric legacy id.
type ProductRef string

// UnmarshalJSON accepts either a JSON string or a JSON number.
func (r *ProductRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty product reference")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = ProductRef(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*r = ProductRef(n.String())
	return nil
}

// OrderItemRequest is a single requested line in a placement request.
type OrderItemRequest struct {
	ProductID ProductRef `json:"productId" validate:"required"`
	Quantity  int        `json:"quantity" validate:"required,gt=0"`
}

// PlaceOrderRequest is the DTO for POST /api/orders.
type PlaceOrderRequest struct {
	Items           []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	ShippingAddress string             `json:"shippingAddress"`
	PaymentMethod   string             `json:"paymentMethod"`
	Note            string             `json:"note"`
	VoucherCodes    []string           `json:"voucherCodes"`
	ReceiverName    string             `json:"receiverName" validate:"required,notblank,max=255"`
	ReceiverPhone   string             `json:"receiverPhone" validate:"required,phone"`
}

// UpdateOrderStatusRequest is the DTO for PUT /api/orders/:id.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,notblank"`
}
