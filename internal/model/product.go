package model

import "time"

// Product is a catalog entry. Stock is mutated only through the
// conditional reserve/release statements in the product repository.
type Product struct {
	ID          string    `json:"id"`
	LegacyID    *int64    `json:"legacy_id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Brand       string    `json:"brand,omitempty"`
	Category    string    `json:"category,omitempty"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// CreateProductRequest is the DTO for creating a product.
type CreateProductRequest struct {
	Title       string   `json:"title" validate:"required,notblank,max=255"`
	Description string   `json:"description"`
	Brand       string   `json:"brand"`
	Category    string   `json:"category"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Stock       *int     `json:"stock" validate:"required,gte=0"`
	Thumbnail   string   `json:"thumbnail"`
	LegacyID    *int64   `json:"legacy_id" validate:"omitempty,gt=0"`
}

// UpdateProductRequest is the DTO for updating a product. Stock is not
// updatable here; it belongs to the inventory ledger.
type UpdateProductRequest struct {
	Title       *string  `json:"title" validate:"omitempty,notblank,max=255"`
	Description *string  `json:"description"`
	Brand       *string  `json:"brand"`
	Category    *string  `json:"category"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Thumbnail   *string  `json:"thumbnail"`
}
