package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/fairyhunter13/ecommerce-order-system/internal/model"
)

// ProductService provides business logic for catalog operations. Stock
// changes never go through here; they belong to the inventory paths on
// the product repository.
type ProductService struct {
	products ProductRepositoryInterface
}

// NewProductService creates a new ProductService with the given repository.
func NewProductService(products ProductRepositoryInterface) *ProductService {
	return &ProductService{products: products}
}

// List retrieves all products.
func (s *ProductService) List(ctx context.Context) ([]model.Product, error) {
	return s.products.List(ctx)
}

// Get resolves a product reference (catalog id or numeric legacy id).
// Returns ErrProductNotFound if nothing matches.
func (s *ProductService) Get(ctx context.Context, ref string) (*model.Product, error) {
	ref = strings.TrimSpace(ref)
	p, err := s.products.FindByRef(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("resolve product %s: %w", ref, err)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, ref)
	}
	return p, nil
}

// Create adds a product to the catalog.
func (s *ProductService) Create(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error) {
	if req == nil || req.Price == nil || req.Stock == nil {
		return nil, ErrInvalidRequest
	}
	p := &model.Product{
		ID:          uuid.NewString(),
		LegacyID:    req.LegacyID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Brand:       req.Brand,
		Category:    req.Category,
		Price:       *req.Price,
		Stock:       *req.Stock,
		Thumbnail:   req.Thumbnail,
	}
	if err := s.products.Insert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update applies the non-nil fields of the request to a product.
func (s *ProductService) Update(ctx context.Context, id string, req *model.UpdateProductRequest) (*model.Product, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if p == nil {
		return nil, ErrProductNotFound
	}

	if req.Title != nil {
		p.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Brand != nil {
		p.Brand = *req.Brand
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Thumbnail != nil {
		p.Thumbnail = *req.Thumbnail
	}

	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a product from the catalog.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	return s.products.Delete(ctx, id)
}
