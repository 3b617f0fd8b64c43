package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fairyhunter13/ecommerce-order-system/internal/model"
	"github.com/fairyhunter13/ecommerce-order-system/pkg/database"
)

// The repository interfaces below are what the services program against.
// This allows for easier testing with mocks.

// ProductRepositoryInterface defines the interface for product data access.
type ProductRepositoryInterface interface {
	FindByRef(ctx context.Context, ref string) (*model.Product, error)
	GetByID(ctx context.Context, id string) (*model.Product, error)
	List(ctx context.Context) ([]model.Product, error)
	Insert(ctx context.Context, p *model.Product) error
	Update(ctx context.Context, p *model.Product) error
	Delete(ctx context.Context, id string) error
	Reserve(ctx context.Context, q database.TxQuerier, id string, quantity int) error
	Release(ctx context.Context, q database.TxQuerier, id string, quantity int) error
}

// VoucherRepositoryInterface defines the interface for voucher data access.
type VoucherRepositoryInterface interface {
	Insert(ctx context.Context, v *model.Voucher) error
	GetByID(ctx context.Context, id string) (*model.Voucher, error)
	GetByCode(ctx context.Context, code string) (*model.Voucher, error)
	GetForUpdate(ctx context.Context, tx database.TxQuerier, id string) (*model.Voucher, error)
	List(ctx context.Context) ([]model.Voucher, error)
	ListAvailable(ctx context.Context, now time.Time) ([]model.Voucher, error)
	Update(ctx context.Context, v *model.Voucher) error
	Delete(ctx context.Context, id string) error
	IncrementClaimed(ctx context.Context, q database.TxQuerier, id string) error
	IncrementUsed(ctx context.Context, q database.TxQuerier, id string) error
	DecrementUsed(ctx context.Context, q database.TxQuerier, id string) error
}

// WalletRepositoryInterface defines the interface for voucher wallet data access.
type WalletRepositoryInterface interface {
	Insert(ctx context.Context, tx database.TxQuerier, userID, voucherID string) error
	ListByUser(ctx context.Context, userID string) ([]model.WalletVoucher, error)
	MarkUsed(ctx context.Context, q database.TxQuerier, entryID int64) error
	MarkUnused(ctx context.Context, q database.TxQuerier, entryID int64) error
}

// OrderRepositoryInterface defines the interface for order data access.
type OrderRepositoryInterface interface {
	NextSequenceID(ctx context.Context) (string, error)
	Insert(ctx context.Context, o *model.Order) error
	GetBySeqID(ctx context.Context, seqID string) (*model.Order, error)
	List(ctx context.Context) ([]model.Order, error)
	ListByUser(ctx context.Context, userID string) ([]model.Order, error)
	UpdateStatus(ctx context.Context, seqID string, status model.OrderStatus) error
	Delete(ctx context.Context, seqID string) error
}

// UserRepositoryInterface defines the interface for account data access.
type UserRepositoryInterface interface {
	Insert(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	EnsureAdmin(ctx context.Context, u *model.User) error
}

// CartRepositoryInterface defines the interface for cart data access.
type CartRepositoryInterface interface {
	ListItems(ctx context.Context, userID string) ([]model.CartItem, error)
	Add(ctx context.Context, userID, productID string, quantity int, unitPrice float64) error
	SetQuantity(ctx context.Context, userID, productID string, quantity int) error
	Remove(ctx context.Context, userID, productID string) error
	Clear(ctx context.Context, userID string) error
	RemoveMany(ctx context.Context, q database.TxQuerier, userID string, productIDs []string) error
}

// TxBeginner defines the interface for beginning transactions.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
