package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fairyhunter13/ecommerce-order-system/internal/model"
	"github.com/fairyhunter13/ecommerce-order-system/pkg/database"
)

// mockProductRepository is a mock implementation of ProductRepositoryInterface.
type mockProductRepository struct {
	findByRefFn func(ctx context.Context, ref string) (*model.Product, error)
	getByIDFn   func(ctx context.Context, id string) (*model.Product, error)
	listFn      func(ctx context.Context) ([]model.Product, error)
	insertFn    func(ctx context.Context, p *model.Product) error
	updateFn    func(ctx context.Context, p *model.Product) error
	deleteFn    func(ctx context.Context, id string) error
	reserveFn   func(ctx context.Context, q database.TxQuerier, id string, quantity int) error
	releaseFn   func(ctx context.Context, q database.TxQuerier, id string, quantity int) error
}

func (m *mockProductRepository) FindByRef(ctx context.Context, ref string) (*model.Product, error) {
	if m.findByRefFn != nil {
		return m.findByRefFn(ctx, ref)
	}
	return nil, nil
}

func (m *mockProductRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockProductRepository) List(ctx context.Context) ([]model.Product, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockProductRepository) Insert(ctx context.Context, p *model.Product) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, p)
	}
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, p *model.Product) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, p)
	}
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockProductRepository) Reserve(ctx context.Context, q database.TxQuerier, id string, quantity int) error {
	if m.reserveFn != nil {
		return m.reserveFn(ctx, q, id, quantity)
	}
	return nil
}

func (m *mockProductRepository) Release(ctx context.Context, q database.TxQuerier, id string, quantity int) error {
	if m.releaseFn != nil {
		return m.releaseFn(ctx, q, id, quantity)
	}
	return nil
}

// mockVoucherRepository is a mock implementation of VoucherRepositoryInterface.
type mockVoucherRepository struct {
	insertFn           func(ctx context.Context, v *model.Voucher) error
	getByIDFn          func(ctx context.Context, id string) (*model.Voucher, error)
	getByCodeFn        func(ctx context.Context, code string) (*model.Voucher, error)
	getForUpdateFn     func(ctx context.Context, tx database.TxQuerier, id string) (*model.Voucher, error)
	listFn             func(ctx context.Context) ([]model.Voucher, error)
	listAvailableFn    func(ctx context.Context, now time.Time) ([]model.Voucher, error)
	updateFn           func(ctx context.Context, v *model.Voucher) error
	deleteFn           func(ctx context.Context, id string) error
	incrementClaimedFn func(ctx context.Context, q database.TxQuerier, id string) error
	incrementUsedFn    func(ctx context.Context, q database.TxQuerier, id string) error
	decrementUsedFn    func(ctx context.Context, q database.TxQuerier, id string) error
}

func (m *mockVoucherRepository) Insert(ctx context.Context, v *model.Voucher) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, v)
	}
	return nil
}

func (m *mockVoucherRepository) GetByID(ctx context.Context, id string) (*model.Voucher, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockVoucherRepository) GetByCode(ctx context.Context, code string) (*model.Voucher, error) {
	if m.getByCodeFn != nil {
		return m.getByCodeFn(ctx, code)
	}
	return nil, nil
}

func (m *mockVoucherRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, id string) (*model.Voucher, error) {
	if m.getForUpdateFn != nil {
		return m.getForUpdateFn(ctx, tx, id)
	}
	return nil, nil
}

func (m *mockVoucherRepository) List(ctx context.Context) ([]model.Voucher, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockVoucherRepository) ListAvailable(ctx context.Context, now time.Time) ([]model.Voucher, error) {
	if m.listAvailableFn != nil {
		return m.listAvailableFn(ctx, now)
	}
	return nil, nil
}

func (m *mockVoucherRepository) Update(ctx context.Context, v *model.Voucher) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, v)
	}
	return nil
}

func (m *mockVoucherRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockVoucherRepository) IncrementClaimed(ctx context.Context, q database.TxQuerier, id string) error {
	if m.incrementClaimedFn != nil {
		return m.incrementClaimedFn(ctx, q, id)
	}
	return nil
}

func (m *mockVoucherRepository) IncrementUsed(ctx context.Context, q database.TxQuerier, id string) error {
	if m.incrementUsedFn != nil {
		return m.incrementUsedFn(ctx, q, id)
	}
	return nil
}

func (m *mockVoucherRepository) DecrementUsed(ctx context.Context, q database.TxQuerier, id string) error {
	if m.decrementUsedFn != nil {
		return m.decrementUsedFn(ctx, q, id)
	}
	return nil
}

// mockWalletRepository is a mock implementation of WalletRepositoryInterface.
type mockWalletRepository struct {
	insertFn     func(ctx context.Context, tx database.TxQuerier, userID, voucherID string) error
	listByUserFn func(ctx context.Context, userID string) ([]model.WalletVoucher, error)
	markUsedFn   func(ctx context.Context, q database.TxQuerier, entryID int64) error
	markUnusedFn func(ctx context.Context, q database.TxQuerier, entryID int64) error
}

func (m *mockWalletRepository) Insert(ctx context.Context, tx database.TxQuerier, userID, voucherID string) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, tx, userID, voucherID)
	}
	return nil
}

func (m *mockWalletRepository) ListByUser(ctx context.Context, userID string) ([]model.WalletVoucher, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID)
	}
	return []model.WalletVoucher{}, nil
}

func (m *mockWalletRepository) MarkUsed(ctx context.Context, q database.TxQuerier, entryID int64) error {
	if m.markUsedFn != nil {
		return m.markUsedFn(ctx, q, entryID)
	}
	return nil
}

func (m *mockWalletRepository) MarkUnused(ctx context.Context, q database.TxQuerier, entryID int64) error {
	if m.markUnusedFn != nil {
		return m.markUnusedFn(ctx, q, entryID)
	}
	return nil
}

// mockOrderRepository is a mock implementation of OrderRepositoryInterface.
type mockOrderRepository struct {
	nextSequenceIDFn func(ctx context.Context) (string, error)
	insertFn         func(ctx context.Context, o *model.Order) error
	getBySeqIDFn     func(ctx context.Context, seqID string) (*model.Order, error)
	listFn           func(ctx context.Context) ([]model.Order, error)
	listByUserFn     func(ctx context.Context, userID string) ([]model.Order, error)
	updateStatusFn   func(ctx context.Context, seqID string, status model.OrderStatus) error
	deleteFn         func(ctx context.Context, seqID string) error
}

func (m *mockOrderRepository) NextSequenceID(ctx context.Context) (string, error) {
	if m.nextSequenceIDFn != nil {
		return m.nextSequenceIDFn(ctx)
	}
	return "ORD001", nil
}

func (m *mockOrderRepository) Insert(ctx context.Context, o *model.Order) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, o)
	}
	return nil
}

func (m *mockOrderRepository) GetBySeqID(ctx context.Context, seqID string) (*model.Order, error) {
	if m.getBySeqIDFn != nil {
		return m.getBySeqIDFn(ctx, seqID)
	}
	return nil, nil
}

func (m *mockOrderRepository) List(ctx context.Context) ([]model.Order, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockOrderRepository) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, seqID string, status model.OrderStatus) error {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, seqID, status)
	}
	return nil
}

func (m *mockOrderRepository) Delete(ctx context.Context, seqID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, seqID)
	}
	return nil
}

// mockUserRepository is a mock implementation of UserRepositoryInterface.
type mockUserRepository struct {
	insertFn      func(ctx context.Context, u *model.User) error
	getByIDFn     func(ctx context.Context, id string) (*model.User, error)
	getByEmailFn  func(ctx context.Context, email string) (*model.User, error)
	ensureAdminFn func(ctx context.Context, u *model.User) error
}

func (m *mockUserRepository) Insert(ctx context.Context, u *model.User) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, u)
	}
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return &model.User{ID: id, Username: "tester", Role: model.RoleUser}, nil
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepository) EnsureAdmin(ctx context.Context, u *model.User) error {
	if m.ensureAdminFn != nil {
		return m.ensureAdminFn(ctx, u)
	}
	return nil
}

// mockCartRepository is a mock implementation of CartRepositoryInterface.
type mockCartRepository struct {
	listItemsFn   func(ctx context.Context, userID string) ([]model.CartItem, error)
	addFn         func(ctx context.Context, userID, productID string, quantity int, unitPrice float64) error
	setQuantityFn func(ctx context.Context, userID, productID string, quantity int) error
	removeFn      func(ctx context.Context, userID, productID string) error
	clearFn       func(ctx context.Context, userID string) error
	removeManyFn  func(ctx context.Context, q database.TxQuerier, userID string, productIDs []string) error
}

func (m *mockCartRepository) ListItems(ctx context.Context, userID string) ([]model.CartItem, error) {
	if m.listItemsFn != nil {
		return m.listItemsFn(ctx, userID)
	}
	return []model.CartItem{}, nil
}

func (m *mockCartRepository) Add(ctx context.Context, userID, productID string, quantity int, unitPrice float64) error {
	if m.addFn != nil {
		return m.addFn(ctx, userID, productID, quantity, unitPrice)
	}
	return nil
}

func (m *mockCartRepository) SetQuantity(ctx context.Context, userID, productID string, quantity int) error {
	if m.setQuantityFn != nil {
		return m.setQuantityFn(ctx, userID, productID, quantity)
	}
	return nil
}

func (m *mockCartRepository) Remove(ctx context.Context, userID, productID string) error {
	if m.removeFn != nil {
		return m.removeFn(ctx, userID, productID)
	}
	return nil
}

func (m *mockCartRepository) Clear(ctx context.Context, userID string) error {
	if m.clearFn != nil {
		return m.clearFn(ctx, userID)
	}
	return nil
}

func (m *mockCartRepository) RemoveMany(ctx context.Context, q database.TxQuerier, userID string, productIDs []string) error {
	if m.removeManyFn != nil {
		return m.removeManyFn(ctx, q, userID, productIDs)
	}
	return nil
}

// mockTx is a mock implementation of pgx.Tx for testing transactions.
type mockTx struct {
	commitFn   func(ctx context.Context) error
	rollbackFn func(ctx context.Context) error
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, errors.New("nested transactions not supported")
}

func (m *mockTx) Commit(ctx context.Context) error {
	if m.commitFn != nil {
		return m.commitFn(ctx)
	}
	return nil
}

func (m *mockTx) Rollback(ctx context.Context) error {
	if m.rollbackFn != nil {
		return m.rollbackFn(ctx)
	}
	return nil
}

func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return nil
}

func (m *mockTx) LargeObjects() pgx.LargeObjects {
	return pgx.LargeObjects{}
}

func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (m *mockTx) Conn() *pgx.Conn {
	return nil
}

// mockTxBeginner is a mock implementation of TxBeginner.
type mockTxBeginner struct {
	beginFn func(ctx context.Context) (pgx.Tx, error)
}

func (m *mockTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	if m.beginFn != nil {
		return m.beginFn(ctx)
	}
	return &mockTx{}, nil
}

// stubQuerier satisfies database.TxQuerier for services that run
// single-statement mutations outside an explicit transaction.
type stubQuerier struct{}

func (stubQuerier) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (stubQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (stubQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func intPtr(i int) *int {
	return &i
}

func floatPtr(f float64) *float64 {
	return &f
}
