package order

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"goflare.io/catering/driver"
	"goflare.io/catering/models"
	"goflare.io/catering/models/enum"
)

type fakeRow struct {
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error { return r.scan(dest...) }

type fakeBatchResults struct {
	execs int
}

func (b *fakeBatchResults) Exec() (pgconn.CommandTag, error) {
	b.execs++
	return pgconn.CommandTag{}, nil
}
func (b *fakeBatchResults) Query() (pgx.Rows, error) { return nil, nil }
func (b *fakeBatchResults) QueryRow() pgx.Row        { return nil }
func (b *fakeBatchResults) Close() error             { return nil }

// fakeTx overrides the methods Create touches; anything else is unexpected.
type fakeTx struct {
	pgx.Tx
	queryRow  func(sql string, args ...any) pgx.Row
	execSQL   []string
	batchLens []int
	committed bool
	rolled    bool
}

func (t *fakeTx) Commit(context.Context) error   { t.committed = true; return nil }
func (t *fakeTx) Rollback(context.Context) error { t.rolled = true; return nil }

func (t *fakeTx) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	t.execSQL = append(t.execSQL, sql)
	return pgconn.CommandTag{}, nil
}

func (t *fakeTx) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	return t.queryRow(sql, args...)
}

func (t *fakeTx) SendBatch(_ context.Context, b *pgx.Batch) pgx.BatchResults {
	t.batchLens = append(t.batchLens, b.Len())
	return &fakeBatchResults{}
}

type fakePool struct {
	driver.PostgresPool
	tx     *fakeTx
	begins int
}

func (p *fakePool) BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error) {
	p.begins++
	return p.tx, nil
}

func newTestOrder() *models.Order {
	return &models.Order{
		UserID: "user-1",
		Items: []models.CartItem{
			{ProductID: "prod-a", Name: "Canapes", UnitPrice: decimal.RequireFromString("10.00"), Quantity: 2},
			{ProductID: "prod-b", Name: "Lemonade", UnitPrice: decimal.RequireFromString("5.00"), Quantity: 1},
		},
		Subtotal:       decimal.RequireFromString("25.00"),
		Shipping:       decimal.RequireFromString("5.00"),
		Total:          decimal.RequireFromString("30.00"),
		Currency:       "usd",
		Status:         enum.OrderStatusPending,
		IdempotencyKey: "key-1",
	}
}

func newTestRepository(tx *fakeTx) (Store, *fakePool) {
	pool := &fakePool{tx: tx}
	tm := driver.NewTransactionManager(pool, zap.NewNop())
	return NewRepository(pool, tm, zap.NewNop()), pool
}

func TestCreateReturnsExistingOrderOnDuplicateKey(t *testing.T) {
	tx := &fakeTx{
		queryRow: func(string, ...any) pgx.Row {
			return fakeRow{scan: func(dest ...any) error {
				*(dest[0].(*string)) = "order-42"
				return nil
			}}
		},
	}
	repo, _ := newTestRepository(tx)

	orderID, err := repo.Create(context.Background(), newTestOrder())
	require.NoError(t, err)
	assert.Equal(t, "order-42", orderID)

	// the stored order stands; nothing new was written
	assert.Empty(t, tx.execSQL)
	assert.Empty(t, tx.batchLens)
	assert.True(t, tx.committed)
}

func TestCreateInsertsOrderAndItems(t *testing.T) {
	tx := &fakeTx{
		queryRow: func(string, ...any) pgx.Row {
			return fakeRow{scan: func(...any) error { return pgx.ErrNoRows }}
		},
	}
	repo, pool := newTestRepository(tx)

	orderID, err := repo.Create(context.Background(), newTestOrder())
	require.NoError(t, err)
	assert.NotEmpty(t, orderID)

	require.Len(t, tx.execSQL, 1)
	assert.Contains(t, tx.execSQL[0], "INSERT INTO orders")
	require.Len(t, tx.batchLens, 1)
	assert.Equal(t, 2, tx.batchLens[0])
	assert.True(t, tx.committed)
	assert.False(t, tx.rolled)
	assert.Equal(t, 1, pool.begins)
}
