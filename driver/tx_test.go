package driver

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubTx struct {
	pgx.Tx
	committed int
	rolled    int
}

func (t *stubTx) Commit(context.Context) error   { t.committed++; return nil }
func (t *stubTx) Rollback(context.Context) error { t.rolled++; return nil }

type stubPool struct {
	PostgresPool
	tx     *stubTx
	begins int
}

func (p *stubPool) BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error) {
	p.begins++
	return p.tx, nil
}

func newTestManager() (*TransactionManager, *stubPool) {
	pool := &stubPool{tx: &stubTx{}}
	return NewTransactionManager(pool, zap.NewNop()), pool
}

func TestSerializableTransactionCommitsOnSuccess(t *testing.T) {
	tm, pool := newTestManager()

	err := tm.ExecuteSerializableTransaction(context.Background(), func(pgx.Tx) error {
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, pool.begins)
	assert.Equal(t, 1, pool.tx.committed)
	assert.Equal(t, 0, pool.tx.rolled)
}

func TestSerializableTransactionRollsBackWithoutRetry(t *testing.T) {
	tm, pool := newTestManager()
	errBoom := errors.New("boom")

	err := tm.ExecuteSerializableTransaction(context.Background(), func(pgx.Tx) error {
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	// a plain error is not worth a second attempt
	assert.Equal(t, 1, pool.begins)
	assert.Equal(t, 0, pool.tx.committed)
	assert.Equal(t, 1, pool.tx.rolled)
}

func TestSerializableTransactionRetriesOnConflict(t *testing.T) {
	tm, pool := newTestManager()

	attempts := 0
	err := tm.ExecuteSerializableTransaction(context.Background(), func(pgx.Tx) error {
		attempts++
		if attempts == 1 {
			return &pgconn.PgError{Code: "40001"}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, pool.begins)
	assert.Equal(t, 1, pool.tx.committed)
	assert.Equal(t, 1, pool.tx.rolled)
}

func TestSerializableTransactionGivesUpAfterRetries(t *testing.T) {
	tm, pool := newTestManager()

	err := tm.ExecuteSerializableTransaction(context.Background(), func(pgx.Tx) error {
		return &pgconn.PgError{Code: "40001"}
	})
	require.Error(t, err)

	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
	assert.Equal(t, 3, pool.begins)
	assert.Equal(t, 3, pool.tx.rolled)
}
