package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/admindash/internal/shared"
)

// fakeTx records how a transaction was finished. Methods it does not
// override panic through the nil embedded interface.
type fakeTx struct {
	pgx.Tx
	commitErr   error
	committed   bool
	rolledBack  bool
	rollbackErr error
}

func (f *fakeTx) Commit(context.Context) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	f.committed = true
	return nil
}

func (f *fakeTx) Rollback(ctx context.Context) error {
	f.rolledBack = true
	f.rollbackErr = ctx.Err()
	return nil
}

type fakeBeginner struct {
	tx   *fakeTx
	err  error
	opts pgx.TxOptions
}

func (f *fakeBeginner) BeginTx(_ context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	f.opts = opts
	if f.err != nil {
		return nil, f.err
	}
	return f.tx, nil
}

func TestWithTxCommitsOnSuccess(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{}}

	err := WithTx(context.Background(), b, func(pgx.Tx) error { return nil })

	require.NoError(t, err)
	assert.Equal(t, pgx.ReadCommitted, b.opts.IsoLevel)
	assert.True(t, b.tx.committed)
	assert.False(t, b.tx.rolledBack)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{}}
	boom := errors.New("boom")

	err := WithTx(context.Background(), b, func(pgx.Tx) error { return boom })

	require.ErrorIs(t, err, boom)
	assert.False(t, b.tx.committed)
	assert.True(t, b.tx.rolledBack)
}

func TestWithTxRollbackIgnoresCancellation(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{}}
	ctx, cancel := context.WithCancel(context.Background())

	err := WithTx(ctx, b, func(pgx.Tx) error {
		cancel()
		return ctx.Err()
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, b.tx.rolledBack)
	assert.NoError(t, b.tx.rollbackErr)
}

func TestWithTxMapsBeginAndCommitFailures(t *testing.T) {
	err := WithTx(context.Background(), &fakeBeginner{err: errors.New("dial tcp: refused")}, func(pgx.Tx) error {
		t.Fatal("fn must not run")
		return nil
	})
	require.ErrorIs(t, err, shared.ErrStoreUnavailable)

	b := &fakeBeginner{tx: &fakeTx{commitErr: pgx.ErrTxCommitRollback}}
	err = WithTx(context.Background(), b, func(pgx.Tx) error { return nil })
	require.ErrorIs(t, err, shared.ErrStoreUnavailable)
	assert.True(t, b.tx.rolledBack)
}
