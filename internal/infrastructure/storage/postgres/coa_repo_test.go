package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgercore/internal/core/apperror"
	"ledgercore/internal/core/id"
	"ledgercore/internal/core/types"
)

const balanceDeltaPattern = `UPDATE accounts\s+SET current_balance = current_balance \+ \$3`

func newMockAccountRepo(t *testing.T) (*AccountRepo, *TxManager, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	txManager := NewTxManagerWithPool(mock)
	return NewAccountRepo(txManager), txManager, mock
}

func TestAccountRepo_ApplyBalanceDelta(t *testing.T) {
	ctx := context.Background()
	repo, _, mock := newMockAccountRepo(t)

	companyID, accountID := id.New(), id.New()
	delta := types.MustMoney("120.00")

	mock.ExpectExec(balanceDeltaPattern).
		WithArgs(companyID, accountID, delta).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.ApplyBalanceDelta(ctx, companyID, accountID, delta)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_ApplyBalanceDelta_MissingAccount(t *testing.T) {
	ctx := context.Background()
	repo, _, mock := newMockAccountRepo(t)

	companyID, accountID := id.New(), id.New()
	delta := types.MustMoney("-50.00")

	mock.ExpectExec(balanceDeltaPattern).
		WithArgs(companyID, accountID, delta).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.ApplyBalanceDelta(ctx, companyID, accountID, delta)
	assert.True(t, apperror.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// The delta write must join an ambient transaction instead of grabbing a
// fresh pool connection.
func TestAccountRepo_ApplyBalanceDelta_JoinsAmbientTransaction(t *testing.T) {
	ctx := context.Background()
	repo, txManager, mock := newMockAccountRepo(t)

	companyID, accountID := id.New(), id.New()
	delta := types.MustMoney("75.00")

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted, AccessMode: pgx.ReadWrite})
	mock.ExpectExec(`SET LOCAL statement_timeout`).
		WillReturnResult(pgxmock.NewResult("SET", 0))
	mock.ExpectExec(balanceDeltaPattern).
		WithArgs(companyID, accountID, delta).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err := txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return repo.ApplyBalanceDelta(ctx, companyID, accountID, delta)
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
