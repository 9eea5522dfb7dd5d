package treasury

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgerrors "github.com/angelmondragon/payflow-backend/pkg/errors"
)

func setupTreasuryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:treasury_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`
CREATE TABLE ledger_accounts (
  account_id TEXT PRIMARY KEY,
  balance_cents INTEGER NOT NULL DEFAULT 0,
  updated_at DATETIME
);`).Error)
	return db
}

func TestTransferMovesFunds(t *testing.T) {
	db := setupTreasuryTestDB(t)
	svc, err := NewService(db)
	require.NoError(t, err)

	from := uuid.New()
	to := uuid.New()
	require.NoError(t, svc.Deposit(context.Background(), from, 10_000))

	require.NoError(t, svc.Transfer(db, from, to, 4_000))

	fromBal, err := svc.Balance(context.Background(), from)
	require.NoError(t, err)
	require.EqualValues(t, 6_000, fromBal)

	toBal, err := svc.Balance(context.Background(), to)
	require.NoError(t, err)
	require.EqualValues(t, 4_000, toBal)
}

func TestTransferInsufficientFunds(t *testing.T) {
	db := setupTreasuryTestDB(t)
	svc, err := NewService(db)
	require.NoError(t, err)

	from := uuid.New()
	to := uuid.New()
	require.NoError(t, svc.Deposit(context.Background(), from, 100))

	err = svc.Transfer(db, from, to, 4_000)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeTransferFailed))

	fromBal, err := svc.Balance(context.Background(), from)
	require.NoError(t, err)
	require.EqualValues(t, 100, fromBal, "failed transfer must not touch balances")
}

func TestTransferToUnknownAccountCreatesRow(t *testing.T) {
	db := setupTreasuryTestDB(t)
	svc, err := NewService(db)
	require.NoError(t, err)

	from := uuid.New()
	to := uuid.New()
	require.NoError(t, svc.Deposit(context.Background(), from, 500))
	require.NoError(t, svc.Transfer(db, from, to, 500))

	bal, err := svc.Balance(context.Background(), to)
	require.NoError(t, err)
	require.EqualValues(t, 500, bal)
}

func TestTransferSelfIsNoop(t *testing.T) {
	db := setupTreasuryTestDB(t)
	svc, err := NewService(db)
	require.NoError(t, err)

	acct := uuid.New()
	require.NoError(t, svc.Deposit(context.Background(), acct, 500))
	require.NoError(t, svc.Transfer(db, acct, acct, 400))

	bal, err := svc.Balance(context.Background(), acct)
	require.NoError(t, err)
	require.EqualValues(t, 500, bal)
}
