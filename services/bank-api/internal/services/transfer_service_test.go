package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/arturomz/bank-records-go/pkg"
	"github.com/arturomz/bank-records-go/pkg/repositories"
	"github.com/arturomz/bank-records-go/services/bank-api/internal/services"
	"github.com/arturomz/bank-records-go/services/bank-api/internal/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func assertAppErrorCode(t *testing.T, err error, want pkg.ErrorCode) {
	t.Helper()
	var appErr pkg.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, want.Code, appErr.Code.Code)
}

func TestTransfer_MovesFundsAtomically(t *testing.T) {
	db := startPostgres(t)
	svc := services.NewTransferService(zap.NewNop(), db, repositories.NewAccountRepository())

	userID := createTestUser(t, db)
	from := createTestAccount(t, db, userID, "123456789", 1000)
	to := createTestAccount(t, db, userID, "987654321", 500)

	err := svc.Transfer(context.Background(), "trace-1", views.TransferRequest{
		FromAccountID: from,
		ToAccountID:   to,
		Amount:        500,
	})
	require.NoError(t, err)

	fromAfter := fetchBalance(t, db, from)
	toAfter := fetchBalance(t, db, to)
	assert.InDelta(t, 500, fromAfter, 0.001)
	assert.InDelta(t, 1000, toAfter, 0.001)
	// conservation: total unchanged
	assert.InDelta(t, 1500, fromAfter+toAfter, 0.001)
}

func TestTransfer_InvalidAmount(t *testing.T) {
	db := startPostgres(t)
	svc := services.NewTransferService(zap.NewNop(), db, repositories.NewAccountRepository())

	userID := createTestUser(t, db)
	from := createTestAccount(t, db, userID, "123456789", 100)
	to := createTestAccount(t, db, userID, "987654321", 500)

	for _, amount := range []float64{0, -10} {
		err := svc.Transfer(context.Background(), "trace-1", views.TransferRequest{
			FromAccountID: from,
			ToAccountID:   to,
			Amount:        amount,
		})
		assertAppErrorCode(t, err, pkg.ErrInvalidAmountCode)
	}

	assert.InDelta(t, 100, fetchBalance(t, db, from), 0.001)
	assert.InDelta(t, 500, fetchBalance(t, db, to), 0.001)
}

func TestTransfer_AccountNotFound(t *testing.T) {
	db := startPostgres(t)
	svc := services.NewTransferService(zap.NewNop(), db, repositories.NewAccountRepository())

	userID := createTestUser(t, db)
	real := createTestAccount(t, db, userID, "123456789", 100)

	err := svc.Transfer(context.Background(), "trace-1", views.TransferRequest{
		FromAccountID: real + 1000,
		ToAccountID:   real,
		Amount:        50,
	})
	assertAppErrorCode(t, err, pkg.ErrAccountNotFoundCode)

	err = svc.Transfer(context.Background(), "trace-1", views.TransferRequest{
		FromAccountID: real,
		ToAccountID:   real + 1000,
		Amount:        50,
	})
	assertAppErrorCode(t, err, pkg.ErrAccountNotFoundCode)

	assert.InDelta(t, 100, fetchBalance(t, db, real), 0.001)
}

func TestTransfer_InsufficientFunds(t *testing.T) {
	db := startPostgres(t)
	svc := services.NewTransferService(zap.NewNop(), db, repositories.NewAccountRepository())

	userID := createTestUser(t, db)
	from := createTestAccount(t, db, userID, "123456789", 100)
	to := createTestAccount(t, db, userID, "987654321", 500)

	err := svc.Transfer(context.Background(), "trace-1", views.TransferRequest{
		FromAccountID: from,
		ToAccountID:   to,
		Amount:        200,
	})
	assertAppErrorCode(t, err, pkg.ErrInsufficientFundsCode)

	assert.InDelta(t, 100, fetchBalance(t, db, from), 0.001)
	assert.InDelta(t, 500, fetchBalance(t, db, to), 0.001)
}

func TestTransfer_SameAccountRejected(t *testing.T) {
	db := startPostgres(t)
	svc := services.NewTransferService(zap.NewNop(), db, repositories.NewAccountRepository())

	userID := createTestUser(t, db)
	account := createTestAccount(t, db, userID, "123456789", 100)

	err := svc.Transfer(context.Background(), "trace-1", views.TransferRequest{
		FromAccountID: account,
		ToAccountID:   account,
		Amount:        50,
	})
	assertAppErrorCode(t, err, pkg.ErrInvalidInputCode)
	assert.InDelta(t, 100, fetchBalance(t, db, account), 0.001)
}

// TestTransfer_ConcurrentDebits verifies that concurrent transfers against
// one source account serialize on the row lock: with balance B and N
// attempted debits of amount A, exactly floor(B/A) succeed and the balance
// never goes negative.
func TestTransfer_ConcurrentDebits(t *testing.T) {
	db := startPostgres(t)
	svc := services.NewTransferService(zap.NewNop(), db, repositories.NewAccountRepository())

	userID := createTestUser(t, db)
	from := createTestAccount(t, db, userID, "123456789", 100)
	to := createTestAccount(t, db, userID, "987654321", 0)

	const attempts = 20
	const amount = 10.0

	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- svc.Transfer(context.Background(), "trace-1", views.TransferRequest{
				FromAccountID: from,
				ToAccountID:   to,
				Amount:        amount,
			})
		}()
	}
	wg.Wait()
	close(results)

	succeeded, rejected := 0, 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assertAppErrorCode(t, err, pkg.ErrInsufficientFundsCode)
		rejected++
	}

	assert.Equal(t, 10, succeeded, "exactly floor(100/10) transfers should succeed")
	assert.Equal(t, attempts-10, rejected)
	assert.InDelta(t, 0, fetchBalance(t, db, from), 0.001)
	assert.InDelta(t, 100, fetchBalance(t, db, to), 0.001)
}
