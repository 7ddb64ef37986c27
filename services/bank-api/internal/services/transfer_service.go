package services

import (
	"context"
	"errors"

	"github.com/arturomz/bank-records-go/pkg"
	"github.com/arturomz/bank-records-go/pkg/database"
	middleware "github.com/arturomz/bank-records-go/pkg/middlewares"
	"github.com/arturomz/bank-records-go/pkg/repositories"
	"github.com/arturomz/bank-records-go/services/bank-api/internal/views"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// TransferService moves funds between two accounts atomically.
type TransferService interface {
	Transfer(ctx context.Context, traceId string, req views.TransferRequest) error
}

type TransferServiceImpl struct {
	logger      *zap.Logger
	db          *database.DB
	accountRepo repositories.AccountRepository
}

func NewTransferService(logger *zap.Logger, db *database.DB, accountRepo repositories.AccountRepository) TransferService {
	return &TransferServiceImpl{
		logger:      logger,
		db:          db,
		accountRepo: accountRepo,
	}
}

// Transfer debits req.Amount from the source account and credits it to the
// destination as one unit of work. Both rows are locked FOR UPDATE, source
// first then destination, before any balance is inspected, so concurrent
// transfers against the same source serialize on the row lock and can never
// drive a balance negative. Any failure after lock acquisition rolls the
// whole transaction back.
func (s *TransferServiceImpl) Transfer(ctx context.Context, traceId string, req views.TransferRequest) (err error) {
	defer func() { middleware.ObserveTransfer(transferOutcome(err)) }()

	if req.Amount <= 0 {
		return pkg.NewAppError(pkg.ErrInvalidAmountCode, "amount must be positive", nil)
	}
	if req.FromAccountID == req.ToAccountID {
		return pkg.NewAppError(pkg.ErrInvalidInputCode, "from and to accounts must differ", nil)
	}

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		// Lock order is fixed: source, then destination. No other operation
		// in this service acquires both locks, so the order cannot deadlock.
		from, err := s.accountRepo.FindByIdForUpdate(ctx, tx, req.FromAccountID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return pkg.NewAppError(pkg.ErrAccountNotFoundCode, "from account not found", err)
			}
			return pkg.HandleSQLError(traceId, s.logger, err)
		}

		_, err = s.accountRepo.FindByIdForUpdate(ctx, tx, req.ToAccountID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return pkg.NewAppError(pkg.ErrAccountNotFoundCode, "to account not found", err)
			}
			return pkg.HandleSQLError(traceId, s.logger, err)
		}

		// Balance read is the freshly locked value, never a cached one.
		if from.Balance < req.Amount {
			return pkg.NewAppError(pkg.ErrInsufficientFundsCode, "insufficient funds", nil)
		}

		if err = s.accountRepo.AddToBalance(ctx, tx, req.FromAccountID, -req.Amount); err != nil {
			return pkg.HandleSQLError(traceId, s.logger, err)
		}
		if err = s.accountRepo.AddToBalance(ctx, tx, req.ToAccountID, req.Amount); err != nil {
			return pkg.HandleSQLError(traceId, s.logger, err)
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("transfer rejected",
			zap.String(pkg.TraceId, traceId),
			zap.Int64("from_account_id", req.FromAccountID),
			zap.Int64("to_account_id", req.ToAccountID),
			zap.Error(err))
		return err
	}

	s.logger.Info("transfer completed",
		zap.String(pkg.TraceId, traceId),
		zap.Int64("from_account_id", req.FromAccountID),
		zap.Int64("to_account_id", req.ToAccountID),
		zap.Float64("amount", req.Amount))
	return nil
}

func transferOutcome(err error) string {
	if err == nil {
		return "success"
	}
	var appErr pkg.AppError
	if errors.As(err, &appErr) && appErr.Code.Status < 500 {
		return "rejected"
	}
	return "failed"
}
