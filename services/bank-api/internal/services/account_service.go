package services

import (
	"context"
	"time"

	"github.com/arturomz/bank-records-go/pkg"
	"github.com/arturomz/bank-records-go/pkg/database"
	"github.com/arturomz/bank-records-go/pkg/models"
	"github.com/arturomz/bank-records-go/pkg/repositories"
	"github.com/arturomz/bank-records-go/services/bank-api/internal/views"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type AccountService interface {
	Create(ctx context.Context, traceId string, req views.AccountCreateRequest) (views.AccountResponse, error)
	List(ctx context.Context, traceId string) ([]views.AccountResponse, error)
	ListTypes(ctx context.Context, traceId string) ([]views.AccountTypeResponse, error)
}

type AccountServiceImpl struct {
	logger          *zap.Logger
	db              *database.DB
	accountRepo     repositories.AccountRepository
	accountTypeRepo repositories.AccountTypeRepository
}

func NewAccountService(logger *zap.Logger, db *database.DB, accountRepo repositories.AccountRepository, accountTypeRepo repositories.AccountTypeRepository) AccountService {
	return &AccountServiceImpl{
		logger:          logger,
		db:              db,
		accountRepo:     accountRepo,
		accountTypeRepo: accountTypeRepo,
	}
}

// Create persists an account and returns it with user and type joined.
// Foreign key and uniqueness violations surface through the SQL error mapping.
func (s *AccountServiceImpl) Create(ctx context.Context, traceId string, req views.AccountCreateRequest) (views.AccountResponse, error) {
	account := models.Account{
		AccountNumber: req.AccountNumber,
		Balance:       req.Balance,
		AccountTypeID: req.AccountTypeID,
		UserID:        req.UserID,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		id, err := s.accountRepo.Create(ctx, tx, account)
		if err != nil {
			return pkg.HandleSQLError(traceId, s.logger, err)
		}
		account, err = s.accountRepo.FindDetailById(ctx, tx, id)
		if err != nil {
			return pkg.HandleSQLError(traceId, s.logger, err)
		}
		return nil
	})
	if err != nil {
		return views.AccountResponse{}, err
	}

	s.logger.Info("account created",
		zap.String(pkg.TraceId, traceId),
		zap.Int64("account_id", account.ID),
		zap.Int64("user_id", account.UserID))
	return views.ToAccountResponse(account), nil
}

func (s *AccountServiceImpl) List(ctx context.Context, traceId string) ([]views.AccountResponse, error) {
	accounts, err := s.accountRepo.List(ctx, s.db)
	if err != nil {
		return nil, pkg.HandleSQLError(traceId, s.logger, err)
	}
	return views.ToAccountResponses(accounts), nil
}

func (s *AccountServiceImpl) ListTypes(ctx context.Context, traceId string) ([]views.AccountTypeResponse, error) {
	types, err := s.accountTypeRepo.List(ctx, s.db)
	if err != nil {
		return nil, pkg.HandleSQLError(traceId, s.logger, err)
	}
	return views.ToAccountTypeResponses(types), nil
}
