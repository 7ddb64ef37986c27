package repositories

import (
	"context"
	"fmt"

	"github.com/arturomz/bank-records-go/pkg/database"
	"github.com/arturomz/bank-records-go/pkg/models"
	"github.com/jackc/pgx/v5"
)

// AccountRepository defines the interface for account repository.
type AccountRepository interface {
	// Create inserts a new account and returns its generated id.
	Create(ctx context.Context, tx pgx.Tx, account models.Account) (int64, error)
	// FindByIdForUpdate reads an account under a row-level exclusive lock.
	// The lock is held until the enclosing transaction commits or rolls back.
	// Returns pgx.ErrNoRows if the account does not exist.
	FindByIdForUpdate(ctx context.Context, tx pgx.Tx, accountID int64) (models.Account, error)
	// AddToBalance applies a signed delta to an account balance in SQL.
	// Callers must hold the row lock via FindByIdForUpdate first.
	AddToBalance(ctx context.Context, tx pgx.Tx, accountID int64, delta float64) error
	// FindDetailById reads an account with its owning user and account type joined.
	FindDetailById(ctx context.Context, tx pgx.Tx, accountID int64) (models.Account, error)
	// List returns all accounts with user and account type joined.
	List(ctx context.Context, db *database.DB) ([]models.Account, error)
}

type AccountRepositoryImpl struct {
}

func NewAccountRepository() AccountRepository {
	return &AccountRepositoryImpl{}
}

func (a AccountRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, account models.Account) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `INSERT INTO accounts (account_number, balance, account_type_id, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		account.AccountNumber,
		account.Balance,
		account.AccountTypeID,
		account.UserID,
		account.CreatedAt,
		account.UpdatedAt,
	).Scan(&id)
	return id, err
}

func (a AccountRepositoryImpl) FindByIdForUpdate(ctx context.Context, tx pgx.Tx, accountID int64) (models.Account, error) {
	var account models.Account
	err := tx.QueryRow(ctx, `SELECT id, account_number, balance::double precision, account_type_id, user_id, created_at, updated_at
		FROM accounts WHERE id = $1
		FOR UPDATE`, accountID).Scan(
		&account.ID,
		&account.AccountNumber,
		&account.Balance,
		&account.AccountTypeID,
		&account.UserID,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	return account, err
}

func (a AccountRepositoryImpl) AddToBalance(ctx context.Context, tx pgx.Tx, accountID int64, delta float64) error {
	tag, err := tx.Exec(ctx, `UPDATE accounts SET balance = balance + $1, updated_at = NOW() WHERE id = $2`,
		delta, accountID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %d: %w", accountID, pgx.ErrNoRows)
	}
	return nil
}

const accountDetailQuery = `SELECT a.id, a.account_number, a.balance::double precision, a.account_type_id, a.user_id, a.created_at, a.updated_at,
		u.id, u.first_name, u.last_name, u.date_of_birth, u.street, u.city, u.postal_code, u.country, u.latitude, u.longitude, u.created_at, u.updated_at,
		t.id, t.name
	FROM accounts a
	JOIN users u ON u.id = a.user_id
	JOIN account_types t ON t.id = a.account_type_id`

func scanAccountDetail(row pgx.Row) (models.Account, error) {
	var account models.Account
	var user models.User
	var accountType models.AccountType
	err := row.Scan(
		&account.ID,
		&account.AccountNumber,
		&account.Balance,
		&account.AccountTypeID,
		&account.UserID,
		&account.CreatedAt,
		&account.UpdatedAt,
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.DateOfBirth,
		&user.Street,
		&user.City,
		&user.PostalCode,
		&user.Country,
		&user.Latitude,
		&user.Longitude,
		&user.CreatedAt,
		&user.UpdatedAt,
		&accountType.ID,
		&accountType.Name,
	)
	if err != nil {
		return models.Account{}, err
	}
	account.User = &user
	account.AccountType = &accountType
	return account, nil
}

func (a AccountRepositoryImpl) FindDetailById(ctx context.Context, tx pgx.Tx, accountID int64) (models.Account, error) {
	return scanAccountDetail(tx.QueryRow(ctx, accountDetailQuery+` WHERE a.id = $1`, accountID))
}

func (a AccountRepositoryImpl) List(ctx context.Context, db *database.DB) ([]models.Account, error) {
	rows, err := db.Query(ctx, accountDetailQuery+` ORDER BY a.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make([]models.Account, 0)
	for rows.Next() {
		account, err := scanAccountDetail(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}
