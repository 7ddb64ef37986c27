package repositories

import (
	"context"

	"github.com/arturomz/bank-records-go/pkg/database"
	"github.com/arturomz/bank-records-go/pkg/models"
)

// AccountTypeRepository defines the interface for account type repository.
// Account types are read-only from the API; rows come from seed migrations.
type AccountTypeRepository interface {
	List(ctx context.Context, db *database.DB) ([]models.AccountType, error)
}

type AccountTypeRepositoryImpl struct {
}

func NewAccountTypeRepository() AccountTypeRepository {
	return &AccountTypeRepositoryImpl{}
}

func (a AccountTypeRepositoryImpl) List(ctx context.Context, db *database.DB) ([]models.AccountType, error) {
	rows, err := db.Query(ctx, `SELECT id, name FROM account_types ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types := make([]models.AccountType, 0)
	for rows.Next() {
		var at models.AccountType
		if err = rows.Scan(&at.ID, &at.Name); err != nil {
			return nil, err
		}
		types = append(types, at)
	}
	return types, rows.Err()
}
