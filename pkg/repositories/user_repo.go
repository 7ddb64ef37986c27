package repositories

import (
	"context"
	"fmt"

	"github.com/arturomz/bank-records-go/pkg/database"
	"github.com/arturomz/bank-records-go/pkg/models"
	"github.com/jackc/pgx/v5"
)

// UserRepository defines the interface for user repository.
type UserRepository interface {
	// Create inserts a new user and returns its generated id.
	Create(ctx context.Context, tx pgx.Tx, user models.User) (int64, error)
	// FindById finds a user by ID. Returns pgx.ErrNoRows if absent.
	FindById(ctx context.Context, db *database.DB, userID int64) (models.User, error)
	// List returns users ordered by insertion.
	List(ctx context.Context, db *database.DB, offset, limit int) ([]models.User, error)
	// Update overwrites all mutable columns of a user row.
	Update(ctx context.Context, tx pgx.Tx, user models.User) error
}

type UserRepositoryImpl struct {
}

func NewUserRepository() UserRepository {
	return &UserRepositoryImpl{}
}

const userColumns = `id, first_name, last_name, date_of_birth, street, city, postal_code, country, latitude, longitude, created_at, updated_at`

func (u UserRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, user models.User) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `INSERT INTO users (first_name, last_name, date_of_birth, street, city, postal_code, country, latitude, longitude, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		user.FirstName,
		user.LastName,
		user.DateOfBirth,
		user.Street,
		user.City,
		user.PostalCode,
		user.Country,
		user.Latitude,
		user.Longitude,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&id)
	return id, err
}

func (u UserRepositoryImpl) FindById(ctx context.Context, db *database.DB, userID int64) (models.User, error) {
	var user models.User
	err := db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID).Scan(
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
	)
	return user, err
}

func (u UserRepositoryImpl) List(ctx context.Context, db *database.DB, offset, limit int) ([]models.User, error) {
	rows, err := db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var user models.User
		if err = rows.Scan(
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
		); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (u UserRepositoryImpl) Update(ctx context.Context, tx pgx.Tx, user models.User) error {
	tag, err := tx.Exec(ctx, `UPDATE users
		SET first_name = $1, last_name = $2, date_of_birth = $3, street = $4, city = $5,
		    postal_code = $6, country = $7, latitude = $8, longitude = $9, updated_at = NOW()
		WHERE id = $10`,
		user.FirstName,
		user.LastName,
		user.DateOfBirth,
		user.Street,
		user.City,
		user.PostalCode,
		user.Country,
		user.Latitude,
		user.Longitude,
		user.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %d: %w", user.ID, pgx.ErrNoRows)
	}
	return nil
}
