package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/arturomz/bank-records-go/pkg/database"
	"github.com/arturomz/bank-records-go/pkg/geocode"
	"github.com/arturomz/bank-records-go/pkg/models"
	"github.com/arturomz/bank-records-go/pkg/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// startPostgres provisions a throwaway PostgreSQL container with migrations
// applied and returns a connected DB. Skipped with -short.
func startPostgres(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("bank"),
		tcpostgres.WithUsername("bank"),
		tcpostgres.WithPassword("bank"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := fmt.Sprintf("bank:bank@%s:%s/bank?sslmode=disable", host, port.Port())
	logger := zap.NewNop()

	require.NoError(t, database.RunMigrations(logger, dsn))

	db, closer, err := database.New(ctx, logger, database.Config{
		PrimaryDSN: dsn,
		MaxConns:   10,
		MinConns:   1,
	})
	require.NoError(t, err)
	t.Cleanup(closer)
	return db
}

func createTestUser(t *testing.T, db *database.DB) int64 {
	t.Helper()
	var id int64
	repo := repositories.NewUserRepository()
	err := db.WithTransaction(context.Background(), func(ctx context.Context, tx pgx.Tx) error {
		var err error
		id, err = repo.Create(ctx, tx, models.User{
			FirstName:   "Integration",
			LastName:    "Test",
			DateOfBirth: time.Date(1985, 1, 1, 0, 0, 0, 0, time.UTC),
			Street:      "1600 Amphitheatre Parkway",
			City:        "Mountain View",
			PostalCode:  "94043",
			Country:     "USA",
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		})
		return err
	})
	require.NoError(t, err)
	return id
}

func createTestAccount(t *testing.T, db *database.DB, userID int64, number string, balance float64) int64 {
	t.Helper()
	var id int64
	repo := repositories.NewAccountRepository()
	err := db.WithTransaction(context.Background(), func(ctx context.Context, tx pgx.Tx) error {
		var err error
		id, err = repo.Create(ctx, tx, models.Account{
			AccountNumber: number,
			Balance:       balance,
			AccountTypeID: savingsTypeID(t, db),
			UserID:        userID,
			CreatedAt:     time.Now(),
			UpdatedAt:     time.Now(),
		})
		return err
	})
	require.NoError(t, err)
	return id
}

func savingsTypeID(t *testing.T, db *database.DB) int64 {
	t.Helper()
	var id int64
	err := db.QueryRow(context.Background(), `SELECT id FROM account_types WHERE name = 'Savings'`).Scan(&id)
	require.NoError(t, err)
	return id
}

func fetchBalance(t *testing.T, db *database.DB, accountID int64) float64 {
	t.Helper()
	var balance float64
	err := db.QueryRow(context.Background(),
		`SELECT balance::double precision FROM accounts WHERE id = $1`, accountID).Scan(&balance)
	require.NoError(t, err)
	return balance
}

// ---- geocoder stubs ----

type fixedGeocoder struct {
	loc   *geocode.Location
	err   error
	calls int
	last  string
}

func (g *fixedGeocoder) Lookup(_ context.Context, address string) (*geocode.Location, error) {
	g.calls++
	g.last = address
	return g.loc, g.err
}
