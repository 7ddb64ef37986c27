package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"time"

	"github.com/arturomz/bank-records-go/pkg"
	"github.com/arturomz/bank-records-go/pkg/database"
	"github.com/arturomz/bank-records-go/pkg/models"
	"github.com/arturomz/bank-records-go/pkg/repositories"
	"github.com/arturomz/bank-records-go/services/bank-api/configs"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var sampleAddresses = []models.User{
	{Street: "1600 Amphitheatre Parkway", City: "Mountain View", PostalCode: "94043", Country: "USA"},
	{Street: "350 Fifth Avenue", City: "New York", PostalCode: "10118", Country: "USA"},
	{Street: "10 Downing Street", City: "London", PostalCode: "SW1A 2AA", Country: "UK"},
	{Street: "Champ de Mars, 5 Av. Anatole France", City: "Paris", PostalCode: "75007", Country: "France"},
}

// main seeds users and their accounts into the database.
// It initializes logging, loads config, connects to the database, runs
// migrations, and performs inserts inside a single transaction.
func main() {
	noOfUsers := flag.Int("noOfUsers", 100, "Number of users to seed")
	maxAccountsPerUser := flag.Int("maxAccounts", 2, "Max accounts per user")
	minAccountBalance := flag.Float64("minBalance", 500.0, "Min account balance")
	maxAccountBalance := flag.Float64("maxBalance", 1500.0, "Max account balance")

	flag.Parse()

	// Initialize logger
	pkg.InitLogger()
	logger := pkg.Logger
	defer logger.Sync()

	cfg, err := configs.Load(logger)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// Initialize postgres db
	dbConfig := database.Config{
		PrimaryDSN:  cfg.PrimaryDbAddr,
		ReplicaDSNs: []string{cfg.ReplicaDbAddr},
		MaxConns:    cfg.MaxDbCons,
		MinConns:    cfg.MinDbCons,
	}

	ctx := context.Background()
	db, closer, err := database.New(ctx, logger, dbConfig)
	if err != nil {
		logger.Fatal("failed_to_init_DB", zap.Error(err))
	}
	defer closer()

	// Initialize db migrations
	err = database.RunMigrations(logger, cfg.PrimaryDbAddr)
	if err != nil {
		logger.Fatal("failed_to_run_database_migrations", zap.Error(err))
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository()
	accountRepo := repositories.NewAccountRepository()
	accountTypeRepo := repositories.NewAccountTypeRepository()

	accountTypes, err := accountTypeRepo.List(ctx, db)
	if err != nil || len(accountTypes) == 0 {
		logger.Fatal("failed to load account types", zap.Error(err))
	}

	minBal := *minAccountBalance
	maxBal := *maxAccountBalance
	if minBal > maxBal {
		// swap to be safe
		minBal, maxBal = maxBal, minBal
	}

	// Seed data within a transaction to ensure atomicity.
	accountsCreated := 0
	err = db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		for i := 1; i <= *noOfUsers; i++ {
			addr := sampleAddresses[rand.Intn(len(sampleAddresses))]
			user := models.User{
				FirstName:   fmt.Sprintf("Seed%d", i),
				LastName:    "User",
				DateOfBirth: time.Date(1970+rand.Intn(40), time.Month(1+rand.Intn(12)), 1+rand.Intn(28), 0, 0, 0, 0, time.UTC),
				Street:      addr.Street,
				City:        addr.City,
				PostalCode:  addr.PostalCode,
				Country:     addr.Country,
				CreatedAt:   time.Now(),
				UpdatedAt:   time.Now(),
			}
			userID, err := userRepo.Create(ctx, tx, user)
			if err != nil {
				return err
			}

			noOfAccounts := rand.Intn(*maxAccountsPerUser) + 1
			for j := 1; j <= noOfAccounts; j++ {
				bal := minBal + rand.Float64()*(maxBal-minBal)
				_, err = accountRepo.Create(ctx, tx, models.Account{
					AccountNumber: fmt.Sprintf("SEED-%06d-%02d", i, j),
					Balance:       bal,
					AccountTypeID: accountTypes[rand.Intn(len(accountTypes))].ID,
					UserID:        userID,
					CreatedAt:     time.Now(),
					UpdatedAt:     time.Now(),
				})
				if err != nil {
					return err
				}
				accountsCreated++
			}
		}
		return nil
	})
	if err != nil {
		logger.Fatal("seeding failed", zap.Error(err))
	}

	logger.Info("seeding completed",
		zap.Int("users", *noOfUsers),
		zap.Int("accounts", accountsCreated))
}
