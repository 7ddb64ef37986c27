package models

import "time"

// AccountType maps to table `account_types`
type AccountType struct {
	ID   int64
	Name string
}

// Account maps to table `accounts`
type Account struct {
	ID            int64
	AccountNumber string
	Balance       float64
	AccountTypeID int64
	UserID        int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
	// Populated by joined reads only; plain FK fields are authoritative.
	User        *User
	AccountType *AccountType
}
