package models

import (
	"fmt"
	"time"
)

// User maps to table `users`
type User struct {
	ID          int64
	FirstName   string
	LastName    string
	DateOfBirth time.Time
	Street      string
	City        string
	PostalCode  string
	Country     string
	Latitude    *float64
	Longitude   *float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Address renders the postal address as a single lookup string.
func (u User) Address() string {
	return fmt.Sprintf("%s, %s, %s, %s", u.Street, u.City, u.PostalCode, u.Country)
}
