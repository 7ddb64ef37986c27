package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/arturomz/bank-records-go/pkg"
	"github.com/arturomz/bank-records-go/pkg/geocode"
	"github.com/arturomz/bank-records-go/pkg/repositories"
	"github.com/arturomz/bank-records-go/services/bank-api/internal/services"
	"github.com/arturomz/bank-records-go/services/bank-api/internal/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sampleCreateRequest() views.UserCreateRequest {
	return views.UserCreateRequest{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		DateOfBirth: "1990-12-10",
		Street:      "12 Analytical Way",
		City:        "London",
		PostalCode:  "EC1A 1BB",
		Country:     "United Kingdom",
	}
}

func TestUserService_CreateWithCoordinates(t *testing.T) {
	db := startPostgres(t)
	gc := &fixedGeocoder{loc: &geocode.Location{Latitude: 51.5074, Longitude: -0.1278}}
	svc := services.NewUserService(zap.NewNop(), db, repositories.NewUserRepository(), gc)

	resp, err := svc.Create(context.Background(), "trace-1", sampleCreateRequest())
	require.NoError(t, err)

	assert.NotZero(t, resp.ID)
	assert.Equal(t, "Ada", resp.FirstName)
	assert.Equal(t, "1990-12-10", resp.DateOfBirth)
	require.NotNil(t, resp.Latitude)
	require.NotNil(t, resp.Longitude)
	assert.InDelta(t, 51.5074, *resp.Latitude, 0.0001)
	assert.InDelta(t, -0.1278, *resp.Longitude, 0.0001)
	assert.Equal(t, "12 Analytical Way, London, EC1A 1BB, United Kingdom", gc.last)

	// coordinates round-trip through storage
	got, err := svc.Get(context.Background(), "trace-1", resp.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Latitude)
	assert.InDelta(t, 51.5074, *got.Latitude, 0.0001)
}

func TestUserService_CreateSurvivesGeocoderFailure(t *testing.T) {
	db := startPostgres(t)
	gc := &fixedGeocoder{err: errors.New("upstream unavailable")}
	svc := services.NewUserService(zap.NewNop(), db, repositories.NewUserRepository(), gc)

	resp, err := svc.Create(context.Background(), "trace-1", sampleCreateRequest())
	require.NoError(t, err)
	assert.Nil(t, resp.Latitude)
	assert.Nil(t, resp.Longitude)
}

func TestUserService_CreateUnresolvableAddress(t *testing.T) {
	db := startPostgres(t)
	gc := &fixedGeocoder{} // nil location, nil error: no match
	svc := services.NewUserService(zap.NewNop(), db, repositories.NewUserRepository(), gc)

	resp, err := svc.Create(context.Background(), "trace-1", sampleCreateRequest())
	require.NoError(t, err)
	assert.Nil(t, resp.Latitude)
	assert.Nil(t, resp.Longitude)
}

func TestUserService_CreateInvalidDate(t *testing.T) {
	db := startPostgres(t)
	svc := services.NewUserService(zap.NewNop(), db, repositories.NewUserRepository(), &fixedGeocoder{})

	req := sampleCreateRequest()
	req.DateOfBirth = "10/12/1990"
	_, err := svc.Create(context.Background(), "trace-1", req)
	assertAppErrorCode(t, err, pkg.ErrInvalidInputCode)
}

func TestUserService_GetNotFound(t *testing.T) {
	db := startPostgres(t)
	svc := services.NewUserService(zap.NewNop(), db, repositories.NewUserRepository(), &fixedGeocoder{})

	_, err := svc.Get(context.Background(), "trace-1", 99999)
	assertAppErrorCode(t, err, pkg.ErrRecordNotFoundCode)
}

func TestUserService_PartialUpdate(t *testing.T) {
	db := startPostgres(t)
	gc := &fixedGeocoder{loc: &geocode.Location{Latitude: 48.8566, Longitude: 2.3522}}
	svc := services.NewUserService(zap.NewNop(), db, repositories.NewUserRepository(), gc)

	created, err := svc.Create(context.Background(), "trace-1", sampleCreateRequest())
	require.NoError(t, err)

	city := "Paris"
	country := "France"
	updated, err := svc.Update(context.Background(), "trace-1", created.ID, views.UserUpdateRequest{
		City:    &city,
		Country: &country,
	})
	require.NoError(t, err)

	// untouched fields survive the merge
	assert.Equal(t, "Ada", updated.FirstName)
	assert.Equal(t, "Lovelace", updated.LastName)
	assert.Equal(t, "1990-12-10", updated.DateOfBirth)
	assert.Equal(t, "12 Analytical Way", updated.Street)
	assert.Equal(t, "Paris", updated.City)
	assert.Equal(t, "France", updated.Country)
	// the merged address is what gets geocoded
	assert.Equal(t, "12 Analytical Way, Paris, EC1A 1BB, France", gc.last)
}

func TestUserService_UpdateNotFound(t *testing.T) {
	db := startPostgres(t)
	svc := services.NewUserService(zap.NewNop(), db, repositories.NewUserRepository(), &fixedGeocoder{})

	name := "Grace"
	_, err := svc.Update(context.Background(), "trace-1", 99999, views.UserUpdateRequest{FirstName: &name})
	assertAppErrorCode(t, err, pkg.ErrRecordNotFoundCode)
}

func TestUserService_ListPagination(t *testing.T) {
	db := startPostgres(t)
	svc := services.NewUserService(zap.NewNop(), db, repositories.NewUserRepository(), &fixedGeocoder{})

	for i := 0; i < 3; i++ {
		_, err := svc.Create(context.Background(), "trace-1", sampleCreateRequest())
		require.NoError(t, err)
	}

	users, err := svc.List(context.Background(), "trace-1", 0, 2)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	rest, err := svc.List(context.Background(), "trace-1", 2, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
	assert.Greater(t, rest[0].ID, users[1].ID)

	_, err = svc.List(context.Background(), "trace-1", -1, 10)
	assertAppErrorCode(t, err, pkg.ErrInvalidInputCode)

	_, err = svc.List(context.Background(), "trace-1", 0, -5)
	assertAppErrorCode(t, err, pkg.ErrInvalidInputCode)

	_, err = svc.List(context.Background(), "trace-1", 0, pkg.MaxPageLimit+1)
	assertAppErrorCode(t, err, pkg.ErrInvalidInputCode)
}
