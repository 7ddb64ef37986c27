package services

import (
	"context"
	"errors"
	"time"

	"github.com/arturomz/bank-records-go/pkg"
	"github.com/arturomz/bank-records-go/pkg/database"
	"github.com/arturomz/bank-records-go/pkg/geocode"
	"github.com/arturomz/bank-records-go/pkg/models"
	"github.com/arturomz/bank-records-go/pkg/repositories"
	"github.com/arturomz/bank-records-go/services/bank-api/internal/views"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type UserService interface {
	Create(ctx context.Context, traceId string, req views.UserCreateRequest) (views.UserResponse, error)
	List(ctx context.Context, traceId string, offset, limit int) ([]views.UserResponse, error)
	Get(ctx context.Context, traceId string, userID int64) (views.UserResponse, error)
	Update(ctx context.Context, traceId string, userID int64, req views.UserUpdateRequest) (views.UserResponse, error)
}

type UserServiceImpl struct {
	logger   *zap.Logger
	db       *database.DB
	userRepo repositories.UserRepository
	geocoder geocode.Geocoder
}

func NewUserService(logger *zap.Logger, db *database.DB, userRepo repositories.UserRepository, geocoder geocode.Geocoder) UserService {
	return &UserServiceImpl{
		logger:   logger,
		db:       db,
		userRepo: userRepo,
		geocoder: geocoder,
	}
}

func (s *UserServiceImpl) Create(ctx context.Context, traceId string, req views.UserCreateRequest) (views.UserResponse, error) {
	dob, err := views.ParseDate(req.DateOfBirth)
	if err != nil {
		return views.UserResponse{}, pkg.NewAppError(pkg.ErrInvalidInputCode, "invalid date_of_birth", err)
	}

	user := models.User{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: dob,
		Street:      req.Street,
		City:        req.City,
		PostalCode:  req.PostalCode,
		Country:     req.Country,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	// The coordinate lookup happens before the transaction opens so a slow
	// collaborator never extends the write path.
	s.applyCoordinates(ctx, traceId, &user)

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		id, err := s.userRepo.Create(ctx, tx, user)
		if err != nil {
			return pkg.HandleSQLError(traceId, s.logger, err)
		}
		user.ID = id
		return nil
	})
	if err != nil {
		return views.UserResponse{}, err
	}

	s.logger.Info("user created", zap.String(pkg.TraceId, traceId), zap.Int64("user_id", user.ID))
	return views.ToUserResponse(user), nil
}

func (s *UserServiceImpl) List(ctx context.Context, traceId string, offset, limit int) ([]views.UserResponse, error) {
	if offset < 0 {
		return nil, pkg.NewAppError(pkg.ErrInvalidInputCode, "offset must not be negative", nil)
	}
	if limit < 0 {
		return nil, pkg.NewAppError(pkg.ErrInvalidInputCode, "limit must not be negative", nil)
	}
	if limit == 0 {
		limit = pkg.DefaultPageLimit
	}
	if limit > pkg.MaxPageLimit {
		return nil, pkg.NewAppError(pkg.ErrInvalidInputCode, "limit must not exceed 100", nil)
	}

	users, err := s.userRepo.List(ctx, s.db, offset, limit)
	if err != nil {
		return nil, pkg.HandleSQLError(traceId, s.logger, err)
	}
	return views.ToUserResponses(users), nil
}

func (s *UserServiceImpl) Get(ctx context.Context, traceId string, userID int64) (views.UserResponse, error) {
	user, err := s.userRepo.FindById(ctx, s.db, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return views.UserResponse{}, pkg.NewAppError(pkg.ErrRecordNotFoundCode, "user not found", err)
		}
		return views.UserResponse{}, pkg.HandleSQLError(traceId, s.logger, err)
	}
	return views.ToUserResponse(user), nil
}

// Update applies the fields present in req to the stored user, re-runs the
// coordinate lookup against the merged address, and persists the result.
func (s *UserServiceImpl) Update(ctx context.Context, traceId string, userID int64, req views.UserUpdateRequest) (views.UserResponse, error) {
	user, err := s.userRepo.FindById(ctx, s.db, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return views.UserResponse{}, pkg.NewAppError(pkg.ErrRecordNotFoundCode, "user not found", err)
		}
		return views.UserResponse{}, pkg.HandleSQLError(traceId, s.logger, err)
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.DateOfBirth != nil {
		dob, err := views.ParseDate(*req.DateOfBirth)
		if err != nil {
			return views.UserResponse{}, pkg.NewAppError(pkg.ErrInvalidInputCode, "invalid date_of_birth", err)
		}
		user.DateOfBirth = dob
	}
	if req.Street != nil {
		user.Street = *req.Street
	}
	if req.City != nil {
		user.City = *req.City
	}
	if req.PostalCode != nil {
		user.PostalCode = *req.PostalCode
	}
	if req.Country != nil {
		user.Country = *req.Country
	}

	s.applyCoordinates(ctx, traceId, &user)

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.userRepo.Update(ctx, tx, user); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return pkg.NewAppError(pkg.ErrRecordNotFoundCode, "user not found", err)
			}
			return pkg.HandleSQLError(traceId, s.logger, err)
		}
		return nil
	})
	if err != nil {
		return views.UserResponse{}, err
	}

	s.logger.Info("user updated", zap.String(pkg.TraceId, traceId), zap.Int64("user_id", user.ID))
	return views.ToUserResponse(user), nil
}

// applyCoordinates resolves the user's address into latitude/longitude.
// Lookup failure is never fatal: coordinates reset to absent and the
// operation proceeds.
func (s *UserServiceImpl) applyCoordinates(ctx context.Context, traceId string, user *models.User) {
	loc, err := s.geocoder.Lookup(ctx, user.Address())
	if err != nil {
		s.logger.Warn("geocode lookup failed",
			zap.String(pkg.TraceId, traceId),
			zap.Error(err))
		user.Latitude, user.Longitude = nil, nil
		return
	}
	if loc == nil {
		s.logger.Info("address could not be resolved", zap.String(pkg.TraceId, traceId))
		user.Latitude, user.Longitude = nil, nil
		return
	}
	user.Latitude, user.Longitude = &loc.Latitude, &loc.Longitude
}
