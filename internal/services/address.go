package service

import (
	"context"
	"database/sql"
	"errors"

	appErrors "github.com/lucasferreira-dev/food-delivery-platform/internal/errors"
	"github.com/lucasferreira-dev/food-delivery-platform/internal/models"
	repository "github.com/lucasferreira-dev/food-delivery-platform/internal/repositories"
	"github.com/google/uuid"
)

type AddressService interface {
	ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.Address, error)
	GetAddress(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*models.Address, error)
	CreateAddress(ctx context.Context, userID uuid.UUID, req *models.SaveAddressRequest) (*models.Address, error)
	UpdateAddress(ctx context.Context, userID uuid.UUID, id uuid.UUID, req *models.SaveAddressRequest) (*models.Address, error)
	DeleteAddress(ctx context.Context, userID uuid.UUID, id uuid.UUID) error
}

type addressService struct {
	repo repository.AddressRepository
}

func NewAddressService(repo repository.AddressRepository) AddressService {
	return &addressService{repo: repo}
}

func (s *addressService) ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {

	addresses, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to list addresses").WithError(err)
	}

	return addresses, nil
}

func (s *addressService) GetAddress(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*models.Address, error) {

	address, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Address not found").WithError(err)
		}
		return nil, appErrors.DatabaseError("Failed to fetch address").WithError(err)
	}

	if address.UserID != userID {
		return nil, appErrors.ForbiddenError("Address belongs to another user")
	}

	return address, nil
}

func (s *addressService) CreateAddress(ctx context.Context, userID uuid.UUID, req *models.SaveAddressRequest) (*models.Address, error) {

	existing, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to list addresses").WithError(err)
	}

	address := addressFromRequest(req)
	address.ID = uuid.New()
	address.UserID = userID

	// The first address becomes the default automatically.
	if len(existing) == 0 {
		address.IsDefault = true
	}

	if err := s.repo.Create(ctx, address); err != nil {
		return nil, appErrors.DatabaseError("Failed to create address").WithError(err)
	}

	return address, nil
}

func (s *addressService) UpdateAddress(ctx context.Context, userID uuid.UUID, id uuid.UUID, req *models.SaveAddressRequest) (*models.Address, error) {

	if _, err := s.GetAddress(ctx, userID, id); err != nil {
		return nil, err
	}

	address := addressFromRequest(req)
	address.ID = id
	address.UserID = userID

	if err := s.repo.Update(ctx, address); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Address not found").WithError(err)
		}
		return nil, appErrors.DatabaseError("Failed to update address").WithError(err)
	}

	return address, nil
}

func (s *addressService) DeleteAddress(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {

	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.NotFoundError("Address not found").WithError(err)
		}
		return appErrors.DatabaseError("Failed to delete address").WithError(err)
	}

	return nil
}

func addressFromRequest(req *models.SaveAddressRequest) *models.Address {
	return &models.Address{
		Street:       req.Street,
		Number:       req.Number,
		Complement:   req.Complement,
		Neighborhood: req.Neighborhood,
		City:         req.City,
		State:        req.State,
		ZipCode:      req.ZipCode,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		IsDefault:    req.IsDefault,
	}
}
