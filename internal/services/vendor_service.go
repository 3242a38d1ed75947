package services

import (
	"context"
	"errors"

	"utsav-backend/internal/cache"
	"utsav-backend/internal/models"
	"utsav-backend/internal/repositories"

	"github.com/jackc/pgx/v5"
)

type VendorService struct {
	Repo *repositories.VendorRepository
}

func NewVendorService(repo *repositories.VendorRepository) *VendorService {
	return &VendorService{Repo: repo}
}

func (s *VendorService) CreateVendor(ctx context.Context, req *models.CreateVendorRequest) (*models.Vendor, error) {
	if req.Name == "" {
		return nil, errors.New("vendor name is required")
	}
	vendor := &models.Vendor{
		Name:            req.Name,
		ServiceCategory: req.ServiceCategory,
		Phone:           req.Phone,
		Email:           req.Email,
		City:            req.City,
		Notes:           req.Notes,
		IsActive:        true,
	}
	if err := s.Repo.Create(ctx, vendor); err != nil {
		return nil, err
	}
	cache.InvalidateVendorCaches(ctx)
	return vendor, nil
}

func (s *VendorService) GetVendor(ctx context.Context, id int) (*models.Vendor, error) {
	vendor, err := s.Repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return vendor, nil
}

func (s *VendorService) ListVendors(ctx context.Context) ([]*models.Vendor, error) {
	return s.Repo.List(ctx)
}

func (s *VendorService) UpdateVendor(ctx context.Context, id int, req *models.UpdateVendorRequest) (*models.Vendor, error) {
	vendor, err := s.GetVendor(ctx, id)
	if err != nil {
		return nil, err
	}
	vendor.Name = req.Name
	vendor.ServiceCategory = req.ServiceCategory
	vendor.Phone = req.Phone
	vendor.Email = req.Email
	vendor.City = req.City
	vendor.Notes = req.Notes
	vendor.IsActive = req.IsActive
	if err := s.Repo.Update(ctx, vendor); err != nil {
		return nil, err
	}
	cache.InvalidateVendorCaches(ctx)
	return vendor, nil
}
