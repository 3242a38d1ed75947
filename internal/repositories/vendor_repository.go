package repositories

import (
	"context"
	"fmt"

	"utsav-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type VendorRepository struct {
	DB *pgxpool.Pool
}

func NewVendorRepository(db *pgxpool.Pool) *VendorRepository {
	return &VendorRepository{DB: db}
}

func (r *VendorRepository) Create(ctx context.Context, vendor *models.Vendor) error {
	query := `
		INSERT INTO vendors (name, service_category, phone, email, city, notes, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := r.DB.QueryRow(ctx, query,
		vendor.Name,
		vendor.ServiceCategory,
		vendor.Phone,
		vendor.Email,
		vendor.City,
		vendor.Notes,
		vendor.IsActive,
	).Scan(&vendor.ID, &vendor.CreatedAt, &vendor.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create vendor: %w", err)
	}
	return nil
}

func (r *VendorRepository) Get(ctx context.Context, id int) (*models.Vendor, error) {
	query := `
		SELECT id, name, service_category, COALESCE(phone, ''), COALESCE(email, ''), COALESCE(city, ''),
		       COALESCE(notes, ''), is_active, created_at, updated_at
		FROM vendors
		WHERE id = $1
	`
	vendor := &models.Vendor{}
	err := r.DB.QueryRow(ctx, query, id).Scan(
		&vendor.ID,
		&vendor.Name,
		&vendor.ServiceCategory,
		&vendor.Phone,
		&vendor.Email,
		&vendor.City,
		&vendor.Notes,
		&vendor.IsActive,
		&vendor.CreatedAt,
		&vendor.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return vendor, nil
}

func (r *VendorRepository) List(ctx context.Context) ([]*models.Vendor, error) {
	query := `
		SELECT id, name, service_category, COALESCE(phone, ''), COALESCE(email, ''), COALESCE(city, ''),
		       COALESCE(notes, ''), is_active, created_at, updated_at
		FROM vendors
		ORDER BY name
	`
	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vendors []*models.Vendor
	for rows.Next() {
		vendor := &models.Vendor{}
		err := rows.Scan(
			&vendor.ID,
			&vendor.Name,
			&vendor.ServiceCategory,
			&vendor.Phone,
			&vendor.Email,
			&vendor.City,
			&vendor.Notes,
			&vendor.IsActive,
			&vendor.CreatedAt,
			&vendor.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		vendors = append(vendors, vendor)
	}
	return vendors, nil
}

func (r *VendorRepository) Update(ctx context.Context, vendor *models.Vendor) error {
	query := `
		UPDATE vendors
		SET name = $1, service_category = $2, phone = $3, email = $4, city = $5, notes = $6, is_active = $7, updated_at = NOW()
		WHERE id = $8
	`
	_, err := r.DB.Exec(ctx, query,
		vendor.Name,
		vendor.ServiceCategory,
		vendor.Phone,
		vendor.Email,
		vendor.City,
		vendor.Notes,
		vendor.IsActive,
		vendor.ID,
	)
	return err
}
