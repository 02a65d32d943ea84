// This file provides persistence for catalog plants, the read-mostly species
// reference data. Catalog rows are written by the import job and read by the
// public browse endpoints and by user-plant creation, which copies the
// default care intervals.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/saeedpanahi1994/goldan-plant-care/internal/model"
)

// catalogColumns is the shared column list for catalog plant scans.
const catalogColumns = `id, common_name, scientific_name, description, light_needs, soil_needs,
       default_watering_interval_days, default_fertilizer_interval_days, image_url, created_at`

// CatalogRepo encapsulates all database queries for catalog plants.
type CatalogRepo struct {
	db *sql.DB
}

// NewCatalogRepo constructs a CatalogRepo with the provided DB handle.
func NewCatalogRepo(db *sql.DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

// Create inserts a catalog plant during catalog import and populates the
// generated ID and the DB-default created_at on the given struct.
func (r *CatalogRepo) Create(ctx context.Context, p *model.CatalogPlant) error {
	const q = `INSERT INTO catalog_plants
	           (common_name, scientific_name, description, light_needs, soil_needs,
	            default_watering_interval_days, default_fertilizer_interval_days, image_url)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		p.CommonName, p.ScientificName, p.Description, p.LightNeeds, p.SoilNeeds,
		p.DefaultWateringInterval, p.DefaultFertilizerInterval, p.ImageURL)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	const sel = `SELECT created_at FROM catalog_plants WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, p.ID).Scan(&p.CreatedAt)
}

// GetByID fetches a catalog plant by its ID. It returns
// ErrCatalogPlantNotFound when no row matches.
func (r *CatalogRepo) GetByID(ctx context.Context, id uint64) (*model.CatalogPlant, error) {
	const q = `SELECT ` + catalogColumns + ` FROM catalog_plants WHERE id = ?`
	var p model.CatalogPlant
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&p.ID, &p.CommonName, &p.ScientificName, &p.Description, &p.LightNeeds, &p.SoilNeeds,
		&p.DefaultWateringInterval, &p.DefaultFertilizerInterval, &p.ImageURL, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCatalogPlantNotFound
		}
		return nil, err
	}
	return &p, nil
}

// List returns the full catalog ordered by common name. When the catalog is
// empty it returns an empty slice and nil error.
func (r *CatalogRepo) List(ctx context.Context) ([]model.CatalogPlant, error) {
	const q = `SELECT ` + catalogColumns + ` FROM catalog_plants ORDER BY common_name ASC`
	return r.queryMany(ctx, q)
}

// Search returns catalog plants whose common or scientific name contains the
// given term, ordered by common name.
func (r *CatalogRepo) Search(ctx context.Context, term string) ([]model.CatalogPlant, error) {
	const q = `SELECT ` + catalogColumns + ` FROM catalog_plants
	           WHERE common_name LIKE ? OR scientific_name LIKE ?
	           ORDER BY common_name ASC`
	like := "%" + term + "%"
	return r.queryMany(ctx, q, like, like)
}

func (r *CatalogRepo) queryMany(ctx context.Context, q string, args ...any) ([]model.CatalogPlant, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []model.CatalogPlant{}
	for rows.Next() {
		var p model.CatalogPlant
		if err := rows.Scan(
			&p.ID, &p.CommonName, &p.ScientificName, &p.Description, &p.LightNeeds, &p.SoilNeeds,
			&p.DefaultWateringInterval, &p.DefaultFertilizerInterval, &p.ImageURL, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
