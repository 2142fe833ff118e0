package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/partsunlimited/storefront/internal/domain"
	"github.com/partsunlimited/storefront/pkg/database"
	apperrors "github.com/partsunlimited/storefront/pkg/errors"
)

const raincheckColumns = `
	r.id, r.name, r.product_id, r.store_id, r.quantity, r.sale_price,
	s.id, s.name,
	p.id, p.sku, p.title, p.description, p.price, p.sale_price, p.art_url,
	p.category_id, p.recommendation_group, p.inventory, p.lead_time, p.details,
	p.created_at, p.updated_at`

// RaincheckRepository implements repository.RaincheckRepository using PostgreSQL.
type RaincheckRepository struct {
	pool database.DBTX
}

// NewRaincheckRepository creates a new PostgreSQL-backed raincheck repository.
func NewRaincheckRepository(pool database.DBTX) *RaincheckRepository {
	return &RaincheckRepository{pool: pool}
}

// Create inserts a new raincheck.
func (r *RaincheckRepository) Create(ctx context.Context, rc *domain.Raincheck) error {
	query := `
		INSERT INTO rainchecks (id, name, product_id, store_id, quantity, sale_price)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		rc.ID,
		rc.Name,
		rc.ProductID,
		rc.StoreID,
		rc.Quantity,
		rc.SalePrice,
	)
	if err != nil {
		return fmt.Errorf("insert raincheck: %w", err)
	}

	return nil
}

// GetByID retrieves a raincheck with its store and product.
func (r *RaincheckRepository) GetByID(ctx context.Context, id string) (*domain.Raincheck, error) {
	query := `
		SELECT ` + raincheckColumns + `
		FROM rainchecks r
		JOIN stores s ON s.id = r.store_id
		JOIN products p ON p.id = r.product_id
		WHERE r.id = $1`

	rc, err := scanRaincheck(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("raincheck", id)
		}
		return nil, fmt.Errorf("get raincheck: %w", err)
	}

	return rc, nil
}

// List returns all rainchecks with their stores and products.
func (r *RaincheckRepository) List(ctx context.Context) ([]domain.Raincheck, error) {
	query := `
		SELECT ` + raincheckColumns + `
		FROM rainchecks r
		JOIN stores s ON s.id = r.store_id
		JOIN products p ON p.id = r.product_id
		ORDER BY r.name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list rainchecks: %w", err)
	}
	defer rows.Close()

	rainchecks := make([]domain.Raincheck, 0)
	for rows.Next() {
		rc, err := scanRaincheck(rows)
		if err != nil {
			return nil, fmt.Errorf("scan raincheck row: %w", err)
		}
		rainchecks = append(rainchecks, *rc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate raincheck rows: %w", err)
	}

	return rainchecks, nil
}

func scanRaincheck(row rowScanner) (*domain.Raincheck, error) {
	var (
		rc          domain.Raincheck
		store       domain.Store
		p           domain.Product
		detailsJSON []byte
	)

	err := row.Scan(
		&rc.ID,
		&rc.Name,
		&rc.ProductID,
		&rc.StoreID,
		&rc.Quantity,
		&rc.SalePrice,
		&store.ID,
		&store.Name,
		&p.ID,
		&p.SKU,
		&p.Title,
		&p.Description,
		&p.Price,
		&p.SalePrice,
		&p.ArtURL,
		&p.CategoryID,
		&p.RecommendationGroup,
		&p.Inventory,
		&p.LeadTime,
		&detailsJSON,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(detailsJSON) > 0 && string(detailsJSON) != "null" {
		if err := json.Unmarshal(detailsJSON, &p.Details); err != nil {
			return nil, fmt.Errorf("unmarshal product details: %w", err)
		}
	}

	rc.Store = &store
	rc.Product = &p

	return &rc, nil
}
