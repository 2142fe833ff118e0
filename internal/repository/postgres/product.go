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

const productColumns = `id, sku, title, description, price, sale_price, art_url, category_id, recommendation_group, inventory, lead_time, details, created_at, updated_at`

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	pool database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool database.DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Create inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	detailsJSON, err := json.Marshal(p.Details)
	if err != nil {
		return fmt.Errorf("marshal product details: %w", err)
	}

	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err = r.pool.Exec(ctx, query,
		p.ID,
		p.SKU,
		p.Title,
		p.Description,
		p.Price,
		p.SalePrice,
		p.ArtURL,
		p.CategoryID,
		p.RecommendationGroup,
		p.Inventory,
		p.LeadTime,
		detailsJSON,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("product", "sku", p.SKU)
		}
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// Update rewrites all mutable fields of a product.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	detailsJSON, err := json.Marshal(p.Details)
	if err != nil {
		return fmt.Errorf("marshal product details: %w", err)
	}

	query := `
		UPDATE products
		SET sku = $1, title = $2, description = $3, price = $4, sale_price = $5,
			art_url = $6, category_id = $7, recommendation_group = $8,
			inventory = $9, lead_time = $10, details = $11, updated_at = $12
		WHERE id = $13`

	ct, err := r.pool.Exec(ctx, query,
		p.SKU,
		p.Title,
		p.Description,
		p.Price,
		p.SalePrice,
		p.ArtURL,
		p.CategoryID,
		p.RecommendationGroup,
		p.Inventory,
		p.LeadTime,
		detailsJSON,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", p.ID)
	}

	return nil
}

// Delete removes a product by ID.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}

	return nil
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return p, nil
}

// ListByCategory returns all products in the given category, newest first.
func (r *ProductRepository) ListByCategory(ctx context.Context, categoryID string) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE category_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list products by category: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// Search returns products whose title or description contains the query,
// case-insensitively.
func (r *ProductRepository) Search(ctx context.Context, query string) ([]domain.Product, error) {
	sql := `SELECT ` + productColumns + ` FROM products
		WHERE title ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%'
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, sql, query)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// Recommendations returns up to limit products sharing the subject's
// recommendation group, excluding the subject itself.
func (r *ProductRepository) Recommendations(ctx context.Context, productID string, limit int) ([]domain.Product, error) {
	query := `
		SELECT ` + qualifiedProductColumns("p") + `
		FROM products p
		JOIN products subject ON subject.id = $1
		WHERE p.recommendation_group = subject.recommendation_group AND p.id <> subject.id
		ORDER BY p.created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recommendations: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// TopSellers returns products ordered by how many order lines reference them.
func (r *ProductRepository) TopSellers(ctx context.Context, limit int) ([]domain.Product, error) {
	query := `
		SELECT ` + qualifiedProductColumns("p") + `
		FROM products p
		LEFT JOIN order_items oi ON oi.product_id = p.id
		GROUP BY p.id
		ORDER BY COUNT(oi.id) DESC, p.created_at DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list top sellers: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// NewArrivals returns the most recently created products.
func (r *ProductRepository) NewArrivals(ctx context.Context, limit int) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list new arrivals: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// Latest returns the single most recently created product.
func (r *ProductRepository) Latest(ctx context.Context) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC LIMIT 1`

	p, err := scanProduct(r.pool.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("get latest product: %w", err)
	}

	return p, nil
}

// --- scan helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		p           domain.Product
		detailsJSON []byte
	)

	err := row.Scan(
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

	return &p, nil
}

func collectProducts(rows pgx.Rows) ([]domain.Product, error) {
	products := make([]domain.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}
	return products, nil
}

func qualifiedProductColumns(alias string) string {
	return alias + `.id, ` + alias + `.sku, ` + alias + `.title, ` + alias + `.description, ` +
		alias + `.price, ` + alias + `.sale_price, ` + alias + `.art_url, ` + alias + `.category_id, ` +
		alias + `.recommendation_group, ` + alias + `.inventory, ` + alias + `.lead_time, ` +
		alias + `.details, ` + alias + `.created_at, ` + alias + `.updated_at`
}
