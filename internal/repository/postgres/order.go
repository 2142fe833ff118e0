package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/partsunlimited/storefront/internal/domain"
	"github.com/partsunlimited/storefront/internal/repository"
	"github.com/partsunlimited/storefront/pkg/database"
	apperrors "github.com/partsunlimited/storefront/pkg/errors"
)

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts the order and all of its line items in one transaction.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	orderQuery := `
		INSERT INTO orders (id, username, name, email, phone, address, city, state, postal_code, country, total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = tx.Exec(ctx, orderQuery,
		o.ID,
		o.Username,
		o.Name,
		o.Email,
		o.Phone,
		o.Address,
		o.City,
		o.State,
		o.PostalCode,
		o.Country,
		o.Total,
		o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, title, sku, unit_price, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	for _, item := range o.Items {
		_, err = tx.Exec(ctx, itemQuery,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.Title,
			item.SKU,
			item.UnitPrice,
			item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetByID retrieves an order with its line items.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	orderQuery := `
		SELECT id, username, name, email, phone, address, city, state, postal_code, country, total, created_at
		FROM orders WHERE id = $1`

	var o domain.Order
	err := r.pool.QueryRow(ctx, orderQuery, id).Scan(
		&o.ID,
		&o.Username,
		&o.Name,
		&o.Email,
		&o.Phone,
		&o.Address,
		&o.City,
		&o.State,
		&o.PostalCode,
		&o.Country,
		&o.Total,
		&o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order", id)
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	items, err := r.listItems(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return &o, nil
}

// List returns orders matching the filter, newest first, with the total count.
// Line items are loaded for each returned order.
func (r *OrderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	query := `
		SELECT id, username, name, email, phone, address, city, state, postal_code, country, total, created_at,
			count(*) OVER() AS total_count
		FROM orders
		WHERE 1=1`

	args := make([]any, 0, 6)

	if filter.Username != nil {
		args = append(args, *filter.Username)
		query += ` AND username = $` + strconv.Itoa(len(args))
	}
	if filter.Start != nil {
		args = append(args, *filter.Start)
		query += ` AND created_at >= $` + strconv.Itoa(len(args))
	}
	if filter.End != nil {
		args = append(args, *filter.End)
		query += ` AND created_at <= $` + strconv.Itoa(len(args))
	}
	if filter.Search != nil {
		args = append(args, *filter.Search)
		n := strconv.Itoa(len(args))
		query += ` AND (name ILIKE '%' || $` + n + ` || '%' OR email ILIKE '%' || $` + n + ` || '%' OR address ILIKE '%' || $` + n + ` || '%')`
	}

	query += ` ORDER BY created_at DESC`

	if filter.PerPage > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		args = append(args, filter.PerPage)
		query += ` LIMIT $` + strconv.Itoa(len(args))
		args = append(args, (page-1)*filter.PerPage)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	total := 0
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(
			&o.ID,
			&o.Username,
			&o.Name,
			&o.Email,
			&o.Phone,
			&o.Address,
			&o.City,
			&o.State,
			&o.PostalCode,
			&o.Country,
			&o.Total,
			&o.CreatedAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order rows: %w", err)
	}

	for i := range orders {
		items, err := r.listItems(ctx, orders[i].ID)
		if err != nil {
			return nil, 0, err
		}
		orders[i].Items = items
	}

	return orders, total, nil
}

func (r *OrderRepository) listItems(ctx context.Context, orderID string) ([]domain.OrderLineItem, error) {
	query := `
		SELECT id, order_id, product_id, title, sku, unit_price, quantity
		FROM order_items WHERE order_id = $1 ORDER BY id`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.OrderLineItem, 0)
	for rows.Next() {
		var item domain.OrderLineItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Title,
			&item.SKU,
			&item.UnitPrice,
			&item.Quantity,
		); err != nil {
			return nil, fmt.Errorf("scan order item row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order item rows: %w", err)
	}

	return items, nil
}
