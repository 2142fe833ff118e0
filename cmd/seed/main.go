// Command seed populates the storefront database with a small, realistic
// parts catalog for local development: categories, products, stores, and a
// few rainchecks.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/partsunlimited/storefront/internal/config"
)

type seedCategory struct {
	name        string
	description string
	products    []seedProduct
}

type seedProduct struct {
	sku      string
	title    string
	desc     string
	price    string
	sale     string
	group    int
	stock    int
	leadTime int
	details  map[string]string
}

var catalog = []seedCategory{
	{
		name:        "Brakes",
		description: "Pads, rotors, and calipers",
		products: []seedProduct{
			{sku: "BP-100", title: "Ceramic Brake Pads", desc: "Low-dust ceramic pads, front axle set", price: "54.99", sale: "49.99", group: 1, stock: 120, details: map[string]string{"position": "front", "material": "ceramic"}},
			{sku: "BR-210", title: "Vented Brake Rotor", desc: "Cross-drilled vented rotor", price: "89.00", sale: "89.00", group: 1, stock: 60, details: map[string]string{"diameter_mm": "320"}},
			{sku: "BC-330", title: "Brake Caliper", desc: "Remanufactured single-piston caliper", price: "119.50", sale: "99.00", group: 1, stock: 25, leadTime: 3},
		},
	},
	{
		name:        "Oil",
		description: "Engine oils and filters",
		products: []seedProduct{
			{sku: "OIL-531", title: "Synthetic Motor Oil 5W-30", desc: "Full synthetic, 5 quart jug", price: "32.99", sale: "27.99", group: 2, stock: 300, details: map[string]string{"viscosity": "5W-30", "volume": "5qt"}},
			{sku: "OF-120", title: "Oil Filter", desc: "Spin-on oil filter", price: "9.49", sale: "9.49", group: 2, stock: 500},
		},
	},
	{
		name:        "Lighting",
		description: "Headlights and bulbs",
		products: []seedProduct{
			{sku: "HL-900", title: "LED Headlight Kit", desc: "6000K LED conversion kit", price: "149.00", sale: "129.00", group: 3, stock: 40, leadTime: 5, details: map[string]string{"temperature_k": "6000"}},
			{sku: "FB-410", title: "Fog Light Bulb Pair", desc: "Yellow-tinted halogen fog bulbs", price: "24.00", sale: "24.00", group: 3, stock: 150},
		},
	},
	{
		name:        "Wheels & Tires",
		description: "Alloy wheels and all-season tires",
		products: []seedProduct{
			{sku: "AW-170", title: "17in Alloy Wheel", desc: "Gunmetal 5-spoke alloy", price: "189.00", sale: "169.00", group: 4, stock: 32},
			{sku: "TR-225", title: "All-Season Tire 225/45R17", desc: "65k mile warranty", price: "134.00", sale: "134.00", group: 4, stock: 80},
		},
	},
}

var stores = []string{"Redmond", "Bellevue", "Seattle Downtown"}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pg := cfg.Postgres()
	pool, err := pgxpool.New(ctx, pg.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if err := seed(ctx, pool); err != nil {
		log.Fatalf("seed: %v", err)
	}

	log.Println("seed complete")
}

func seed(ctx context.Context, pool *pgxpool.Pool) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	productIDs := make([]string, 0, 16)

	for _, cat := range catalog {
		categoryID := uuid.New().String()
		_, err := tx.Exec(ctx,
			`INSERT INTO categories (id, name, description, image_url)
			 VALUES ($1, $2, $3, '')
			 ON CONFLICT (name) DO NOTHING`,
			categoryID, cat.name, cat.description,
		)
		if err != nil {
			return fmt.Errorf("insert category %q: %w", cat.name, err)
		}

		// ON CONFLICT may have kept an earlier row; read the real ID back.
		if err := tx.QueryRow(ctx,
			`SELECT id FROM categories WHERE name = $1`, cat.name,
		).Scan(&categoryID); err != nil {
			return fmt.Errorf("resolve category %q: %w", cat.name, err)
		}

		for _, p := range cat.products {
			details := p.details
			if details == nil {
				details = map[string]string{}
			}
			detailsJSON, err := json.Marshal(details)
			if err != nil {
				return fmt.Errorf("marshal details for %q: %w", p.sku, err)
			}

			productID := uuid.New().String()
			_, err = tx.Exec(ctx,
				`INSERT INTO products
					(id, sku, title, description, price, sale_price, art_url, category_id,
					 recommendation_group, inventory, lead_time, details, created_at, updated_at)
				 VALUES ($1, $2, $3, $4, $5, $6, '', $7, $8, $9, $10, $11, $12, $12)
				 ON CONFLICT (sku) DO NOTHING`,
				productID, p.sku, p.title, p.desc,
				decimal.RequireFromString(p.price), decimal.RequireFromString(p.sale),
				categoryID, p.group, p.stock, p.leadTime, detailsJSON, now,
			)
			if err != nil {
				return fmt.Errorf("insert product %q: %w", p.sku, err)
			}
			if err := tx.QueryRow(ctx,
				`SELECT id FROM products WHERE sku = $1`, p.sku,
			).Scan(&productID); err != nil {
				return fmt.Errorf("resolve product %q: %w", p.sku, err)
			}
			productIDs = append(productIDs, productID)
		}
	}

	storeIDs := make([]string, 0, len(stores))
	for _, name := range stores {
		storeID := uuid.New().String()
		if _, err := tx.Exec(ctx,
			`INSERT INTO stores (id, name) VALUES ($1, $2)`, storeID, name,
		); err != nil {
			return fmt.Errorf("insert store %q: %w", name, err)
		}
		storeIDs = append(storeIDs, storeID)
	}

	if len(productIDs) > 0 && len(storeIDs) > 0 {
		if _, err := tx.Exec(ctx,
			`INSERT INTO rainchecks (id, name, product_id, store_id, quantity, sale_price)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.New().String(), "Sample Raincheck", productIDs[0], storeIDs[0],
			1, decimal.RequireFromString("44.99"),
		); err != nil {
			return fmt.Errorf("insert raincheck: %w", err)
		}
	}

	return tx.Commit(ctx)
}
