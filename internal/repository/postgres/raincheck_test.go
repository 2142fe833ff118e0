package postgres

import (
	"context"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partsunlimited/storefront/internal/domain"
	"github.com/partsunlimited/storefront/pkg/database"
	apperrors "github.com/partsunlimited/storefront/pkg/errors"
)

func newRaincheckTestRepo(t *testing.T) (*RaincheckRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return NewRaincheckRepository(mock), mock
}

func raincheckRowColumns() []string {
	return []string{
		"r.id", "r.name", "r.product_id", "r.store_id", "r.quantity", "r.sale_price",
		"s.id", "s.name",
		"p.id", "p.sku", "p.title", "p.description", "p.price", "p.sale_price",
		"p.art_url", "p.category_id", "p.recommendation_group", "p.inventory",
		"p.lead_time", "p.details", "p.created_at", "p.updated_at",
	}
}

func addRaincheckRow(rows *pgxmock.Rows, rc *domain.Raincheck, p *domain.Product) *pgxmock.Rows {
	return rows.AddRow(
		rc.ID, rc.Name, rc.ProductID, rc.StoreID, rc.Quantity, rc.SalePrice,
		rc.StoreID, "Redmond Store",
		p.ID, p.SKU, p.Title, p.Description, p.Price, p.SalePrice,
		p.ArtURL, p.CategoryID, p.RecommendationGroup, p.Inventory,
		p.LeadTime, []byte(`{}`), p.CreatedAt, p.UpdatedAt,
	)
}

func sampleRaincheck() *domain.Raincheck {
	return &domain.Raincheck{
		ID:        "rc-001",
		Name:      "Alice Carter",
		ProductID: "prod-001",
		StoreID:   "store-001",
		Quantity:  2,
		SalePrice: decimal.RequireFromString("19.00"),
	}
}

func TestRaincheckRepository_Create(t *testing.T) {
	repo, mock := newRaincheckTestRepo(t)

	rc := sampleRaincheck()
	mock.ExpectExec("INSERT INTO rainchecks").
		WithArgs(rc.ID, rc.Name, rc.ProductID, rc.StoreID, rc.Quantity, rc.SalePrice).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, repo.Create(context.Background(), rc))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRaincheckRepository_GetByID_JoinsStoreAndProduct(t *testing.T) {
	repo, mock := newRaincheckTestRepo(t)

	rc := sampleRaincheck()
	p := sampleProduct()
	mock.ExpectQuery("SELECT (.+) FROM rainchecks r").
		WithArgs(rc.ID).
		WillReturnRows(addRaincheckRow(pgxmock.NewRows(raincheckRowColumns()), rc, p))

	got, err := repo.GetByID(context.Background(), rc.ID)
	require.NoError(t, err)
	assert.True(t, got.SalePrice.Equal(decimal.RequireFromString("19.00")))
	require.NotNil(t, got.Store)
	assert.Equal(t, "Redmond Store", got.Store.Name)
	require.NotNil(t, got.Product)
	assert.Equal(t, "BP-100", got.Product.SKU)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRaincheckRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newRaincheckTestRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM rainchecks r").
		WithArgs("no-such-raincheck").
		WillReturnRows(pgxmock.NewRows(raincheckRowColumns()))

	_, err := repo.GetByID(context.Background(), "no-such-raincheck")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRaincheckRepository_List(t *testing.T) {
	repo, mock := newRaincheckTestRepo(t)

	rc := sampleRaincheck()
	p := sampleProduct()
	mock.ExpectQuery("SELECT (.+) FROM rainchecks r").
		WillReturnRows(addRaincheckRow(pgxmock.NewRows(raincheckRowColumns()), rc, p))

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "rc-001", list[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
