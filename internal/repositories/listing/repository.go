// Package listing persists the current retailer listing rows.
package listing

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/AudioList/deals-api/pkg/database"
	"github.com/AudioList/deals-api/pkg/models"
	"github.com/AudioList/deals-api/pkg/tracing"
)

var columns = []string{
	"l.id", "l.product_id", "l.retailer_id", "l.price", "l.compare_at_price",
	"l.currency", "l.in_stock", "l.on_sale", "l.product_url", "l.affiliate_url",
	"l.external_id", "l.offer_title", "l.last_checked",
	"r.name AS retailer_name", "r.base_url AS retailer_base_url",
	"r.is_active AS retailer_active", "r.authorized_dealer",
}

// Repository handles listing persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// New creates a new listing repository
func New(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// ListingsForProduct returns every listing row for a product joined with its
// retailer metadata. The active-retailer filter happens downstream so the
// staleness rules see exactly what the deal engine saw.
func (r *Repository) ListingsForProduct(ctx context.Context, productID string) ([]models.Listing, error) {
	ctx, span := tracing.StartSpan(ctx, "listing.Repository.ListingsForProduct")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("listings l")
	sb.Join("retailers r", "r.id = l.retailer_id")
	sb.Where(sb.Equal("l.product_id", productID))
	sb.OrderBy("r.name ASC", "l.external_id ASC")

	query, args := sb.Build()
	var listings []models.Listing
	if err := r.db.SelectContext(ctx, &listings, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"product_id": productID}).Error("Failed to get listings")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get listings")
	}
	return listings, nil
}

// Find returns the listing row for one retailer SKU, or nil when the product
// has not been observed at that retailer yet.
func (r *Repository) Find(ctx context.Context, productID, retailerID, externalID string) (*models.Listing, error) {
	ctx, span := tracing.StartSpan(ctx, "listing.Repository.Find")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("listings l")
	sb.Join("retailers r", "r.id = l.retailer_id")
	sb.Where(
		sb.Equal("l.product_id", productID),
		sb.Equal("l.retailer_id", retailerID),
		sb.Equal("l.external_id", externalID),
	)
	sb.Limit(1)

	query, args := sb.Build()
	var listing models.Listing
	if err := r.db.GetContext(ctx, &listing, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"product_id":  productID,
			"retailer_id": retailerID,
			"external_id": externalID,
		}).Error("Failed to find listing")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to find listing")
	}
	return &listing, nil
}

// Upsert writes a listing row keyed by (product_id, retailer_id,
// external_id), assigning an id on first insert.
func (r *Repository) Upsert(ctx context.Context, listing *models.Listing) error {
	ctx, span := tracing.StartSpan(ctx, "listing.Repository.Upsert")
	defer span.End()

	if listing.ID == "" {
		listing.ID = uuid.New().String()
	}

	query := `
		INSERT INTO listings (id, product_id, retailer_id, price, compare_at_price, currency, in_stock, on_sale, product_url, affiliate_url, external_id, offer_title, last_checked)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (product_id, retailer_id, external_id) DO UPDATE SET
			price = EXCLUDED.price,
			compare_at_price = EXCLUDED.compare_at_price,
			currency = EXCLUDED.currency,
			in_stock = EXCLUDED.in_stock,
			on_sale = EXCLUDED.on_sale,
			product_url = EXCLUDED.product_url,
			affiliate_url = EXCLUDED.affiliate_url,
			offer_title = COALESCE(EXCLUDED.offer_title, listings.offer_title),
			last_checked = EXCLUDED.last_checked
	`

	if _, err := r.db.ExecContext(ctx, query,
		listing.ID, listing.ProductID, listing.RetailerID, listing.Price,
		listing.CompareAtPrice, listing.Currency, listing.InStock, listing.OnSale,
		listing.ProductURL, listing.AffiliateURL, listing.ExternalID,
		listing.OfferTitle, listing.LastChecked,
	); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"product_id":  listing.ProductID,
			"retailer_id": listing.RetailerID,
			"external_id": listing.ExternalID,
		}).Error("Failed to upsert listing")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to upsert listing")
	}
	return nil
}
