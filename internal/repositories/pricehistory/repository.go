// Package pricehistory persists the append-only price observation series.
package pricehistory

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

var columns = []string{"id", "product_id", "retailer_id", "price", "recorded_at"}

// Repository handles price history persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// New creates a new price history repository
func New(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// HistoryForProduct returns the full series for a product across all
// retailers, ascending by time.
func (r *Repository) HistoryForProduct(ctx context.Context, productID string) ([]models.PricePoint, error) {
	ctx, span := tracing.StartSpan(ctx, "pricehistory.Repository.HistoryForProduct")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("price_history")
	sb.Where(sb.Equal("product_id", productID))
	sb.OrderBy("recorded_at ASC")

	query, args := sb.Build()
	var points []models.PricePoint
	if err := r.db.SelectContext(ctx, &points, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"product_id": productID}).Error("Failed to get price history")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get price history")
	}
	return points, nil
}

// Append records one observation. The series is append-only; nothing ever
// updates or deletes rows.
func (r *Repository) Append(ctx context.Context, point *models.PricePoint) error {
	ctx, span := tracing.StartSpan(ctx, "pricehistory.Repository.Append")
	defer span.End()

	if point.ID == "" {
		point.ID = uuid.New().String()
	}

	ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
	ib.InsertInto("price_history")
	ib.Cols(columns...)
	ib.Values(point.ID, point.ProductID, point.RetailerID, point.Price, point.RecordedAt)

	query, args := ib.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"product_id":  point.ProductID,
			"retailer_id": point.RetailerID,
		}).Error("Failed to append price point")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to append price point")
	}
	return nil
}

// LowestForRetailer returns the cheapest recorded point for one retailer,
// earliest first on ties, or nil when the pair has no history yet.
func (r *Repository) LowestForRetailer(ctx context.Context, productID, retailerID string) (*models.PricePoint, error) {
	ctx, span := tracing.StartSpan(ctx, "pricehistory.Repository.LowestForRetailer")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("price_history")
	sb.Where(
		sb.Equal("product_id", productID),
		sb.Equal("retailer_id", retailerID),
	)
	sb.OrderBy("price ASC", "recorded_at ASC")
	sb.Limit(1)

	query, args := sb.Build()
	var point models.PricePoint
	if err := r.db.GetContext(ctx, &point, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"product_id":  productID,
			"retailer_id": retailerID,
		}).Error("Failed to get lowest price point")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get lowest price point")
	}
	return &point, nil
}
