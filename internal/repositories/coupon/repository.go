// Package coupon persists retailer promotion codes.
package coupon

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/AudioList/deals-api/pkg/database"
	"github.com/AudioList/deals-api/pkg/models"
	"github.com/AudioList/deals-api/pkg/tracing"
)

var columns = []string{
	"id", "retailer_id", "code", "description", "discount_type",
	"discount_value", "auto_apply_url", "is_active", "expires_at", "created_at",
}

// Repository handles coupon persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// New creates a new coupon repository
func New(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// CouponsForRetailers returns every coupon row for the retailer set in
// creation order. Validity filtering happens in the matcher so "now" is
// evaluated once per view, not per query.
func (r *Repository) CouponsForRetailers(ctx context.Context, retailerIDs []string) ([]models.Coupon, error) {
	ctx, span := tracing.StartSpan(ctx, "coupon.Repository.CouponsForRetailers")
	defer span.End()

	if len(retailerIDs) == 0 {
		return nil, nil
	}

	ids := make([]any, len(retailerIDs))
	for i, id := range retailerIDs {
		ids[i] = id
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("coupons")
	sb.Where(sb.In("retailer_id", ids...))
	sb.OrderBy("created_at ASC")

	query, args := sb.Build()
	var coupons []models.Coupon
	if err := r.db.SelectContext(ctx, &coupons, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"retailer_count": len(retailerIDs)}).Error("Failed to get coupons")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get coupons")
	}
	return coupons, nil
}
