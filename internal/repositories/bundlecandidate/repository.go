// Package bundlecandidate persists store-product rows associated with a
// product through the upstream canonical-product mapping.
package bundlecandidate

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
	"id", "product_id", "retailer_id", "title", "price", "in_stock",
	"product_url", "affiliate_url", "flags", "created_at", "updated_at",
}

// Repository handles bundle candidate persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// New creates a new bundle candidate repository
func New(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// CandidatesForProduct returns the candidate rows the classifier decides
// over.
func (r *Repository) CandidatesForProduct(ctx context.Context, productID string) ([]models.BundleCandidate, error) {
	ctx, span := tracing.StartSpan(ctx, "bundlecandidate.Repository.CandidatesForProduct")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("bundle_candidates")
	sb.Where(sb.Equal("product_id", productID))
	sb.OrderBy("created_at ASC")

	query, args := sb.Build()
	var candidates []models.BundleCandidate
	if err := r.db.SelectContext(ctx, &candidates, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"product_id": productID}).Error("Failed to get bundle candidates")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get bundle candidates")
	}
	return candidates, nil
}
