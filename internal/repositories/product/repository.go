// Package product reads the minimal catalog rows the deal engine needs.
package product

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/AudioList/deals-api/pkg/database"
	"github.com/AudioList/deals-api/pkg/models"
	"github.com/AudioList/deals-api/pkg/tracing"
)

// Repository handles product persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// New creates a new product repository
func New(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// GetProduct returns one product, or nil when it does not exist.
func (r *Repository) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	ctx, span := tracing.StartSpan(ctx, "product.Repository.GetProduct")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "name", "brand", "model", "created_at", "updated_at")
	sb.From("products")
	sb.Where(sb.Equal("id", productID))
	sb.Limit(1)

	query, args := sb.Build()
	var product models.Product
	if err := r.db.GetContext(ctx, &product, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"product_id": productID}).Error("Failed to get product")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get product")
	}
	return &product, nil
}
