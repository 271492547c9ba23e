// Package retailer persists the stores we track listings for.
package retailer

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

var columns = []string{
	"id", "name", "base_url", "is_active", "description", "ships_from",
	"return_policy", "authorized_dealer", "created_at", "updated_at",
}

// Repository handles retailer persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// New creates a new retailer repository
func New(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// List returns all retailers ordered by display name.
func (r *Repository) List(ctx context.Context) ([]models.Retailer, error) {
	ctx, span := tracing.StartSpan(ctx, "retailer.Repository.List")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("retailers")
	sb.OrderBy("name ASC")

	query, args := sb.Build()
	var retailers []models.Retailer
	if err := r.db.SelectContext(ctx, &retailers, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list retailers")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list retailers")
	}
	return retailers, nil
}

// ListActive returns the retailers that participate in deal views.
func (r *Repository) ListActive(ctx context.Context) ([]models.Retailer, error) {
	ctx, span := tracing.StartSpan(ctx, "retailer.Repository.ListActive")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("retailers")
	sb.Where(sb.Equal("is_active", true))
	sb.OrderBy("name ASC")

	query, args := sb.Build()
	var retailers []models.Retailer
	if err := r.db.SelectContext(ctx, &retailers, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list active retailers")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list retailers")
	}
	return retailers, nil
}

// GetByID returns one retailer, or nil when it does not exist.
func (r *Repository) GetByID(ctx context.Context, id string) (*models.Retailer, error) {
	ctx, span := tracing.StartSpan(ctx, "retailer.Repository.GetByID")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("retailers")
	sb.Where(sb.Equal("id", id))
	sb.Limit(1)

	query, args := sb.Build()
	var retailer models.Retailer
	if err := r.db.GetContext(ctx, &retailer, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"retailer_id": id}).Error("Failed to get retailer")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get retailer")
	}
	return &retailer, nil
}
