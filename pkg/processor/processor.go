// Package processor handles incoming price observations. This is the
// ingestion layer: it keeps the listing rows current, appends to the
// append-only price history, and emits deal events when an observation
// changes a product's price situation.
package processor

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/go-playground/validator/v10"

	"github.com/AudioList/deals-api/pkg/kafka"
	"github.com/AudioList/deals-api/pkg/metrics"
	"github.com/AudioList/deals-api/pkg/models"
	"github.com/AudioList/deals-api/pkg/tracing"
)

// ListingStore is the listing repository surface the processor needs.
type ListingStore interface {
	Find(ctx context.Context, productID, retailerID, externalID string) (*models.Listing, error)
	Upsert(ctx context.Context, listing *models.Listing) error
}

// HistoryStore is the price-history repository surface the processor needs.
type HistoryStore interface {
	Append(ctx context.Context, point *models.PricePoint) error
	LowestForRetailer(ctx context.Context, productID, retailerID string) (*models.PricePoint, error)
}

// EventEmitter publishes deal events derived from an observation.
type EventEmitter interface {
	EmitPriceDropped(ctx context.Context, productID, retailerID string, price, previousPrice float64, observedAt time.Time) error
	EmitAllTimeLow(ctx context.Context, productID, retailerID string, price, lowestEver float64, observedAt time.Time) error
	EmitBackInStock(ctx context.Context, productID, retailerID string, price float64, observedAt time.Time) error
}

// Invalidator drops cached deal views after an observation lands; nil
// disables invalidation.
type Invalidator interface {
	Invalidate(ctx context.Context, productID string)
}

// Processor handles price observation messages.
type Processor struct {
	logger   ectologger.Logger
	listings ListingStore
	history  HistoryStore
	emitter  EventEmitter
	cache    Invalidator
	validate *validator.Validate
}

// NewProcessor creates a new observation processor.
func NewProcessor(
	logger ectologger.Logger,
	listings ListingStore,
	history HistoryStore,
	emitter EventEmitter,
	cache Invalidator,
) *Processor {
	return &Processor{
		logger:   logger,
		listings: listings,
		history:  history,
		emitter:  emitter,
		cache:    cache,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// HandleMessage processes one observation. A returned error means the
// message must not be committed; invalid payloads are logged and dropped.
func (p *Processor) HandleMessage(ctx context.Context, msg *kafka.IncomingMessage) error {
	ctx, span := tracing.StartSpan(ctx, "processor.Processor.HandleMessage")
	defer span.End()

	obs := msg.Observation
	if obs == nil {
		metrics.ObservationsProcessed.WithLabelValues("invalid").Inc()
		return nil
	}
	if err := p.validate.Struct(obs); err != nil {
		p.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"product_id":  msg.GetProductID(),
			"retailer_id": msg.GetRetailerID(),
		}).Error("Dropping invalid price observation")
		metrics.ObservationsProcessed.WithLabelValues("invalid").Inc()
		return nil
	}

	prior, err := p.listings.Find(ctx, obs.ProductID, obs.RetailerID, obs.ExternalID)
	if err != nil {
		return err
	}
	lowest, err := p.history.LowestForRetailer(ctx, obs.ProductID, obs.RetailerID)
	if err != nil {
		return err
	}

	listing := listingFromObservation(obs, prior)
	if err := p.listings.Upsert(ctx, listing); err != nil {
		return err
	}
	if err := p.history.Append(ctx, &models.PricePoint{
		ProductID:  obs.ProductID,
		RetailerID: obs.RetailerID,
		Price:      obs.Price,
		RecordedAt: obs.ObservedAt,
	}); err != nil {
		return err
	}

	p.emitEvents(ctx, obs, prior, lowest)

	if p.cache != nil {
		p.cache.Invalidate(ctx, obs.ProductID)
	}

	metrics.ObservationsProcessed.WithLabelValues("ok").Inc()
	return nil
}

// emitEvents publishes the deal events an observation triggers. Emission
// failures are logged but never fail the message; the row writes already
// happened and re-processing would duplicate history points.
func (p *Processor) emitEvents(ctx context.Context, obs *kafka.PriceObservation, prior *models.Listing, lowest *models.PricePoint) {
	if prior != nil && obs.Price < prior.Price {
		if err := p.emitter.EmitPriceDropped(ctx, obs.ProductID, obs.RetailerID, obs.Price, prior.Price, obs.ObservedAt); err != nil {
			p.logger.WithContext(ctx).WithError(err).Warn("Price dropped event lost")
		}
	}
	if lowest != nil && obs.Price <= lowest.Price {
		if err := p.emitter.EmitAllTimeLow(ctx, obs.ProductID, obs.RetailerID, obs.Price, lowest.Price, obs.ObservedAt); err != nil {
			p.logger.WithContext(ctx).WithError(err).Warn("All time low event lost")
		}
	}
	if prior != nil && !prior.InStock && obs.InStock {
		if err := p.emitter.EmitBackInStock(ctx, obs.ProductID, obs.RetailerID, obs.Price, obs.ObservedAt); err != nil {
			p.logger.WithContext(ctx).WithError(err).Warn("Back in stock event lost")
		}
	}
}

// listingFromObservation maps an observation onto the listing row, keeping
// the row id when the listing already exists.
func listingFromObservation(obs *kafka.PriceObservation, prior *models.Listing) *models.Listing {
	listing := &models.Listing{
		ProductID:      obs.ProductID,
		RetailerID:     obs.RetailerID,
		ExternalID:     obs.ExternalID,
		Price:          obs.Price,
		CompareAtPrice: obs.CompareAtPrice,
		Currency:       obs.Currency,
		InStock:        obs.InStock,
		OnSale:         obs.OnSale,
		ProductURL:     obs.ProductURL,
		AffiliateURL:   obs.AffiliateURL,
		OfferTitle:     obs.OfferTitle,
		LastChecked:    obs.ObservedAt,
	}
	if prior != nil {
		listing.ID = prior.ID
		if listing.OfferTitle == nil {
			listing.OfferTitle = prior.OfferTitle
		}
	}
	return listing
}
