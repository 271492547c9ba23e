// Package events handles event emission for deal lifecycle changes
package events

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/AudioList/deals-api/pkg/kafka"
	"github.com/AudioList/deals-api/pkg/metrics"
	"github.com/AudioList/deals-api/pkg/tracing"
)

// Publisher is the producer surface the emitter needs.
type Publisher interface {
	PublishDealEvent(ctx context.Context, event *kafka.DealEvent) error
}

// Emitter turns ingestion outcomes into deal events.
type Emitter struct {
	producer Publisher
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(producer Publisher, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// EmitPriceDropped emits a price drop event for a retailer listing.
func (e *Emitter) EmitPriceDropped(ctx context.Context, productID, retailerID string, price, previousPrice float64, observedAt time.Time) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitPriceDropped")
	defer span.End()

	event := &kafka.DealEvent{
		EventType:     kafka.EventPriceDropped,
		ProductID:     productID,
		RetailerID:    retailerID,
		Price:         price,
		PreviousPrice: &previousPrice,
		Timestamp:     observedAt,
	}

	if err := e.producer.PublishDealEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit price dropped event")
		return err
	}

	metrics.EventsEmitted.WithLabelValues(kafka.EventPriceDropped).Inc()
	return nil
}

// EmitAllTimeLow emits an all-time-low event for a retailer listing.
func (e *Emitter) EmitAllTimeLow(ctx context.Context, productID, retailerID string, price, lowestEver float64, observedAt time.Time) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitAllTimeLow")
	defer span.End()

	event := &kafka.DealEvent{
		EventType:  kafka.EventAllTimeLow,
		ProductID:  productID,
		RetailerID: retailerID,
		Price:      price,
		LowestEver: &lowestEver,
		Timestamp:  observedAt,
	}

	if err := e.producer.PublishDealEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit all time low event")
		return err
	}

	metrics.EventsEmitted.WithLabelValues(kafka.EventAllTimeLow).Inc()
	return nil
}

// EmitBackInStock emits a back-in-stock event for a retailer listing.
func (e *Emitter) EmitBackInStock(ctx context.Context, productID, retailerID string, price float64, observedAt time.Time) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitBackInStock")
	defer span.End()

	event := &kafka.DealEvent{
		EventType:  kafka.EventBackInStock,
		ProductID:  productID,
		RetailerID: retailerID,
		Price:      price,
		Timestamp:  observedAt,
	}

	if err := e.producer.PublishDealEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit back in stock event")
		return err
	}

	metrics.EventsEmitted.WithLabelValues(kafka.EventBackInStock).Inc()
	return nil
}
