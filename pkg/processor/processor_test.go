package processor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AudioList/deals-api/pkg/kafka"
	"github.com/AudioList/deals-api/pkg/models"
)

var observedAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

const (
	productID  = "7c2b5ff3-46f8-4c27-b1b5-2f8b3d3a9b11"
	retailerID = "9d1a4cc2-58e1-4f6b-8a3c-1e2d3f4a5b6c"
)

type fakeStores struct {
	prior     *models.Listing
	findErr   error
	upserted  *models.Listing
	upsertErr error

	lowest    *models.PricePoint
	lowestErr error
	appended  []*models.PricePoint
	appendErr error
}

func (f *fakeStores) Find(ctx context.Context, productID, retailerID, externalID string) (*models.Listing, error) {
	return f.prior, f.findErr
}

func (f *fakeStores) Upsert(ctx context.Context, listing *models.Listing) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = listing
	return nil
}

func (f *fakeStores) Append(ctx context.Context, point *models.PricePoint) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, point)
	return nil
}

func (f *fakeStores) LowestForRetailer(ctx context.Context, productID, retailerID string) (*models.PricePoint, error) {
	return f.lowest, f.lowestErr
}

type fakeEmitter struct {
	priceDropped []float64
	allTimeLow   []float64
	backInStock  []float64
	emitErr      error
}

func (f *fakeEmitter) EmitPriceDropped(ctx context.Context, productID, retailerID string, price, previousPrice float64, observedAt time.Time) error {
	f.priceDropped = append(f.priceDropped, price)
	return f.emitErr
}

func (f *fakeEmitter) EmitAllTimeLow(ctx context.Context, productID, retailerID string, price, lowestEver float64, observedAt time.Time) error {
	f.allTimeLow = append(f.allTimeLow, price)
	return f.emitErr
}

func (f *fakeEmitter) EmitBackInStock(ctx context.Context, productID, retailerID string, price float64, observedAt time.Time) error {
	f.backInStock = append(f.backInStock, price)
	return f.emitErr
}

type fakeInvalidator struct {
	invalidated []string
}

func (f *fakeInvalidator) Invalidate(ctx context.Context, productID string) {
	f.invalidated = append(f.invalidated, productID)
}

func observation(price float64, inStock bool) *kafka.PriceObservation {
	return &kafka.PriceObservation{
		ProductID:  productID,
		RetailerID: retailerID,
		ExternalID: "sku-123",
		Price:      price,
		Currency:   "USD",
		InStock:    inStock,
		ObservedAt: observedAt,
	}
}

func message(obs *kafka.PriceObservation) *kafka.IncomingMessage {
	return &kafka.IncomingMessage{Observation: obs}
}

func newTestProcessor(stores *fakeStores, emitter *fakeEmitter, cache Invalidator) *Processor {
	logger := ectologger.NewEctoLogger(func(ectologger.EctoLogMessage) {})
	return NewProcessor(logger, stores, stores, emitter, cache)
}

func TestHandleMessage_UpsertsAndAppends(t *testing.T) {
	stores := &fakeStores{}
	emitter := &fakeEmitter{}
	cache := &fakeInvalidator{}

	p := newTestProcessor(stores, emitter, cache)
	err := p.HandleMessage(context.Background(), message(observation(199.99, true)))
	require.NoError(t, err)

	require.NotNil(t, stores.upserted)
	assert.Equal(t, 199.99, stores.upserted.Price)
	assert.Equal(t, observedAt, stores.upserted.LastChecked)

	require.Len(t, stores.appended, 1)
	assert.Equal(t, 199.99, stores.appended[0].Price)
	assert.Equal(t, observedAt, stores.appended[0].RecordedAt)

	assert.Equal(t, []string{productID}, cache.invalidated)
}

func TestHandleMessage_KeepsExistingRowIdentity(t *testing.T) {
	title := "Widget X200"
	stores := &fakeStores{
		prior: &models.Listing{ID: "listing-1", Price: 249.99, InStock: true, OfferTitle: &title},
	}

	p := newTestProcessor(stores, &fakeEmitter{}, nil)
	obs := observation(199.99, true)
	err := p.HandleMessage(context.Background(), message(obs))
	require.NoError(t, err)

	require.NotNil(t, stores.upserted)
	assert.Equal(t, "listing-1", stores.upserted.ID)
	require.NotNil(t, stores.upserted.OfferTitle)
	assert.Equal(t, "Widget X200", *stores.upserted.OfferTitle)
}

func TestHandleMessage_Events(t *testing.T) {
	t.Run("price drop below prior listing price", func(t *testing.T) {
		stores := &fakeStores{prior: &models.Listing{ID: "l1", Price: 249.99, InStock: true}}
		emitter := &fakeEmitter{}

		p := newTestProcessor(stores, emitter, nil)
		require.NoError(t, p.HandleMessage(context.Background(), message(observation(199.99, true))))

		assert.Equal(t, []float64{199.99}, emitter.priceDropped)
		assert.Empty(t, emitter.allTimeLow)
	})

	t.Run("all time low only at or below the prior minimum", func(t *testing.T) {
		tests := []struct {
			name     string
			price    float64
			expected bool
		}{
			{name: "below the minimum", price: 179.99, expected: true},
			{name: "equal to the minimum", price: 189.99, expected: true},
			{name: "above the minimum", price: 199.99, expected: false},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				stores := &fakeStores{
					lowest: &models.PricePoint{Price: 189.99, RecordedAt: observedAt.Add(-30 * 24 * time.Hour)},
				}
				emitter := &fakeEmitter{}

				p := newTestProcessor(stores, emitter, nil)
				require.NoError(t, p.HandleMessage(context.Background(), message(observation(tt.price, true))))

				assert.Equal(t, tt.expected, len(emitter.allTimeLow) == 1)
			})
		}
	})

	t.Run("no all time low event without prior history", func(t *testing.T) {
		stores := &fakeStores{}
		emitter := &fakeEmitter{}

		p := newTestProcessor(stores, emitter, nil)
		require.NoError(t, p.HandleMessage(context.Background(), message(observation(99.99, true))))

		assert.Empty(t, emitter.allTimeLow)
	})

	t.Run("back in stock", func(t *testing.T) {
		stores := &fakeStores{prior: &models.Listing{ID: "l1", Price: 199.99, InStock: false}}
		emitter := &fakeEmitter{}

		p := newTestProcessor(stores, emitter, nil)
		require.NoError(t, p.HandleMessage(context.Background(), message(observation(199.99, true))))

		assert.Equal(t, []float64{199.99}, emitter.backInStock)
	})

	t.Run("emit failure does not fail the message", func(t *testing.T) {
		stores := &fakeStores{prior: &models.Listing{ID: "l1", Price: 249.99, InStock: true}}
		emitter := &fakeEmitter{emitErr: errors.New("broker down")}

		p := newTestProcessor(stores, emitter, nil)
		assert.NoError(t, p.HandleMessage(context.Background(), message(observation(199.99, true))))
	})
}

func TestHandleMessage_InvalidObservationIsDropped(t *testing.T) {
	stores := &fakeStores{}
	obs := observation(199.99, true)
	obs.Currency = "" // fails validation

	p := newTestProcessor(stores, &fakeEmitter{}, nil)
	err := p.HandleMessage(context.Background(), message(obs))

	require.NoError(t, err) // commit anyway, the payload will never get better
	assert.Nil(t, stores.upserted)
	assert.Empty(t, stores.appended)
}

func TestHandleMessage_StoreFailuresAreRetriable(t *testing.T) {
	tests := []struct {
		name   string
		stores *fakeStores
	}{
		{name: "find fails", stores: &fakeStores{findErr: errors.New("db down")}},
		{name: "lowest fails", stores: &fakeStores{lowestErr: errors.New("db down")}},
		{name: "upsert fails", stores: &fakeStores{upsertErr: errors.New("db down")}},
		{name: "append fails", stores: &fakeStores{appendErr: errors.New("db down")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProcessor(tt.stores, &fakeEmitter{}, nil)
			err := p.HandleMessage(context.Background(), message(observation(199.99, true)))
			assert.Error(t, err)
		})
	}
}
