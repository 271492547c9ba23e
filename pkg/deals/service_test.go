package deals

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AudioList/deals-api/pkg/models"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeSources struct {
	product       *models.Product
	productErr    error
	listings      []models.Listing
	listingsErr   error
	history       []models.PricePoint
	historyErr    error
	candidates    []models.BundleCandidate
	candidatesErr error
	coupons       []models.Coupon
	couponsErr    error
}

func (f *fakeSources) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	return f.product, f.productErr
}

func (f *fakeSources) ListingsForProduct(ctx context.Context, productID string) ([]models.Listing, error) {
	return f.listings, f.listingsErr
}

func (f *fakeSources) HistoryForProduct(ctx context.Context, productID string) ([]models.PricePoint, error) {
	return f.history, f.historyErr
}

func (f *fakeSources) CandidatesForProduct(ctx context.Context, productID string) ([]models.BundleCandidate, error) {
	return f.candidates, f.candidatesErr
}

func (f *fakeSources) CouponsForRetailers(ctx context.Context, retailerIDs []string) ([]models.Coupon, error) {
	return f.coupons, f.couponsErr
}

type fakeCache struct {
	stored map[string]*models.DealView
	hits   int
}

func (f *fakeCache) Get(ctx context.Context, productID string) (*models.DealView, bool) {
	view, ok := f.stored[productID]
	if ok {
		f.hits++
	}
	return view, ok
}

func (f *fakeCache) Set(ctx context.Context, productID string, view *models.DealView) {
	if f.stored == nil {
		f.stored = map[string]*models.DealView{}
	}
	f.stored[productID] = view
}

func newTestService(sources *fakeSources, cache ViewCache) *Service {
	logger := ectologger.NewEctoLogger(func(ectologger.EctoLogMessage) {})
	svc := NewService(sources, sources, sources, sources, sources, cache, 72*time.Hour, logger)
	svc.now = func() time.Time { return testNow }
	return svc
}

func strPtr(s string) *string { return &s }

func activeListing(id, retailerID, retailerName string, price float64, checkedAgo time.Duration) models.Listing {
	return models.Listing{
		ID:             id,
		ProductID:      "prod-1",
		RetailerID:     retailerID,
		RetailerName:   retailerName,
		RetailerActive: true,
		ProductURL:     strPtr("https://shop.example/" + id),
		OfferTitle:     strPtr("Widget X200"),
		Price:          price,
		InStock:        true,
		LastChecked:    testNow.Add(-checkedAgo),
	}
}

func TestGetDealView(t *testing.T) {
	expires := testNow.Add(24 * time.Hour)
	sources := &fakeSources{
		product: &models.Product{ID: "prod-1", Name: "Widget X200"},
		listings: []models.Listing{
			activeListing("l1", "ret-1", "AudioHut", 229.99, time.Hour),
			activeListing("l2", "ret-2", "SoundBarn", 199.99, 2*time.Hour),
		},
		history: []models.PricePoint{
			{RetailerID: "ret-2", Price: 249.99, RecordedAt: testNow.Add(-90 * 24 * time.Hour)},
			{RetailerID: "ret-2", Price: 219.99, RecordedAt: testNow.Add(-40 * 24 * time.Hour)},
		},
		candidates: []models.BundleCandidate{
			{ID: "b1", RetailerID: "ret-2", Title: "Widget X200 with FREE Carry Case", InStock: true},
		},
		coupons: []models.Coupon{
			{ID: "c1", RetailerID: "ret-2", Code: "SAVE10", IsActive: true, ExpiresAt: &expires},
		},
	}

	svc := newTestService(sources, nil)
	view, err := svc.GetDealView(context.Background(), "prod-1")
	require.NoError(t, err)

	assert.Equal(t, "prod-1", view.ProductID)
	assert.Equal(t, "Widget X200", view.ProductName)
	require.Len(t, view.Deals, 2)

	// Cheaper retailer ranks first.
	best := view.Deals[0]
	assert.Equal(t, "ret-2", best.RetailerID)
	require.NotNil(t, best.Insight)
	assert.Equal(t, 199.99, best.Insight.CurrentPrice)
	assert.Equal(t, models.TrendDown, best.Insight.Trend)
	assert.True(t, best.Insight.IsAllTimeLow)
	require.Len(t, best.Coupons, 1)
	assert.Equal(t, "SAVE10", best.Coupons[0].Code)
	require.Len(t, best.Bundles, 1)
	assert.Equal(t, "with FREE Carry Case", best.Bundles[0].Description)

	// The other retailer has no history, so no insight.
	assert.Nil(t, view.Deals[1].Insight)
	assert.Empty(t, view.Deals[1].Coupons)

	require.NotNil(t, view.GlobalLowest)
	assert.Equal(t, 199.99, *view.GlobalLowest)
	require.NotNil(t, view.LastCheckedOverall)
	assert.Equal(t, testNow.Add(-time.Hour), *view.LastCheckedOverall)
	assert.False(t, view.IsStale)
	assert.Equal(t, testNow, view.GeneratedAt)
}

func TestGetDealView_ListingsFailureIsAnError(t *testing.T) {
	sources := &fakeSources{listingsErr: errors.New("connection refused")}

	svc := newTestService(sources, nil)
	_, err := svc.GetDealView(context.Background(), "prod-1")

	require.Error(t, err)
	assert.True(t, httperror.IsHTTPError(err))
	assert.Equal(t, http.StatusInternalServerError, httperror.GetStatusCode(err))
}

func TestGetDealView_EmptyListingsIsNotAnError(t *testing.T) {
	sources := &fakeSources{product: &models.Product{ID: "prod-1", Name: "Widget X200"}}

	svc := newTestService(sources, nil)
	view, err := svc.GetDealView(context.Background(), "prod-1")

	require.NoError(t, err)
	assert.Empty(t, view.Deals)
	assert.Nil(t, view.GlobalLowest)
	assert.Nil(t, view.LastCheckedOverall)
	assert.False(t, view.IsStale)
}

func TestGetDealView_SecondarySourcesDegradeToEmpty(t *testing.T) {
	sources := &fakeSources{
		productErr: errors.New("product lookup down"),
		listings: []models.Listing{
			activeListing("l1", "ret-1", "AudioHut", 229.99, time.Hour),
		},
		historyErr:    errors.New("history down"),
		candidatesErr: errors.New("bundles down"),
		couponsErr:    errors.New("coupons down"),
	}

	svc := newTestService(sources, nil)
	view, err := svc.GetDealView(context.Background(), "prod-1")

	require.NoError(t, err)
	require.Len(t, view.Deals, 1)
	assert.Nil(t, view.Deals[0].Insight)
	assert.Empty(t, view.Deals[0].Coupons)
	assert.Empty(t, view.Deals[0].Bundles)
	assert.Empty(t, view.ProductName)
	assert.Nil(t, view.GlobalLowest)
}

func TestGetDealView_Staleness(t *testing.T) {
	tests := []struct {
		name     string
		age      time.Duration
		expected bool
	}{
		{name: "72h plus one second is stale", age: 72*time.Hour + time.Second, expected: true},
		{name: "71h59m is not stale", age: 71*time.Hour + 59*time.Minute, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sources := &fakeSources{
				listings: []models.Listing{
					activeListing("l1", "ret-1", "AudioHut", 229.99, tt.age),
				},
			}

			svc := newTestService(sources, nil)
			view, err := svc.GetDealView(context.Background(), "prod-1")

			require.NoError(t, err)
			assert.Equal(t, tt.expected, view.IsStale)
		})
	}
}

func TestGetDealView_InactiveRetailersAreExcludedFromStaleness(t *testing.T) {
	fresh := activeListing("l1", "ret-1", "AudioHut", 229.99, time.Hour)
	fresh.RetailerActive = false
	old := activeListing("l2", "ret-2", "SoundBarn", 199.99, 80*time.Hour)

	sources := &fakeSources{listings: []models.Listing{fresh, old}}

	svc := newTestService(sources, nil)
	view, err := svc.GetDealView(context.Background(), "prod-1")

	require.NoError(t, err)
	require.NotNil(t, view.LastCheckedOverall)
	assert.Equal(t, testNow.Add(-80*time.Hour), *view.LastCheckedOverall)
	assert.True(t, view.IsStale)
}

func TestGetDealView_CancelledContextDiscardsResults(t *testing.T) {
	sources := &fakeSources{
		listings: []models.Listing{
			activeListing("l1", "ret-1", "AudioHut", 229.99, time.Hour),
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := newTestService(sources, nil)
	_, err := svc.GetDealView(ctx, "prod-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetDealView_CacheRoundTrip(t *testing.T) {
	sources := &fakeSources{
		product: &models.Product{ID: "prod-1", Name: "Widget X200"},
		listings: []models.Listing{
			activeListing("l1", "ret-1", "AudioHut", 229.99, time.Hour),
		},
	}
	cache := &fakeCache{}

	svc := newTestService(sources, cache)

	first, err := svc.GetDealView(context.Background(), "prod-1")
	require.NoError(t, err)
	assert.Equal(t, 0, cache.hits)

	second, err := svc.GetDealView(context.Background(), "prod-1")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, first, second)
}
