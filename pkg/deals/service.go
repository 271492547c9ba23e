// Package deals orchestrates the deal view: it fetches the four row sets
// for a product concurrently and runs the pure pipeline (filter, group,
// classify, insight, coupons, staleness) over the snapshot.
package deals

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/AudioList/deals-api/pkg/bundles"
	"github.com/AudioList/deals-api/pkg/coupons"
	"github.com/AudioList/deals-api/pkg/insights"
	"github.com/AudioList/deals-api/pkg/metrics"
	"github.com/AudioList/deals-api/pkg/models"
	"github.com/AudioList/deals-api/pkg/offers"
	"github.com/AudioList/deals-api/pkg/tracing"
)

// Data sources. Each returns an immutable snapshot for one product; the
// repositories implement these against postgres.
type (
	ProductSource interface {
		GetProduct(ctx context.Context, productID string) (*models.Product, error)
	}
	ListingSource interface {
		ListingsForProduct(ctx context.Context, productID string) ([]models.Listing, error)
	}
	HistorySource interface {
		HistoryForProduct(ctx context.Context, productID string) ([]models.PricePoint, error)
	}
	BundleSource interface {
		CandidatesForProduct(ctx context.Context, productID string) ([]models.BundleCandidate, error)
	}
	CouponSource interface {
		CouponsForRetailers(ctx context.Context, retailerIDs []string) ([]models.Coupon, error)
	}
)

// ViewCache is an optional snapshot cache; nil disables caching.
type ViewCache interface {
	Get(ctx context.Context, productID string) (*models.DealView, bool)
	Set(ctx context.Context, productID string, view *models.DealView)
}

type Service struct {
	products   ProductSource
	listings   ListingSource
	history    HistorySource
	bundles    BundleSource
	coupons    CouponSource
	cache      ViewCache
	logger     ectologger.Logger
	staleAfter time.Duration
	now        func() time.Time
}

func NewService(
	products ProductSource,
	listings ListingSource,
	history HistorySource,
	bundleRows BundleSource,
	couponRows CouponSource,
	cache ViewCache,
	staleAfter time.Duration,
	logger ectologger.Logger,
) *Service {
	return &Service{
		products:   products,
		listings:   listings,
		history:    history,
		bundles:    bundleRows,
		coupons:    couponRows,
		cache:      cache,
		logger:     logger,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// snapshot is everything one deal view is computed from. The listings
// fetch is the only one allowed to fail the view; the others degrade to
// empty.
type snapshot struct {
	product    *models.Product
	listings   []models.Listing
	history    []models.PricePoint
	candidates []models.BundleCandidate
}

// GetDealView assembles the decision-ready deal view for a product.
func (s *Service) GetDealView(ctx context.Context, productID string) (*models.DealView, error) {
	ctx, span := tracing.StartSpan(ctx, "deals.Service.GetDealView")
	defer span.End()

	if s.cache != nil {
		if view, ok := s.cache.Get(ctx, productID); ok {
			return view, nil
		}
	}

	start := s.now()
	snap, err := s.fetch(ctx, productID)
	if err != nil {
		metrics.DealViewsBuilt.WithLabelValues("error").Inc()
		return nil, err
	}

	view := s.assemble(ctx, productID, snap)
	metrics.DealViewsBuilt.WithLabelValues("ok").Inc()
	metrics.DealViewBuildSeconds.Observe(s.now().Sub(start).Seconds())

	if s.cache != nil {
		s.cache.Set(ctx, productID, view)
	}
	return view, nil
}

// fetch pulls the product row and the three product-keyed row sets
// concurrently; coupons are fetched afterwards because they need the
// retailer-id set off the listings. A cancelled context discards whatever
// partial results arrived.
func (s *Service) fetch(ctx context.Context, productID string) (snapshot, error) {
	ctx, span := tracing.StartSpan(ctx, "deals.Service.fetch")
	defer span.End()

	var (
		snap       snapshot
		listingErr error
		wg         sync.WaitGroup
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		product, err := s.products.GetProduct(ctx, productID)
		if err != nil {
			s.degrade(ctx, productID, "product", err)
			return
		}
		snap.product = product
	}()
	go func() {
		defer wg.Done()
		snap.listings, listingErr = s.listings.ListingsForProduct(ctx, productID)
	}()
	go func() {
		defer wg.Done()
		history, err := s.history.HistoryForProduct(ctx, productID)
		if err != nil {
			s.degrade(ctx, productID, "history", err)
			return
		}
		snap.history = history
	}()
	go func() {
		defer wg.Done()
		candidates, err := s.bundles.CandidatesForProduct(ctx, productID)
		if err != nil {
			s.degrade(ctx, productID, "bundles", err)
			return
		}
		snap.candidates = candidates
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return snapshot{}, err
	}
	if listingErr != nil {
		s.logger.WithContext(ctx).WithError(listingErr).WithFields(map[string]any{
			"product_id": productID,
		}).Error("failed to get listings")
		return snapshot{}, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get listings")
	}
	return snap, nil
}

// degrade logs a non-listing fetch failure; the corresponding view piece
// renders empty.
func (s *Service) degrade(ctx context.Context, productID, source string, err error) {
	if ctx.Err() != nil {
		return
	}
	s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
		"product_id": productID,
		"source":     source,
	}).Warn("deal view source degraded to empty")
}

func (s *Service) assemble(ctx context.Context, productID string, snap snapshot) *models.DealView {
	_, span := tracing.StartSpan(ctx, "deals.Service.assemble")
	defer span.End()

	now := s.now()
	active := offers.FilterActive(snap.listings)
	grouped := offers.GroupVariants(active)

	// Best current price per retailer, taken from that retailer's
	// best-ranked group.
	current := make(map[string]float64)
	retailerIDs := make([]string, 0, len(grouped))
	for _, offer := range grouped {
		if _, ok := current[offer.RetailerID]; ok {
			continue
		}
		current[offer.RetailerID] = offer.Best.Price
		retailerIDs = append(retailerIDs, offer.RetailerID)
	}

	byRetailer := insights.Compute(snap.history, current, now)
	matchedCoupons := s.matchCoupons(ctx, productID, retailerIDs, now)
	bundleOffers := classifyBundles(snap.product, snap.candidates)

	view := &models.DealView{
		ProductID:    productID,
		GlobalLowest: insights.GlobalLowest(byRetailer),
		GeneratedAt:  now,
	}
	if snap.product != nil {
		view.ProductName = snap.product.Name
	}

	view.Deals = make([]models.DealAnnotation, 0, len(grouped))
	seenRetailer := make(map[string]struct{}, len(grouped))
	for _, offer := range grouped {
		annotation := models.DealAnnotation{
			LogicalOffer: offer,
			Coupons:      []models.Coupon{},
			Bundles:      []models.BundleOffer{},
		}
		if ins, ok := byRetailer[offer.RetailerID]; ok {
			insCopy := ins
			annotation.Insight = &insCopy
		}
		if cs := matchedCoupons[offer.RetailerID]; cs != nil {
			annotation.Coupons = cs
		}
		// Bundle rows attach once per retailer, on its best-ranked group.
		if _, seen := seenRetailer[offer.RetailerID]; !seen {
			seenRetailer[offer.RetailerID] = struct{}{}
			annotation.Bundles = bundlesForRetailer(bundleOffers, offer.RetailerID)
		}
		view.Deals = append(view.Deals, annotation)
	}

	view.LastCheckedOverall, view.IsStale = s.staleness(active, now)
	return view
}

// matchCoupons fetches and filters coupons; a fetch failure degrades to no
// coupons anywhere.
func (s *Service) matchCoupons(ctx context.Context, productID string, retailerIDs []string, now time.Time) map[string][]models.Coupon {
	if len(retailerIDs) == 0 {
		return nil
	}
	rows, err := s.coupons.CouponsForRetailers(ctx, retailerIDs)
	if err != nil {
		s.degrade(ctx, productID, "coupons", err)
		return nil
	}
	return coupons.Match(rows, retailerIDs, now)
}

// classifyBundles runs the title heuristics over the candidate rows. No
// product row means no reference name to compare against, so no bundles.
func classifyBundles(product *models.Product, candidates []models.BundleCandidate) []models.BundleOffer {
	if product == nil {
		return nil
	}
	out := make([]models.BundleOffer, 0, len(candidates))
	for _, c := range candidates {
		if c.Flags.Data.Discontinued {
			continue
		}
		if !bundles.IsBundle(c.Title, product.Name) {
			continue
		}
		out = append(out, models.BundleOffer{
			ID:           c.ID,
			RetailerID:   c.RetailerID,
			Title:        c.Title,
			Description:  bundles.ExtractBundleDescription(c.Title, product.Name),
			Price:        c.Price,
			InStock:      c.InStock,
			ProductURL:   c.ProductURL,
			AffiliateURL: c.AffiliateURL,
		})
	}
	return out
}

func bundlesForRetailer(all []models.BundleOffer, retailerID string) []models.BundleOffer {
	out := []models.BundleOffer{}
	for _, b := range all {
		if b.RetailerID == retailerID {
			out = append(out, b)
		}
	}
	return out
}

// staleness computes the most recent check across the active listings and
// whether it is older than the configured threshold.
func (s *Service) staleness(active []models.Listing, now time.Time) (*time.Time, bool) {
	var last *time.Time
	for _, l := range active {
		checked := l.LastChecked
		if last == nil || checked.After(*last) {
			last = &checked
		}
	}
	if last == nil {
		return nil, false
	}
	return last, now.Sub(*last) > s.staleAfter
}
