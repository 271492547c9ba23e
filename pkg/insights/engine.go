// Package insights derives per-retailer deal intelligence from a product's
// price-history series: lowest-ever price, all-time-low flag and a 30-day
// trend with a ±2% deadband.
package insights

import (
	"math"
	"time"

	"github.com/AudioList/deals-api/pkg/models"
)

const lookback = 30 * 24 * time.Hour

// round10 rounds to one decimal place.
func round10(num float64) float64 {
	return math.Round(num*10) / 10
}

// Compute builds an insight per retailer that has at least one history
// point. history must be ascending by recorded_at; current maps retailer id
// to that retailer's best current price.
func Compute(history []models.PricePoint, current map[string]float64, now time.Time) map[string]models.PriceInsight {
	byRetailer := make(map[string][]models.PricePoint)
	for _, p := range history {
		byRetailer[p.RetailerID] = append(byRetailer[p.RetailerID], p)
	}

	out := make(map[string]models.PriceInsight, len(byRetailer))
	for retailerID, points := range byRetailer {
		currentPrice, ok := current[retailerID]
		if !ok {
			continue
		}
		out[retailerID] = compute(retailerID, currentPrice, points, now)
	}
	return out
}

func compute(retailerID string, currentPrice float64, points []models.PricePoint, now time.Time) models.PriceInsight {
	lowest := points[0]
	for _, p := range points[1:] {
		// Strict comparison keeps the first occurrence on ties.
		if p.Price < lowest.Price {
			lowest = p
		}
	}

	cutoff := now.Add(-lookback)
	var price30 *float64
	for _, p := range points {
		if !p.RecordedAt.After(cutoff) {
			price := p.Price
			price30 = &price
		}
	}

	insight := models.PriceInsight{
		RetailerID:     retailerID,
		CurrentPrice:   currentPrice,
		LowestEver:     lowest.Price,
		LowestEverDate: lowest.RecordedAt,
		IsAllTimeLow:   currentPrice <= lowest.Price,
		Trend:          models.TrendStable,
	}

	if price30 == nil || *price30 <= 0 {
		return insight
	}

	// Classify on the raw percentage so a -2.01% change stays "down" even
	// though it displays as -2.0.
	rawPct := (currentPrice - *price30) * 100 / *price30
	pct := round10(rawPct)
	insight.PriceChangePct = &pct
	switch {
	case rawPct < -2:
		insight.Trend = models.TrendDown
	case rawPct > 2:
		insight.Trend = models.TrendUp
	}

	return insight
}

// GlobalLowest returns the minimum current price across all retailers that
// have an insight, or nil when none do.
func GlobalLowest(byRetailer map[string]models.PriceInsight) *float64 {
	var lowest *float64
	for _, ins := range byRetailer {
		price := ins.CurrentPrice
		if lowest == nil || price < *lowest {
			lowest = &price
		}
	}
	return lowest
}
