// Package offers turns raw retailer listing rows into ranked, grouped
// logical offers.
package offers

import "github.com/AudioList/deals-api/pkg/models"

// FilterActive drops rows whose retailer is inactive. An empty input yields
// an empty output, not an error.
func FilterActive(listings []models.Listing) []models.Listing {
	active := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		if l.RetailerActive {
			active = append(active, l)
		}
	}
	return active
}

// Better reports whether a is a strictly better offer than b:
// in-stock beats out-of-stock, then lower price, then more recently checked.
// When every criterion ties, neither is better and callers fall through to
// their own tiebreak.
func Better(a, b models.Listing) bool {
	if a.InStock != b.InStock {
		return a.InStock
	}
	if a.Price != b.Price {
		return a.Price < b.Price
	}
	return a.LastChecked.After(b.LastChecked)
}

// PickBest returns the best listing among candidates per the offer order.
// ok is false only for an empty input.
func PickBest(candidates []models.Listing) (best models.Listing, ok bool) {
	if len(candidates) == 0 {
		return models.Listing{}, false
	}
	best = candidates[0]
	for _, c := range candidates[1:] {
		if Better(c, best) {
			best = c
		}
	}
	return best, true
}
