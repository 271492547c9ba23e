// Package coupons attaches retailer coupons to deal views.
package coupons

import (
	"time"

	"github.com/AudioList/deals-api/pkg/models"
)

// Match groups the valid coupons by retailer id, restricted to the supplied
// retailer set. A coupon is valid when it is active and not expired; a nil
// expires_at never expires. Source order is preserved within a retailer.
func Match(rows []models.Coupon, retailerIDs []string, now time.Time) map[string][]models.Coupon {
	wanted := make(map[string]struct{}, len(retailerIDs))
	for _, id := range retailerIDs {
		wanted[id] = struct{}{}
	}

	out := make(map[string][]models.Coupon)
	for _, c := range rows {
		if _, ok := wanted[c.RetailerID]; !ok {
			continue
		}
		if !c.Valid(now) {
			continue
		}
		out[c.RetailerID] = append(out[c.RetailerID], c)
	}
	return out
}
