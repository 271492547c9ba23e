package coupons

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AudioList/deals-api/pkg/models"
)

func TestMatch(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	timePtr := func(ts time.Time) *time.Time { return &ts }

	coupon := func(id, retailerID string, active bool, expiresAt *time.Time) models.Coupon {
		return models.Coupon{
			ID:         id,
			RetailerID: retailerID,
			Code:       "SAVE10",
			IsActive:   active,
			ExpiresAt:  expiresAt,
		}
	}

	t.Run("expiry boundaries", func(t *testing.T) {
		rows := []models.Coupon{
			coupon("past", "ret-1", true, timePtr(now.Add(-time.Second))),
			coupon("future", "ret-1", true, timePtr(now.Add(time.Second))),
			coupon("forever", "ret-1", true, nil),
		}

		matched := Match(rows, []string{"ret-1"}, now)

		require.Len(t, matched["ret-1"], 2)
		assert.Equal(t, "future", matched["ret-1"][0].ID)
		assert.Equal(t, "forever", matched["ret-1"][1].ID)
	})

	t.Run("inactive coupons are excluded", func(t *testing.T) {
		rows := []models.Coupon{coupon("off", "ret-1", false, nil)}

		matched := Match(rows, []string{"ret-1"}, now)

		assert.Empty(t, matched["ret-1"])
	})

	t.Run("restricted to the retailer set", func(t *testing.T) {
		rows := []models.Coupon{
			coupon("c1", "ret-1", true, nil),
			coupon("c2", "ret-2", true, nil),
		}

		matched := Match(rows, []string{"ret-1"}, now)

		assert.Len(t, matched["ret-1"], 1)
		assert.NotContains(t, matched, "ret-2")
	})

	t.Run("source order is preserved", func(t *testing.T) {
		rows := []models.Coupon{
			coupon("first", "ret-1", true, nil),
			coupon("second", "ret-1", true, nil),
		}

		matched := Match(rows, []string{"ret-1"}, now)

		require.Len(t, matched["ret-1"], 2)
		assert.Equal(t, "first", matched["ret-1"][0].ID)
		assert.Equal(t, "second", matched["ret-1"][1].ID)
	})
}
