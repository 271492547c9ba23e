package offers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AudioList/deals-api/pkg/models"
)

func strPtr(s string) *string { return &s }

func titled(id, retailerID, title string, price float64) models.Listing {
	return models.Listing{
		ID:           id,
		ProductID:    "prod-1",
		RetailerID:   retailerID,
		RetailerName: "Retailer " + retailerID,
		OfferTitle:   strPtr(title),
		ProductURL:   strPtr("https://shop.example/" + id),
		Price:        price,
		InStock:      true,
		LastChecked:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestParseTitle(t *testing.T) {
	tests := []struct {
		name          string
		title         string
		expectedBase  string
		expectedLabel string
	}{
		{
			name:          "color suffix splits",
			title:         "Widget X200 - Matte Black",
			expectedBase:  "Widget X200",
			expectedLabel: "Matte Black",
		},
		{
			name:          "two-tone color suffix splits",
			title:         "Widget X200 - Black and Gold",
			expectedBase:  "Widget X200",
			expectedLabel: "Black and Gold",
		},
		{
			name:          "non-color suffix does not split",
			title:         "Widget X200 - 2 Pack",
			expectedBase:  "Widget X200 - 2 Pack",
			expectedLabel: "",
		},
		{
			name:          "finish modifier alone does not split",
			title:         "Widget X200 - Matte",
			expectedBase:  "Widget X200 - Matte",
			expectedLabel: "",
		},
		{
			name:          "single segment has no label",
			title:         "Widget X200",
			expectedBase:  "Widget X200",
			expectedLabel: "",
		},
		{
			name:          "only the last segment is inspected",
			title:         "Acme - Widget X200 - Gunmetal Gray",
			expectedBase:  "Acme - Widget X200",
			expectedLabel: "Gunmetal Gray",
		},
		{
			name:          "empty segments are dropped before splitting",
			title:         "Widget X200 -  - White",
			expectedBase:  "Widget X200",
			expectedLabel: "White",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, label := parseTitle(tt.title)
			assert.Equal(t, tt.expectedBase, base)
			assert.Equal(t, tt.expectedLabel, label)
		})
	}
}

func TestGroupVariants(t *testing.T) {
	t.Run("color variants from one retailer form a single offer", func(t *testing.T) {
		offers := GroupVariants([]models.Listing{
			titled("l1", "ret-1", "Widget X200 - Matte Black", 199.99),
			titled("l2", "ret-1", "Widget X200 - Gunmetal Gray", 209.99),
		})

		require.Len(t, offers, 1)
		offer := offers[0]
		require.NotNil(t, offer.BaseTitle)
		assert.Equal(t, "Widget X200", *offer.BaseTitle)
		require.Len(t, offer.Variants, 2)
		assert.Equal(t, "Matte Black", offer.Variants[0].Label)
		assert.Equal(t, "Gunmetal Gray", offer.Variants[1].Label)
		assert.Equal(t, "l1", offer.Best.ID) // cheaper variant is the default
	})

	t.Run("non-color suffix keeps the whole title as base", func(t *testing.T) {
		offers := GroupVariants([]models.Listing{
			titled("l1", "ret-1", "Widget X200 - 2 Pack", 349.99),
		})

		require.Len(t, offers, 1)
		require.NotNil(t, offers[0].BaseTitle)
		assert.Equal(t, "Widget X200 - 2 Pack", *offers[0].BaseTitle)
		require.Len(t, offers[0].Variants, 1)
		assert.Equal(t, "(default)", offers[0].Variants[0].Label)
	})

	t.Run("untitled listings never collapse into each other", func(t *testing.T) {
		a := titled("l1", "ret-1", "", 100)
		a.OfferTitle = nil
		b := titled("l2", "ret-1", "", 110)
		b.OfferTitle = nil

		offers := GroupVariants([]models.Listing{a, b})

		require.Len(t, offers, 2)
		for _, o := range offers {
			assert.Nil(t, o.BaseTitle)
			require.Len(t, o.Variants, 1)
			assert.Equal(t, "(listing)", o.Variants[0].Label)
		}
	})

	t.Run("duplicate buy targets are dropped", func(t *testing.T) {
		a := titled("l1", "ret-1", "Widget X200 - Black", 199.99)
		b := titled("l2", "ret-1", "Widget X200 - Black", 199.99)
		b.ProductURL = a.ProductURL // same SKU listed twice

		offers := GroupVariants([]models.Listing{a, b})

		require.Len(t, offers, 1)
		assert.Len(t, offers[0].Variants, 1)
	})

	t.Run("repeated labels are disambiguated in first-seen order", func(t *testing.T) {
		offers := GroupVariants([]models.Listing{
			titled("l1", "ret-1", "Widget X200 - Black", 199.99),
			titled("l2", "ret-1", "Widget X200 - Black", 204.99),
			titled("l3", "ret-1", "Widget X200 - Black", 209.99),
		})

		require.Len(t, offers, 1)
		require.Len(t, offers[0].Variants, 3)
		assert.Equal(t, "Black", offers[0].Variants[0].Label)
		assert.Equal(t, "Black (2)", offers[0].Variants[1].Label)
		assert.Equal(t, "Black (3)", offers[0].Variants[2].Label)
	})

	t.Run("model label drops the leading brand segment", func(t *testing.T) {
		offers := GroupVariants([]models.Listing{
			titled("l1", "ret-1", "Acme - Widget X200 - Black", 199.99),
			titled("l2", "ret-2", "Widget X200", 219.99),
		})

		require.Len(t, offers, 2)
		byRetailer := map[string]models.LogicalOffer{}
		for _, o := range offers {
			byRetailer[o.RetailerID] = o
		}
		assert.Equal(t, "Widget X200", byRetailer["ret-1"].ModelLabel)
		assert.Equal(t, "Widget X200", byRetailer["ret-2"].ModelLabel)
	})

	t.Run("groups order by best listing with retailer-name tiebreak", func(t *testing.T) {
		cheap := titled("l1", "ret-b", "Widget X200", 149.99)
		oos := titled("l2", "ret-a", "Widget X200", 99.99)
		oos.InStock = false
		tied := titled("l3", "ret-c", "Widget X200", 149.99)
		tied.RetailerName = "Retailer ret-a" // alphabetically before ret-b's name

		offers := GroupVariants([]models.Listing{cheap, oos, tied})

		require.Len(t, offers, 3)
		assert.Equal(t, "ret-c", offers[0].RetailerID) // tie on price, wins on name
		assert.Equal(t, "ret-b", offers[1].RetailerID)
		assert.Equal(t, "ret-a", offers[2].RetailerID) // out of stock sinks
	})
}
