package offers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AudioList/deals-api/pkg/models"
)

func listing(id string, price float64, inStock bool, checked time.Time) models.Listing {
	return models.Listing{
		ID:          id,
		ProductID:   "prod-1",
		RetailerID:  "ret-1",
		Price:       price,
		InStock:     inStock,
		LastChecked: checked,
	}
}

func TestFilterActive(t *testing.T) {
	active := models.Listing{ID: "a", RetailerActive: true}
	inactive := models.Listing{ID: "b", RetailerActive: false}

	tests := []struct {
		name     string
		input    []models.Listing
		expected []string
	}{
		{
			name:     "drops inactive retailers",
			input:    []models.Listing{active, inactive},
			expected: []string{"a"},
		},
		{
			name:     "all inactive yields empty slice",
			input:    []models.Listing{inactive},
			expected: []string{},
		},
		{
			name:     "empty input yields empty output",
			input:    nil,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FilterActive(tt.input)

			ids := make([]string, 0, len(result))
			for _, l := range result {
				ids = append(ids, l.ID)
			}
			assert.Equal(t, tt.expected, ids)
		})
	}
}

func TestBetter(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		a        models.Listing
		b        models.Listing
		expected bool
	}{
		{
			name:     "in stock beats out of stock regardless of price",
			a:        listing("a", 999, true, now),
			b:        listing("b", 1, false, now),
			expected: true,
		},
		{
			name:     "out of stock loses regardless of price",
			a:        listing("a", 1, false, now),
			b:        listing("b", 999, true, now),
			expected: false,
		},
		{
			name:     "lower price wins when stock ties",
			a:        listing("a", 199.99, true, now),
			b:        listing("b", 249.99, true, now),
			expected: true,
		},
		{
			name:     "newer check wins when stock and price tie",
			a:        listing("a", 199.99, true, now),
			b:        listing("b", 199.99, true, now.Add(-time.Hour)),
			expected: true,
		},
		{
			name:     "full tie is not strictly better",
			a:        listing("a", 199.99, true, now),
			b:        listing("b", 199.99, true, now),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Better(tt.a, tt.b))
		})
	}
}

func TestPickBest(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("empty input", func(t *testing.T) {
		_, ok := PickBest(nil)
		assert.False(t, ok)
	})

	t.Run("prefers in-stock over cheaper out-of-stock", func(t *testing.T) {
		candidates := []models.Listing{
			listing("cheap-oos", 99.00, false, now),
			listing("stocked", 149.00, true, now),
		}

		best, ok := PickBest(candidates)
		require.True(t, ok)
		assert.Equal(t, "stocked", best.ID)
	})

	t.Run("result always comes from the input", func(t *testing.T) {
		candidates := []models.Listing{
			listing("a", 120, true, now),
			listing("b", 110, true, now.Add(-time.Hour)),
			listing("c", 110, true, now),
		}

		best, ok := PickBest(candidates)
		require.True(t, ok)
		assert.Contains(t, []string{"a", "b", "c"}, best.ID)
		assert.Equal(t, "c", best.ID) // same price as b, checked more recently
	})
}
