package models

import (
	"time"

	"github.com/AudioList/deals-api/pkg/database"
)

// BundleFlags is the raw flag blob carried on a bundle candidate row.
type BundleFlags struct {
	Discontinued bool `json:"discontinued"`
}

// BundleCandidate is a store-product row associated with a product through
// the upstream canonical-product mapping. The classifier decides whether it
// is a kit/bundle offer or just another plain listing.
type BundleCandidate struct {
	ID           string                         `json:"id" db:"id"`
	ProductID    string                         `json:"product_id" db:"product_id"`
	RetailerID   string                         `json:"retailer_id" db:"retailer_id"`
	Title        string                         `json:"title" db:"title"`
	Price        *float64                       `json:"price,omitempty" db:"price"`
	InStock      bool                           `json:"in_stock" db:"in_stock"`
	ProductURL   *string                        `json:"product_url,omitempty" db:"product_url"`
	AffiliateURL *string                        `json:"affiliate_url,omitempty" db:"affiliate_url"`
	Flags        database.JSONB[BundleFlags]    `json:"flags" db:"flags"`
	CreatedAt    time.Time                      `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time                      `json:"updated_at" db:"updated_at"`
}

// BundleOffer is a classified bundle row as shown in the deal view.
type BundleOffer struct {
	ID           string   `json:"id"`
	RetailerID   string   `json:"retailer_id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Price        *float64 `json:"price,omitempty"`
	InStock      bool     `json:"in_stock"`
	ProductURL   *string  `json:"product_url,omitempty"`
	AffiliateURL *string  `json:"affiliate_url,omitempty"`
}
