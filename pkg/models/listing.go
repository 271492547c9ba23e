package models

import "time"

// Listing is one retailer's current offer row for a product, joined with the
// retailer metadata the deal view needs. Several listings may share a
// retailer_id when the retailer lists SKU variants under separate rows.
type Listing struct {
	ID             string    `json:"id" db:"id"`
	ProductID      string    `json:"product_id" db:"product_id"`
	RetailerID     string    `json:"retailer_id" db:"retailer_id"`
	Price          float64   `json:"price" db:"price"`
	CompareAtPrice *float64  `json:"compare_at_price,omitempty" db:"compare_at_price"`
	Currency       string    `json:"currency" db:"currency"`
	InStock        bool      `json:"in_stock" db:"in_stock"`
	OnSale         bool      `json:"on_sale" db:"on_sale"`
	ProductURL     *string   `json:"product_url,omitempty" db:"product_url"`
	AffiliateURL   *string   `json:"affiliate_url,omitempty" db:"affiliate_url"`
	ExternalID     string    `json:"external_id" db:"external_id"`
	OfferTitle     *string   `json:"offer_title,omitempty" db:"offer_title"`
	LastChecked    time.Time `json:"last_checked" db:"last_checked"`

	// Joined from retailers
	RetailerName     string `json:"retailer_name" db:"retailer_name"`
	RetailerBaseURL  string `json:"retailer_base_url" db:"retailer_base_url"`
	RetailerActive   bool   `json:"retailer_active" db:"retailer_active"`
	AuthorizedDealer bool   `json:"authorized_dealer" db:"authorized_dealer"`
}

// BuyTarget resolves the URL a buyer should be sent to: affiliate link when
// present, product page otherwise, falling back to the row id so two rows
// without any link never collapse into one variant.
func (l *Listing) BuyTarget() string {
	if l.AffiliateURL != nil && *l.AffiliateURL != "" {
		return *l.AffiliateURL
	}
	if l.ProductURL != nil && *l.ProductURL != "" {
		return *l.ProductURL
	}
	return l.ID
}

// PricePoint is one observation in a retailer's append-only price series.
type PricePoint struct {
	ID         string    `json:"id" db:"id"`
	ProductID  string    `json:"product_id" db:"product_id"`
	RetailerID string    `json:"retailer_id" db:"retailer_id"`
	Price      float64   `json:"price" db:"price"`
	RecordedAt time.Time `json:"recorded_at" db:"recorded_at"`
}
