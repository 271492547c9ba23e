package models

import "time"

// Trend classifications for a retailer's price versus ~30 days ago.
const (
	TrendUp     = "up"
	TrendDown   = "down"
	TrendStable = "stable"
)

// Variant is one SKU row inside a logical offer, labeled by its color/finish
// suffix (or a fallback label when the title carries no variant).
type Variant struct {
	Label   string  `json:"label"`
	Listing Listing `json:"listing"`
}

// LogicalOffer is one retailer's listing after same-SKU-family variants have
// been grouped together. Best is the default variant per the best-offer rule.
type LogicalOffer struct {
	RetailerID   string    `json:"retailer_id"`
	RetailerName string    `json:"retailer_name"`
	BaseTitle    *string   `json:"base_title,omitempty"`
	ModelLabel   string    `json:"model_label"`
	Variants     []Variant `json:"variants"`
	Best         Listing   `json:"best"`
}

// PriceInsight is the historical deal intelligence for one retailer. It only
// exists when the retailer has at least one recorded price point.
type PriceInsight struct {
	RetailerID     string    `json:"retailer_id"`
	CurrentPrice   float64   `json:"current_price"`
	LowestEver     float64   `json:"lowest_ever"`
	LowestEverDate time.Time `json:"lowest_ever_date"`
	IsAllTimeLow   bool      `json:"is_all_time_low"`
	PriceChangePct *float64  `json:"price_change_pct,omitempty"`
	Trend          string    `json:"trend"`
}

// DealAnnotation is the final per-retailer view model: the logical offer
// with its insight, coupons and bundle sub-rows attached.
type DealAnnotation struct {
	LogicalOffer
	Insight *PriceInsight `json:"insight,omitempty"`
	Coupons []Coupon      `json:"coupons"`
	Bundles []BundleOffer `json:"bundles"`
}

// DealView is the full decision-ready payload for one product.
type DealView struct {
	ProductID          string           `json:"product_id"`
	ProductName        string           `json:"product_name"`
	Deals              []DealAnnotation `json:"deals"`
	GlobalLowest       *float64         `json:"global_lowest,omitempty"`
	LastCheckedOverall *time.Time       `json:"last_checked_overall,omitempty"`
	IsStale            bool             `json:"is_stale"`
	GeneratedAt        time.Time        `json:"generated_at"`
}
