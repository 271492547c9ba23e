package models

import "time"

// Coupon discount types
const (
	DiscountTypePercentage   = "percentage"
	DiscountTypeFixed        = "fixed"
	DiscountTypeFreeShipping = "free_shipping"
)

// Coupon is a retailer promotion code.
type Coupon struct {
	ID           string     `json:"id" db:"id"`
	RetailerID   string     `json:"retailer_id" db:"retailer_id"`
	Code         string     `json:"code" db:"code"`
	Description  string     `json:"description" db:"description"`
	DiscountType string     `json:"discount_type" db:"discount_type"`
	DiscountValue float64   `json:"discount_value" db:"discount_value"`
	AutoApplyURL *string    `json:"auto_apply_url,omitempty" db:"auto_apply_url"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// Valid reports whether the coupon is active and unexpired as of now.
// A nil expiry never expires.
func (c *Coupon) Valid(now time.Time) bool {
	if !c.IsActive {
		return false
	}
	return c.ExpiresAt == nil || c.ExpiresAt.After(now)
}
