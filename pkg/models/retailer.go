package models

import "time"

// Retailer is a store we track listings for. Only active retailers
// participate in deal views.
type Retailer struct {
	ID               string    `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	BaseURL          string    `json:"base_url" db:"base_url"`
	IsActive         bool      `json:"is_active" db:"is_active"`
	Description      *string   `json:"description,omitempty" db:"description"`
	ShipsFrom        *string   `json:"ships_from,omitempty" db:"ships_from"`
	ReturnPolicy     *string   `json:"return_policy,omitempty" db:"return_policy"`
	AuthorizedDealer bool      `json:"authorized_dealer" db:"authorized_dealer"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// Product is the minimal catalog row the deal engine needs: the bundle
// classifier compares store titles against the product name. The full
// catalog lives elsewhere.
type Product struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Brand     *string   `json:"brand,omitempty" db:"brand"`
	Model     *string   `json:"model,omitempty" db:"model"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
