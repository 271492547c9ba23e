package kafka

import (
	"encoding/json"
	"time"
)

// PriceObservation is one scrape result for a retailer listing, produced by
// the upstream scraping layer.
type PriceObservation struct {
	ProductID      string   `json:"product_id" validate:"required,uuid4"`
	RetailerID     string   `json:"retailer_id" validate:"required,uuid4"`
	ExternalID     string   `json:"external_id" validate:"required"`
	Price          float64  `json:"price" validate:"required,gt=0"`
	CompareAtPrice *float64 `json:"compare_at_price,omitempty"`
	Currency       string   `json:"currency" validate:"required,len=3"`
	InStock        bool     `json:"in_stock"`
	OnSale         bool     `json:"on_sale"`
	ProductURL     *string  `json:"product_url,omitempty"`
	AffiliateURL   *string  `json:"affiliate_url,omitempty"`
	OfferTitle     *string  `json:"offer_title,omitempty"`

	ObservedAt time.Time `json:"observed_at" validate:"required"`
}

// IncomingMessage wraps a raw Kafka message with parsed headers
type IncomingMessage struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Partition int
	Offset    int64
	Timestamp time.Time
	Topic     string

	Observation *PriceObservation
}

// ParseObservation parses the message value as a price observation.
func (m *IncomingMessage) ParseObservation() error {
	var obs PriceObservation
	if err := json.Unmarshal(m.Value, &obs); err != nil {
		return err
	}
	m.Observation = &obs
	return nil
}

// GetRetailerID returns the retailer id, falling back to the header when the
// body has none.
func (m *IncomingMessage) GetRetailerID() string {
	if m.Observation != nil && m.Observation.RetailerID != "" {
		return m.Observation.RetailerID
	}
	return m.Headers["retailer_id"]
}

// GetProductID returns the product id, falling back to the message key.
func (m *IncomingMessage) GetProductID() string {
	if m.Observation != nil && m.Observation.ProductID != "" {
		return m.Observation.ProductID
	}
	return m.Key
}
